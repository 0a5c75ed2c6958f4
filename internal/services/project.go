package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/response"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	ID        uint   `form:"id"`
	Name      string `form:"name"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SortBy    string `form:"sort_by"`
	Order     string `form:"order"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateProjectRequest struct {
	Name string `json:"name"`
}

// List returns the projects where the user holds an accepted membership.
func (s *ProjectService) List(userID uint, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}

	memberScope := s.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ? AND invitation_status = ?", userID, models.InvitationAccepted)

	query := s.db.Model(&models.Project{}).Where("id IN (?)", memberScope)
	if req.ID > 0 {
		query = query.Where("id = ?", req.ID)
	}
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	var total int64
	query.Count(&total)

	// Sort columns are whitelisted; anything else falls back to newest first.
	orderBy := "created_at"
	if req.SortBy == "name" || req.SortBy == "updated_at" {
		orderBy = req.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(req.Order, "asc") {
		direction = "ASC"
	}

	var projects []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order(orderBy + " " + direction).Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Create creates a project and a root membership for its owner in one
// transaction, so a project is never left without a root member.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	project := models.Project{
		Name:    req.Name,
		OwnerID: ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		owner := models.ProjectMember{
			ProjectID:        project.ID,
			UserID:           ownerID,
			InvitedByID:      ownerID,
			Permission:       models.PermissionRoot,
			InvitationStatus: models.InvitationAccepted,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// Update renames a project
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		if err := s.db.Model(project).Update("name", req.Name).Error; err != nil {
			return nil, err
		}
		project.Name = req.Name
	}

	return project, nil
}

// Delete removes a project together with its memberships, views and items.
func (s *ProjectService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewNotFound("project not found")
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ViewItem{}).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&models.StatusView{}).Error
	})
}
