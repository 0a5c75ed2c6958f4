package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/response"
)

type StatusViewService struct {
	db *gorm.DB
}

func NewStatusViewService(db *gorm.DB) *StatusViewService {
	return &StatusViewService{db: db}
}

type CreateStatusViewRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type UpdateStatusViewRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// List returns all status views of a project in creation order.
func (s *StatusViewService) List(projectID uint) ([]models.StatusView, error) {
	var views []models.StatusView
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// GetByID returns a status view scoped to the given project.
func (s *StatusViewService) GetByID(projectID, id uint) (*models.StatusView, error) {
	var view models.StatusView
	err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("status view not found")
		}
		return nil, err
	}
	return &view, nil
}

// Create adds a status view to the project.
func (s *StatusViewService) Create(projectID, userID uint, req *CreateStatusViewRequest) (*models.StatusView, error) {
	view := models.StatusView{
		Name:        req.Name,
		Color:       req.Color,
		ProjectID:   projectID,
		CreatedByID: userID,
	}
	if err := s.db.Create(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

// Update changes a status view's name or color.
func (s *StatusViewService) Update(projectID, id uint, req *UpdateStatusViewRequest) (*models.StatusView, error) {
	view, err := s.GetByID(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if len(updates) == 0 {
		return view, nil
	}

	if err := s.db.Model(view).Updates(updates).Error; err != nil {
		return nil, err
	}
	return view, nil
}

// Delete removes a status view and the items it contains.
func (s *StatusViewService) Delete(projectID, id uint) error {
	view, err := s.GetByID(projectID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status_view_id = ?", view.ID).Delete(&models.ViewItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(view).Error
	})
}
