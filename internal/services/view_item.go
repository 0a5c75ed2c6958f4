package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/response"
)

var ErrInvalidPriority = response.NewBadRequest("priority must be low, medium, high or default")

type ViewItemService struct {
	db *gorm.DB
}

func NewViewItemService(db *gorm.DB) *ViewItemService {
	return &ViewItemService{db: db}
}

type CreateViewItemRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	StatusViewID uint                `json:"status_view_id" binding:"required"`
	Priority     models.ItemPriority `json:"priority"`
}

type UpdateViewItemRequest struct {
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	StatusViewID *uint               `json:"status_view_id"`
	Priority     models.ItemPriority `json:"priority"`
}

type ViewItemListRequest struct {
	StatusViewID *uint `form:"status_view_id"`
}

// List returns a project's items, optionally filtered to one status view.
func (s *ViewItemService) List(projectID uint, req *ViewItemListRequest) ([]models.ViewItem, error) {
	query := s.db.Where("project_id = ?", projectID)
	if req.StatusViewID != nil {
		query = query.Where("status_view_id = ?", *req.StatusViewID)
	}

	var items []models.ViewItem
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns an item scoped to the given project.
func (s *ViewItemService) GetByID(projectID, id uint) (*models.ViewItem, error) {
	var item models.ViewItem
	err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("item not found")
		}
		return nil, err
	}
	return &item, nil
}

// Create adds an item to one of the project's status views.
func (s *ViewItemService) Create(projectID, userID uint, req *CreateViewItemRequest) (*models.ViewItem, error) {
	if req.Priority == "" {
		req.Priority = models.PriorityDefault
	}
	if !req.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	// The target view must belong to the same project.
	var view models.StatusView
	err := s.db.Where("id = ? AND project_id = ?", req.StatusViewID, projectID).First(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("status view not found")
		}
		return nil, err
	}

	item := models.ViewItem{
		Title:        req.Title,
		Description:  req.Description,
		StatusViewID: req.StatusViewID,
		ProjectID:    projectID,
		CreatedByID:  userID,
		Priority:     req.Priority,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update changes an item's fields. Setting StatusViewID moves the item to
// another view of the same project.
func (s *ViewItemService) Update(projectID, id uint, req *UpdateViewItemRequest) (*models.ViewItem, error) {
	item, err := s.GetByID(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StatusViewID != nil {
		var view models.StatusView
		err := s.db.Where("id = ? AND project_id = ?", *req.StatusViewID, projectID).First(&view).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("status view not found")
			}
			return nil, err
		}
		updates["status_view_id"] = *req.StatusViewID
	}
	if req.Priority != "" {
		if !req.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		updates["priority"] = req.Priority
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item.
func (s *ViewItemService) Delete(projectID, id uint) error {
	item, err := s.GetByID(projectID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}
