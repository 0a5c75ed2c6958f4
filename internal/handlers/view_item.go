package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/middleware"
	"github.com/huangang/teamboard/backend/internal/services"
	"github.com/huangang/teamboard/backend/pkg/response"
)

type ViewItemHandler struct {
	itemService *services.ViewItemService
}

func NewViewItemHandler(db *gorm.DB) *ViewItemHandler {
	return &ViewItemHandler{
		itemService: services.NewViewItemService(db),
	}
}

// List returns a project's items, optionally filtered by status view
// GET /api/projects/:projectId/items
func (h *ViewItemHandler) List(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req services.ViewItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items, err := h.itemService.List(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, items)
}

// Create adds an item to one of the project's status views
// POST /api/projects/:projectId/items
func (h *ViewItemHandler) Create(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req services.CreateViewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update changes an item's fields or moves it to another view
// PUT /api/projects/:projectId/items/:itemId
func (h *ViewItemHandler) Update(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	var req services.UpdateViewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(projectID, uint(itemID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, item)
}

// Delete removes an item
// DELETE /api/projects/:projectId/items/:itemId
func (h *ViewItemHandler) Delete(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	if err := h.itemService.Delete(projectID, uint(itemID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "item deleted successfully"})
}
