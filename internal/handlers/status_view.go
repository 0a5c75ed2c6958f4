package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/middleware"
	"github.com/huangang/teamboard/backend/internal/services"
	"github.com/huangang/teamboard/backend/pkg/response"
)

type StatusViewHandler struct {
	viewService *services.StatusViewService
}

func NewStatusViewHandler(db *gorm.DB) *StatusViewHandler {
	return &StatusViewHandler{
		viewService: services.NewStatusViewService(db),
	}
}

func projectIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("projectId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	return uint(id), true
}

// List returns a project's status views
// GET /api/projects/:projectId/views
func (h *StatusViewHandler) List(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	views, err := h.viewService.List(projectID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, views)
}

// Create adds a status view to a project
// POST /api/projects/:projectId/views
func (h *StatusViewHandler) Create(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req services.CreateStatusViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.viewService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, view)
}

// Update changes a status view's name or color
// PUT /api/projects/:projectId/views/:viewId
func (h *StatusViewHandler) Update(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	viewID, err := strconv.ParseUint(c.Param("viewId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid view id")
		return
	}

	var req services.UpdateStatusViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.viewService.Update(projectID, uint(viewID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// Delete removes a status view and its items
// DELETE /api/projects/:projectId/views/:viewId
func (h *StatusViewHandler) Delete(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	viewID, err := strconv.ParseUint(c.Param("viewId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid view id")
		return
	}

	if err := h.viewService.Delete(projectID, uint(viewID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "status view deleted successfully"})
}
