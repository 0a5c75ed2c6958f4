package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	queue := services.GetNotifyQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Invitations still waiting for an answer
	var pendingInvites int64
	models.GetDB().Model(&models.ProjectMember{}).
		Where("invitation_status = ?", models.InvitationPending).
		Count(&pendingInvites)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "teamboard",
		"components": gin.H{
			"database":            dbStatus,
			"queue_mode":          queueMode,
			"pending_invitations": pendingInvites,
		},
	})
}
