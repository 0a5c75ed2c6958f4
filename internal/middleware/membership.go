package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/logger"
	"github.com/huangang/teamboard/backend/pkg/response"
)

const (
	ContextActorMembership  = "actor_membership"
	ContextTargetMembership = "target_membership"
)

// paramUint parses a numeric path parameter.
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// ActorMembershipRequired loads the caller's membership record for the
// project named by the :projectId path parameter and stores it in the
// context. Requests from users without a membership record on the project
// are rejected with 404 so that project existence is not leaked.
func ActorMembershipRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := paramUint(c, "projectId")
		if !ok {
			response.BadRequest(c, "invalid project id")
			c.Abort()
			return
		}

		var member models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", projectID, GetUserID(c)).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "project not found")
			} else {
				logger.Error().Err(err).Uint("project_id", projectID).Msg("failed to load membership")
				response.ServerError(c, "failed to load membership")
			}
			c.Abort()
			return
		}

		c.Set(ContextActorMembership, &member)
		c.Next()
	}
}

// InvitePrecheck inspects any existing membership record for the invited
// user (the :userId path parameter) on the project. An accepted membership
// blocks the invite; a stale pending or rejected record is removed so the
// new invitation starts clean.
func InvitePrecheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := paramUint(c, "projectId")
		if !ok {
			response.BadRequest(c, "invalid project id")
			c.Abort()
			return
		}
		userID, ok := paramUint(c, "userId")
		if !ok {
			response.BadRequest(c, "invalid user id")
			c.Abort()
			return
		}

		var existing models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Next()
				return
			}
			logger.Error().Err(err).Msg("failed to check existing invitation")
			response.ServerError(c, "failed to check existing invitation")
			c.Abort()
			return
		}

		if existing.InvitationStatus == models.InvitationAccepted {
			response.Conflict(c, "user is already a member of this project")
			c.Abort()
			return
		}

		// Pending or rejected invitation: drop the stale record and let the
		// new invite proceed.
		if err := db.Delete(&existing).Error; err != nil {
			logger.Error().Err(err).Uint("membership_id", existing.ID).Msg("failed to remove stale invitation")
			response.ServerError(c, "failed to remove stale invitation")
			c.Abort()
			return
		}

		c.Next()
	}
}

// MembershipExistsRequired resolves the membership named by the :id path
// parameter together with the caller's own membership on the same project.
// Both must exist; otherwise the request is rejected with 404.
func MembershipExistsRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUint(c, "id")
		if !ok {
			response.BadRequest(c, "invalid membership id")
			c.Abort()
			return
		}

		var target models.ProjectMember
		if err := db.First(&target, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "membership not found")
			} else {
				logger.Error().Err(err).Uint("membership_id", id).Msg("failed to load membership")
				response.ServerError(c, "failed to load membership")
			}
			c.Abort()
			return
		}

		var actor models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", target.ProjectID, GetUserID(c)).
			First(&actor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "membership not found")
			} else {
				logger.Error().Err(err).Uint("project_id", target.ProjectID).Msg("failed to load membership")
				response.ServerError(c, "failed to load membership")
			}
			c.Abort()
			return
		}

		c.Set(ContextTargetMembership, &target)
		c.Set(ContextActorMembership, &actor)
		c.Next()
	}
}

// WriteAccessRequired rejects callers whose project permission does not
// allow mutating content. It must run after a guard that loaded the actor
// membership into the context.
func WriteAccessRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		member := GetActorMembership(c)
		if member == nil {
			response.Forbidden(c, "write access required")
			c.Abort()
			return
		}
		if !member.Permission.CanWrite() {
			response.Forbidden(c, "write access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActorMembership returns the caller's membership loaded by a guard,
// or nil if no guard ran.
func GetActorMembership(c *gin.Context) *models.ProjectMember {
	if v, exists := c.Get(ContextActorMembership); exists {
		if m, ok := v.(*models.ProjectMember); ok {
			return m
		}
	}
	return nil
}

// GetTargetMembership returns the membership resolved from the :id path
// parameter, or nil if no guard ran.
func GetTargetMembership(c *gin.Context) *models.ProjectMember {
	if v, exists := c.Get(ContextTargetMembership); exists {
		if m, ok := v.(*models.ProjectMember); ok {
			return m
		}
	}
	return nil
}
