package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/middleware"
	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/internal/services"
	"github.com/huangang/teamboard/backend/pkg/response"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(db),
	}
}

type inviteRequest struct {
	Permission models.ProjectPermission `json:"permission"`
}

// Invite invites a user to a project. Only root members may invite.
// POST /api/projects/:projectId/members/:userId/invite
func (h *MembershipHandler) Invite(c *gin.Context) {
	actor := middleware.GetActorMembership(c)
	if !services.CanInvite(actor) {
		response.Error(c, services.ErrRootRequired)
		return
	}

	targetUserID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req inviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	member, err := h.membershipService.Invite(actor.ProjectID, actor.UserID, uint(targetUserID), req.Permission)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateStatus answers an invitation on behalf of the caller
// PATCH /api/memberships/:id/status/:status
func (h *MembershipHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	status := models.InvitationStatus(c.Param("status"))
	member, err := h.membershipService.Respond(uint(id), middleware.GetUserID(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// UpdatePermission changes a member's permission. Only root members of
// the same project may do this.
// PATCH /api/memberships/:id/permission/:permission
func (h *MembershipHandler) UpdatePermission(c *gin.Context) {
	actor := middleware.GetActorMembership(c)
	target := middleware.GetTargetMembership(c)

	if !services.CanChangePermission(actor) {
		response.Error(c, services.ErrRootRequired)
		return
	}

	perm := models.ProjectPermission(c.Param("permission"))
	if err := h.membershipService.UpdatePermission(target, perm); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, target)
}

// Delete removes a membership. Root members can remove anyone on the
// project; other members can only remove themselves.
// DELETE /api/memberships/:id
func (h *MembershipHandler) Delete(c *gin.Context) {
	actor := middleware.GetActorMembership(c)
	target := middleware.GetTargetMembership(c)

	if !services.CanRemove(actor, target) {
		response.Error(c, services.ErrCannotRemove)
		return
	}

	if err := h.membershipService.Remove(target); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "membership removed successfully"})
}

// List returns the caller's memberships with projects populated
// GET /api/memberships
func (h *MembershipHandler) List(c *gin.Context) {
	var req services.MembershipListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.membershipService.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}
