package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/logger"
	"github.com/huangang/teamboard/backend/pkg/response"
)

// Invitation flow errors, mapped to HTTP statuses by the response package.
var (
	ErrAlreadyMember      = response.NewConflict("user is already a member of this project")
	ErrNotInvited         = response.NewNotFound("you have not been invited to this project")
	ErrInvitationRejected = response.NewConflict("invitation was rejected, ask for another invitation")
	ErrInvalidStatus      = response.NewBadRequest("status must be accepted or rejected")
	ErrInvalidPermission  = response.NewBadRequest("permission must be root, edit or view-only")
	ErrRootRequired       = response.NewForbidden("root permission required")
	ErrCannotRemove       = response.NewForbidden("only root members can remove other members")
)

type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// ValidateResponse decides whether an invitation in the given state may be
// answered with next. Pending invitations accept either answer; a record
// that was already answered reports why it cannot change.
func ValidateResponse(current, next models.InvitationStatus) error {
	if next != models.InvitationAccepted && next != models.InvitationRejected {
		return ErrInvalidStatus
	}
	switch current {
	case models.InvitationAccepted:
		return ErrAlreadyMember
	case models.InvitationRejected:
		return ErrInvitationRejected
	}
	return nil
}

// CanInvite reports whether the actor may invite users to the project.
func CanInvite(actor *models.ProjectMember) bool {
	return actor != nil && actor.Permission == models.PermissionRoot
}

// CanChangePermission reports whether the actor may change another
// member's permission.
func CanChangePermission(actor *models.ProjectMember) bool {
	return actor != nil && actor.Permission == models.PermissionRoot
}

// CanRemove reports whether the actor may remove the target membership.
// Root members can remove anyone; everyone can remove themselves.
func CanRemove(actor, target *models.ProjectMember) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.Permission == models.PermissionRoot || actor.UserID == target.UserID
}

// Invite creates a pending membership for the target user. Permission
// defaults to view-only when not supplied. The caller is expected to have
// cleared any stale invitation beforehand.
func (s *MembershipService) Invite(projectID, inviterID, targetUserID uint, perm models.ProjectPermission) (*models.ProjectMember, error) {
	if perm == "" {
		perm = models.PermissionViewOnly
	}
	if !perm.Valid() {
		return nil, ErrInvalidPermission
	}

	var user models.User
	if err := s.db.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	member := models.ProjectMember{
		ProjectID:        projectID,
		UserID:           targetUserID,
		InvitedByID:      inviterID,
		Permission:       perm,
		InvitationStatus: models.InvitationPending,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	if queue := GetNotifyQueue(); queue != nil {
		notice := &InviteNotice{
			MembershipID: member.ID,
			ProjectID:    projectID,
			InviterID:    inviterID,
			InviteeID:    targetUserID,
			Permission:   string(perm),
		}
		if err := queue.Enqueue(notice); err != nil {
			logger.Warn().Err(err).Uint("membership_id", member.ID).Msg("failed to enqueue invite notice")
		}
	}

	return &member, nil
}

// Respond answers the invitation identified by membershipID on behalf of
// userID. The invitation must belong to that user and still be pending.
func (s *MembershipService) Respond(membershipID, userID uint, status models.InvitationStatus) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.Where("id = ? AND user_id = ?", membershipID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotInvited
		}
		return nil, err
	}

	if err := ValidateResponse(member.InvitationStatus, status); err != nil {
		return nil, err
	}

	if err := s.db.Model(&member).Update("invitation_status", status).Error; err != nil {
		return nil, err
	}
	member.InvitationStatus = status
	return &member, nil
}

// UpdatePermission changes the target membership's permission level.
func (s *MembershipService) UpdatePermission(target *models.ProjectMember, perm models.ProjectPermission) error {
	if !perm.Valid() {
		return ErrInvalidPermission
	}
	if err := s.db.Model(target).Update("permission", perm).Error; err != nil {
		return err
	}
	target.Permission = perm
	return nil
}

// Remove deletes the target membership.
func (s *MembershipService) Remove(target *models.ProjectMember) error {
	return s.db.Delete(target).Error
}

type MembershipListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	WithCount bool   `form:"with_count"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type MembershipListResponse struct {
	Total    int64                  `json:"total,omitempty"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Items    []models.ProjectMember `json:"items"`
}

// List returns the caller's memberships with their projects populated.
// The owning user ID is cleared from each record since the list is always
// scoped to the caller.
func (s *MembershipService) List(userID uint, req *MembershipListRequest) (*MembershipListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	applyFilters := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if req.Status != "" {
			q = q.Where("invitation_status = ?", req.Status)
		}
		if req.StartDate != "" {
			q = q.Where("created_at >= ?", req.StartDate)
		}
		if req.EndDate != "" {
			q = q.Where("created_at <= ?", req.EndDate+" 23:59:59")
		}
		return q
	}

	var total int64
	if req.WithCount {
		if err := applyFilters(s.db.Model(&models.ProjectMember{})).Count(&total).Error; err != nil {
			return nil, err
		}
	}

	var members []models.ProjectMember
	offset := (req.Page - 1) * req.PageSize
	err := applyFilters(s.db.Preload("Project")).
		Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].UserID = 0
	}

	return &MembershipListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    members,
	}, nil
}
