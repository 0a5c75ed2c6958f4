package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectPermission is the role a member holds within a project.
type ProjectPermission string

const (
	PermissionRoot     ProjectPermission = "root"
	PermissionEdit     ProjectPermission = "edit"
	PermissionViewOnly ProjectPermission = "view-only"
)

// Valid reports whether p is one of the known permission values.
func (p ProjectPermission) Valid() bool {
	switch p {
	case PermissionRoot, PermissionEdit, PermissionViewOnly:
		return true
	}
	return false
}

// CanWrite reports whether the permission allows mutating project-scoped
// resources (status views, view items). Membership administration is gated
// separately on PermissionRoot.
func (p ProjectPermission) CanWrite() bool {
	return p != PermissionViewOnly
}

// InvitationStatus is the lifecycle state of a project invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Valid reports whether s is one of the known invitation states.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationRejected:
		return true
	}
	return false
}

// ProjectMember links a user to a project with a permission and an
// invitation state. At most one live row exists per (project, user) pair;
// stale pending/rejected invites are deleted and recreated rather than
// reset to pending.
type ProjectMember struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	ProjectID        uint              `gorm:"index:idx_project_user;not null" json:"project_id"`
	Project          *Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID           uint              `gorm:"index:idx_project_user;not null" json:"user_id,omitempty"`
	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InvitedByID      uint              `gorm:"not null" json:"invited_by_id"`
	Permission       ProjectPermission `gorm:"size:20;default:view-only" json:"permission"`
	InvitationStatus InvitationStatus  `gorm:"size:20;default:pending" json:"invitation_status"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }
