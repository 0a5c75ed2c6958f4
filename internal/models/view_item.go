package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemPriority is the priority of a view item.
type ItemPriority string

const (
	PriorityLow     ItemPriority = "low"
	PriorityMedium  ItemPriority = "medium"
	PriorityHigh    ItemPriority = "high"
	PriorityDefault ItemPriority = "default"
)

// Valid reports whether p is one of the known priority values.
func (p ItemPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityDefault:
		return true
	}
	return false
}

// ViewItem is a card within a status view.
type ViewItem struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:500;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	StatusViewID uint           `gorm:"index;not null" json:"status_view_id"`
	StatusView   *StatusView    `gorm:"foreignKey:StatusViewID" json:"status_view,omitempty"`
	ProjectID    uint           `gorm:"index;not null" json:"project_id"`
	CreatedByID  uint           `gorm:"not null" json:"created_by_id"`
	Priority     ItemPriority   `gorm:"size:20;default:default" json:"priority"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ViewItem) TableName() string { return "view_items" }
