package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskAssigned      NotificationType = "task_assigned"
	NotificationTaskStatusChanged NotificationType = "task_status_changed"
	NotificationDesignerChanged   NotificationType = "designer_changed"
	NotificationCommentAdded      NotificationType = "comment_added"
	NotificationTaskDueSoon       NotificationType = "task_due_soon"
	NotificationTaskOverdue       NotificationType = "task_overdue"
)

type Notification struct {
	ID             string           `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID         string           `gorm:"type:varchar(36);not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	OrganizationID string           `gorm:"type:varchar(36);not null" json:"organization_id"`
	Type           NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title          string           `gorm:"type:varchar(255);not null" json:"title"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	TaskID         *string          `gorm:"type:varchar(36)" json:"task_id,omitempty"`
	ProjectID      *string          `gorm:"type:varchar(36)" json:"project_id,omitempty"`
	ActionBy       *string          `gorm:"type:varchar(36)" json:"action_by,omitempty"`
	IsRead         bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time        `gorm:"index:idx_notifications_user_created,priority:2" json:"created_at"`
	ExpiresAt      time.Time        `gorm:"not null;index" json:"expires_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
