package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName       string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role           Role      `gorm:"type:varchar(32);not null;default:'member'" json:"role"`
	Team           Team      `gorm:"type:varchar(32);index" json:"team"`
	OngoingTasks   int       `gorm:"not null;default:0" json:"ongoing_tasks"`
	WorkloadScore  int       `gorm:"not null;default:0" json:"workload_score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	TaskDifficulties []TaskDifficulty `gorm:"foreignKey:UserID" json:"task_difficulties,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
