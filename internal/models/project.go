package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusReview    ProjectStatus = "REVIEW"
	ProjectStatusOnHold    ProjectStatus = "ONHOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
)

type Project struct {
	ID                 string        `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID     string        `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	ProjectName        string        `gorm:"type:varchar(255);not null" json:"project_name"`
	AssignedAM         *string       `gorm:"type:varchar(36);index" json:"assigned_am"`
	AssignedDesignLead *string       `gorm:"type:varchar(36)" json:"assigned_design_lead"`
	Status             ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	DueDate            *time.Time    `json:"due_date"`
	CreatedBy          string        `gorm:"type:varchar(36)" json:"created_by"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
