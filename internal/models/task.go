package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusBriefSubmitted   TaskStatus = "brief_submitted"
	TaskStatusReworkRequested  TaskStatus = "rework_requested"
	TaskStatusDesignerAssigned TaskStatus = "designer_assigned"
	TaskStatusPickedUp         TaskStatus = "picked_up"
	TaskStatusHoldByDesigner   TaskStatus = "hold_by_designer"
	TaskStatusDraftSubmitted   TaskStatus = "draft_submitted"
	TaskStatusInternalApproved TaskStatus = "internal_approved"
	TaskStatusSentToClient     TaskStatus = "sent_to_client"
	TaskStatusClientApproved   TaskStatus = "client_approved"
	TaskStatusClientFeedback   TaskStatus = "client_feedback"
)

type TaskType string

const (
	TaskTypeGraphicDesign       TaskType = "graphic_design"
	TaskTypeMotionGraphicDesign TaskType = "motion_graphic_design"
	TaskType3DDesign            TaskType = "3d_design"
	TaskTypeAIGeneration        TaskType = "ai_generation"
	TaskTypeWebDesign           TaskType = "web_design"
	TaskTypeCopyWriting         TaskType = "copy_writing"
	TaskTypeStrategyThinking    TaskType = "strategy_thinking"
)

// IsValid reports whether t is a known task type.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeGraphicDesign, TaskTypeMotionGraphicDesign, TaskType3DDesign,
		TaskTypeAIGeneration, TaskTypeWebDesign, TaskTypeCopyWriting, TaskTypeStrategyThinking:
		return true
	}
	return false
}

// IsDesign reports whether the type counts toward designer workload.
func (t TaskType) IsDesign() bool {
	switch t {
	case TaskTypeGraphicDesign, TaskTypeMotionGraphicDesign, TaskType3DDesign,
		TaskTypeAIGeneration, TaskTypeWebDesign:
		return true
	}
	return false
}

// DesignTaskTypes lists the types that count toward designer workload.
func DesignTaskTypes() []TaskType {
	return []TaskType{
		TaskTypeGraphicDesign,
		TaskTypeMotionGraphicDesign,
		TaskType3DDesign,
		TaskTypeAIGeneration,
		TaskTypeWebDesign,
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID                string                      `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID    string                      `gorm:"type:varchar(36);not null;index;<-:create" json:"organization_id"`
	ProjectID         string                      `gorm:"type:varchar(36);not null;index" json:"project_id"`
	TaskName          string                      `gorm:"type:varchar(255);not null" json:"task_name"`
	Brief             string                      `gorm:"type:text;not null" json:"brief"`
	Description       string                      `gorm:"type:text" json:"description"`
	TaskType          TaskType                    `gorm:"type:varchar(32);not null" json:"task_type"`
	Priority          TaskPriority                `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	Assets            datatypes.JSONSlice[string] `json:"assets"`
	References        datatypes.JSONSlice[string] `json:"references"`
	DueDate           *time.Time                  `gorm:"index" json:"due_date"`
	DueTime           string                      `gorm:"type:varchar(5)" json:"due_time,omitempty"`
	EstimatedHours    *float64                    `json:"estimated_hours,omitempty"`
	ActualHours       *float64                    `json:"actual_hours,omitempty"`
	AssignedDesigner  *string                     `gorm:"type:varchar(36);index" json:"assigned_designer"`
	DesignLead        *string                     `gorm:"type:varchar(36);index" json:"design_lead"`
	StarRate          *int                        `json:"star_rate"`
	Status            TaskStatus                  `gorm:"type:varchar(32);not null;index" json:"status"`
	IsRework          bool                        `gorm:"not null;default:false" json:"is_rework"`
	OriginalTaskID    *string                     `gorm:"type:varchar(36)" json:"original_task_id,omitempty"`
	ReworkSuggestions string                      `gorm:"type:text" json:"rework_suggestions,omitempty"`
	CompletedAt       *time.Time                  `json:"completed_at"`
	CreatedBy         string                      `gorm:"type:varchar(36);not null" json:"created_by"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	// Relations
	StatusHistory []TaskStatusChange `gorm:"foreignKey:TaskID" json:"status_history"`
	Activity      []TaskActivity     `gorm:"foreignKey:TaskID" json:"activity_and_comments"`
	Designers     []TaskDesigner     `gorm:"foreignKey:TaskID" json:"designers"`
	Deliverables  []TaskDeliverable  `gorm:"foreignKey:TaskID" json:"deliverables"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HasDesigner reports whether a designer is currently attached.
func (t *Task) HasDesigner() bool {
	return t.AssignedDesigner != nil && *t.AssignedDesigner != ""
}

// DueAt combines DueDate and the optional HH:MM DueTime.
func (t *Task) DueAt() *time.Time {
	if t.DueDate == nil {
		return nil
	}
	due := *t.DueDate
	if t.DueTime != "" {
		if clock, err := time.Parse("15:04", t.DueTime); err == nil {
			due = time.Date(due.Year(), due.Month(), due.Day(), clock.Hour(), clock.Minute(), 0, 0, due.Location())
		}
	}
	return &due
}

// IsOverdue reports whether the due moment has passed at now.
func (t *Task) IsOverdue(now time.Time) bool {
	due := t.DueAt()
	return due != nil && due.Before(now)
}
