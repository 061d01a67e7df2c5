package dto

import (
	"time"

	"github.com/yukikurage/creative-task-api/internal/models"
)

// UserDTO represents a user summary in API responses
type UserDTO struct {
	ID       string      `json:"id"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Team     models.Team `json:"team,omitempty"`
}

// ProjectDTO represents a project summary in API responses
type ProjectDTO struct {
	ID          string               `json:"id"`
	ProjectName string               `json:"project_name"`
	Status      models.ProjectStatus `json:"status"`
	AssignedAM  *string              `json:"assigned_am"`
}

// TaskDTO represents a task in API responses with its people resolved
type TaskDTO struct {
	ID                string              `json:"id"`
	OrganizationID    string              `json:"organization_id"`
	ProjectID         string              `json:"project_id"`
	TaskName          string              `json:"task_name"`
	Brief             string              `json:"brief"`
	Description       string              `json:"description"`
	TaskType          models.TaskType     `json:"task_type"`
	Priority          models.TaskPriority `json:"priority"`
	Tags              []string            `json:"tags"`
	Assets            []string            `json:"assets"`
	References        []string            `json:"references"`
	DueDate           *time.Time          `json:"due_date"`
	DueTime           string              `json:"due_time,omitempty"`
	EstimatedHours    *float64            `json:"estimated_hours,omitempty"`
	ActualHours       *float64            `json:"actual_hours,omitempty"`
	AssignedDesigner  *string             `json:"assigned_designer"`
	DesignLead        *string             `json:"design_lead"`
	StarRate          *int                `json:"star_rate"`
	Status            models.TaskStatus   `json:"status"`
	IsRework          bool                `json:"is_rework"`
	OriginalTaskID    *string             `json:"original_task_id,omitempty"`
	ReworkSuggestions string              `json:"rework_suggestions,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at"`
	CreatedBy         string              `json:"created_by"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	Project              *ProjectDTO `json:"project,omitempty"`
	AssignedDesignerUser *UserDTO    `json:"assigned_designer_user,omitempty"`
	DesignLeadUser       *UserDTO    `json:"design_lead_user,omitempty"`
	CreatedByUser        *UserDTO    `json:"created_by_user,omitempty"`
	Designers            []UserDTO   `json:"designers"`

	StatusHistory []models.TaskStatusChange `json:"status_history,omitempty"`
	Activity      []models.TaskActivity     `json:"activity_and_comments,omitempty"`
	Deliverables  []models.TaskDeliverable  `json:"deliverables,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ProjectProgressDTO is the completion ratio of a project's tasks
type ProjectProgressDTO struct {
	TotalTasks         int64 `json:"total_tasks"`
	CompletedTasks     int64 `json:"completed_tasks"`
	ProgressPercentage int   `json:"progress_percentage"`
}

// StatusChangeResponse is returned by an explicit status change
type StatusChangeResponse struct {
	Task            TaskDTO             `json:"task"`
	ProjectProgress *ProjectProgressDTO `json:"project_progress,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		Team:     user.Team,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		ProjectName: project.ProjectName,
		Status:      project.Status,
		AssignedAM:  project.AssignedAM,
	}
}

// NewProjectProgress computes the rounded completion percentage
func NewProjectProgress(total, completed int64) ProjectProgressDTO {
	progress := ProjectProgressDTO{TotalTasks: total, CompletedTasks: completed}
	if total > 0 {
		progress.ProgressPercentage = int((completed*100 + total/2) / total)
	}
	return progress
}

// ToTaskDTO converts a Task model to TaskDTO. users and project may be nil;
// references that cannot be resolved are left out.
func ToTaskDTO(task models.Task, users map[string]models.User, project *models.Project) TaskDTO {
	dto := TaskDTO{
		ID:                task.ID,
		OrganizationID:    task.OrganizationID,
		ProjectID:         task.ProjectID,
		TaskName:          task.TaskName,
		Brief:             task.Brief,
		Description:       task.Description,
		TaskType:          task.TaskType,
		Priority:          task.Priority,
		Tags:              nonNil(task.Tags),
		Assets:            nonNil(task.Assets),
		References:        nonNil(task.References),
		DueDate:           task.DueDate,
		DueTime:           task.DueTime,
		EstimatedHours:    task.EstimatedHours,
		ActualHours:       task.ActualHours,
		AssignedDesigner:  task.AssignedDesigner,
		DesignLead:        task.DesignLead,
		StarRate:          task.StarRate,
		Status:            task.Status,
		IsRework:          task.IsRework,
		OriginalTaskID:    task.OriginalTaskID,
		ReworkSuggestions: task.ReworkSuggestions,
		CompletedAt:       task.CompletedAt,
		CreatedBy:         task.CreatedBy,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
		Designers:         make([]UserDTO, 0, len(task.Designers)),
		StatusHistory:     task.StatusHistory,
		Activity:          task.Activity,
		Deliverables:      task.Deliverables,
	}

	if project != nil {
		p := ToProjectDTO(*project)
		dto.Project = &p
	}

	lookup := func(id *string) *UserDTO {
		if id == nil {
			return nil
		}
		if u, ok := users[*id]; ok {
			summary := ToUserDTO(u)
			return &summary
		}
		return nil
	}
	dto.AssignedDesignerUser = lookup(task.AssignedDesigner)
	dto.DesignLeadUser = lookup(task.DesignLead)
	dto.CreatedByUser = lookup(&task.CreatedBy)

	for _, d := range task.Designers {
		if u, ok := users[d.UserID]; ok {
			dto.Designers = append(dto.Designers, ToUserDTO(u))
		} else {
			dto.Designers = append(dto.Designers, UserDTO{ID: d.UserID})
		}
	}

	return dto
}

// ReferencedUserIDs lists every user a task points at, without duplicates
func ReferencedUserIDs(task models.Task) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if task.AssignedDesigner != nil {
		add(*task.AssignedDesigner)
	}
	if task.DesignLead != nil {
		add(*task.DesignLead)
	}
	add(task.CreatedBy)
	for _, d := range task.Designers {
		add(d.UserID)
	}
	return ids
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
