package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/dto"
	"github.com/yukikurage/creative-task-api/internal/metrics"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"github.com/yukikurage/creative-task-api/internal/utils"
	"github.com/yukikurage/creative-task-api/internal/workflow"
	"gorm.io/gorm"
)

var dueTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

const dueDateFormatMessage = "due date must be a date (YYYY-MM-DD) or RFC 3339 timestamp"

// Relations loaded for a full task view
var taskDetailRelations = []string{"StatusHistory", "Activity", "Designers", "Deliverables"}

// TaskService handles task business logic
type TaskService struct {
	store     repository.Store
	notifier  *NotificationService
	assistant TaskDrafter
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService. assistant may be nil.
func NewTaskService(store repository.Store, notifier *NotificationService, assistant TaskDrafter, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:     store,
		notifier:  notifier,
		assistant: assistant,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	TaskName          string
	Brief             string
	Description       string
	TaskType          models.TaskType
	Priority          models.TaskPriority
	DueDate           *time.Time
	// DueDateInvalid marks a due date the caller sent but could not be parsed
	DueDateInvalid    bool
	DueTime           string
	Tags              []string
	Assets            []string
	References        []string
	IsRework          bool
	OriginalTaskID    string
	ReworkSuggestions string
}

// UpdateTaskInput represents a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	TaskName       *string
	Brief          *string
	Description    *string
	Priority       *models.TaskPriority
	DueDate        *time.Time
	DueDateInvalid bool
	ClearDueDate   bool
	DueTime        *string
	EstimatedHours *float64
	ActualHours    *float64
	Tags           *[]string
	Assets         *[]string
	References     *[]string

	AssignedDesigner      *string
	ClearAssignedDesigner bool
	DesignLead            *string
	ClearDesignLead       bool
	StarRate              *int
}

// ActivityInput is one comment or activity entry
type ActivityInput struct {
	Type    models.ActivityType
	Comment string
	Asset   string
}

// ListTasksInput represents free filters for task listings
type ListTasksInput struct {
	Statuses         []models.TaskStatus
	Priority         *models.TaskPriority
	TaskTypes        []models.TaskType
	AssignedDesigner *string
	Search           string
	SortByDueDate    bool
	Page             int
	PageSize         int
}

// CreateTask validates the brief and seeds the status history and activity log
func (s *TaskService) CreateTask(ctx context.Context, actor access.Actor, projectID string, input CreateTaskInput) (*dto.TaskDTO, error) {
	if !actor.CanCreateTasks() {
		return nil, ErrAccessDenied
	}

	input.TaskName = strings.TrimSpace(input.TaskName)
	input.Brief = strings.TrimSpace(input.Brief)
	input.ReworkSuggestions = strings.TrimSpace(input.ReworkSuggestions)
	input.OriginalTaskID = strings.TrimSpace(input.OriginalTaskID)
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	v := &ValidationError{}
	if input.TaskName == "" {
		v.add("task_name", "task name is required")
	}
	if input.Brief == "" {
		v.add("brief", "task brief is required")
	}
	if input.TaskType == "" {
		v.add("task_type", "task type is required")
	} else if !input.TaskType.IsValid() {
		v.add("task_type", "invalid task type")
	}
	if !input.Priority.IsValid() {
		v.add("priority", "invalid priority")
	}
	if input.DueDateInvalid {
		v.add("due_date", dueDateFormatMessage)
	} else if input.DueDate == nil {
		v.add("due_date", "due date is required")
	}
	if input.DueTime != "" && !dueTimePattern.MatchString(input.DueTime) {
		v.add("due_time", "due time must be HH:MM")
	}
	if input.IsRework {
		if input.OriginalTaskID == "" {
			v.add("original_task_id", "original task ID is required for rework tasks")
		}
		if input.ReworkSuggestions == "" {
			v.add("rework_suggestions", "rework suggestions are required for rework tasks")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	project, err := s.findProject(actor, projectID)
	if err != nil {
		return nil, err
	}

	var originalTaskID *string
	if input.IsRework {
		original, err := s.store.Tasks().FindByID(input.OriginalTaskID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find original task: %w", err)
		}
		if original == nil || original.OrganizationID != actor.OrganizationID || original.ProjectID != project.ID {
			return nil, validationFailed("original_task_id", "original task not found or not in the same project")
		}
		originalTaskID = &original.ID
	}

	now := s.now()
	status := workflow.InitialStatus(input.IsRework)
	comment := "Task created"
	if input.IsRework {
		comment = "Rework task created: " + input.ReworkSuggestions
	}

	task := &models.Task{
		OrganizationID:    actor.OrganizationID,
		ProjectID:         project.ID,
		TaskName:          input.TaskName,
		Brief:             input.Brief,
		Description:       strings.TrimSpace(input.Description),
		TaskType:          input.TaskType,
		Priority:          input.Priority,
		Tags:              nonNil(input.Tags),
		Assets:            nonNil(input.Assets),
		References:        nonNil(input.References),
		DueDate:           input.DueDate,
		DueTime:           input.DueTime,
		Status:            status,
		IsRework:          input.IsRework,
		OriginalTaskID:    originalTaskID,
		ReworkSuggestions: input.ReworkSuggestions,
		CreatedBy:         actor.UserID,
		StatusHistory: []models.TaskStatusChange{{
			Status:    status,
			ChangedAt: now,
			ChangedBy: actor.UserID,
		}},
		Activity: []models.TaskActivity{{
			ByWho:   actor.UserID,
			Comment: comment,
			Time:    now,
			Type:    models.ActivityType(status),
		}},
	}

	if err := s.store.Tasks().Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"project_id", project.ID,
		"status", status,
		"created_by", actor.UserID)

	return s.detail(ctx, task.ID)
}

// designerChange describes how an update moves the assigned designer
type designerChange int

const (
	designerUnchanged designerChange = iota
	designerAssigned
	designerReassigned
	designerCleared
)

// UpdateTask applies field changes. Changing the assigned designer moves the
// workload ledger, extends the designer set and logs an assignment activity.
func (s *TaskService) UpdateTask(ctx context.Context, actor access.Actor, taskID string, input UpdateTaskInput) (*dto.TaskDTO, error) {
	task, err := s.loadTask(actor, taskID, "Designers")
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	var columns []string

	if input.TaskName != nil {
		if name := strings.TrimSpace(*input.TaskName); name == "" {
			v.add("task_name", "task name cannot be empty")
		} else {
			task.TaskName = name
			columns = append(columns, "task_name")
		}
	}
	if input.Brief != nil {
		if brief := strings.TrimSpace(*input.Brief); brief == "" {
			v.add("brief", "task brief cannot be empty")
		} else {
			task.Brief = brief
			columns = append(columns, "brief")
		}
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
		columns = append(columns, "description")
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			v.add("priority", "invalid priority")
		} else {
			task.Priority = *input.Priority
			columns = append(columns, "priority")
		}
	}
	if input.DueDateInvalid {
		v.add("due_date", dueDateFormatMessage)
	} else if input.ClearDueDate {
		task.DueDate = nil
		columns = append(columns, "due_date")
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
		columns = append(columns, "due_date")
	}
	if input.DueTime != nil {
		if *input.DueTime != "" && !dueTimePattern.MatchString(*input.DueTime) {
			v.add("due_time", "due time must be HH:MM")
		} else {
			task.DueTime = *input.DueTime
			columns = append(columns, "due_time")
		}
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
		columns = append(columns, "estimated_hours")
	}
	if input.ActualHours != nil {
		task.ActualHours = input.ActualHours
		columns = append(columns, "actual_hours")
	}
	if input.Tags != nil {
		task.Tags = nonNil(*input.Tags)
		columns = append(columns, "tags")
	}
	if input.Assets != nil {
		task.Assets = nonNil(*input.Assets)
		columns = append(columns, "assets")
	}
	if input.References != nil {
		task.References = nonNil(*input.References)
		columns = append(columns, "references")
	}
	if input.StarRate != nil && (*input.StarRate < 0 || *input.StarRate > constants.MaxStarRate) {
		v.add("star_rate", fmt.Sprintf("star rate must be between 0 and %d", constants.MaxStarRate))
	}

	if input.DesignLead != nil && *input.DesignLead != "" {
		if err := s.ensureMember(actor, *input.DesignLead); err != nil {
			if !errors.Is(err, ErrAccessDenied) {
				return nil, err
			}
			v.add("design_lead", "user not found in organization")
		}
	}
	if input.AssignedDesigner != nil && *input.AssignedDesigner != "" {
		if err := s.ensureMember(actor, *input.AssignedDesigner); err != nil {
			if !errors.Is(err, ErrAccessDenied) {
				return nil, err
			}
			v.add("assigned_designer", "user not found in organization")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if input.ClearDesignLead {
		task.DesignLead = nil
		columns = append(columns, "design_lead")
	} else if input.DesignLead != nil {
		task.DesignLead = optional(*input.DesignLead)
		columns = append(columns, "design_lead")
	}

	oldDesigner := deref(task.AssignedDesigner)
	oldRate := task.StarRate
	newDesigner := oldDesigner
	if input.ClearAssignedDesigner {
		newDesigner = ""
	} else if input.AssignedDesigner != nil {
		newDesigner = strings.TrimSpace(*input.AssignedDesigner)
	}

	change := designerUnchanged
	switch {
	case oldDesigner == "" && newDesigner != "":
		change = designerAssigned
	case oldDesigner != "" && newDesigner != "" && oldDesigner != newDesigner:
		change = designerReassigned
	case oldDesigner != "" && newDesigner == "":
		change = designerCleared
	}

	// Ledger rating for the incoming designer
	rating := 0
	if input.StarRate != nil {
		rating = *input.StarRate
	} else if change == designerReassigned && oldRate != nil {
		rating = *oldRate
	}

	if input.StarRate != nil {
		task.StarRate = input.StarRate
		columns = append(columns, "star_rate")
	}
	if change != designerUnchanged {
		task.AssignedDesigner = optional(newDesigner)
		columns = append(columns, "assigned_designer")
	}

	// The write only lands if nobody moved the designer or status since the load
	guard := repository.TaskGuard{}
	if change != designerUnchanged {
		guard.CheckDesigner = true
		guard.Designer = oldDesigner
	}

	now := s.now()
	var tr workflow.Transition
	advanced := false
	if change == designerAssigned &&
		(task.Status == models.TaskStatusBriefSubmitted || task.Status == models.TaskStatusReworkRequested) {
		guard.CheckStatus = true
		guard.Status = task.Status
		tr = workflow.Apply(task, models.TaskStatusDesignerAssigned, now)
		advanced = true
		columns = append(columns, "status", "completed_at")
	}

	var plan workloadPlan
	active := !workflow.IsTerminal(task.Status)
	switch change {
	case designerAssigned:
		if active {
			plan.acquire(newDesigner, rating)
		}
	case designerReassigned:
		plan.release(oldDesigner)
		if active {
			plan.acquire(newDesigner, rating)
		}
	case designerCleared:
		plan.release(oldDesigner)
	case designerUnchanged:
		if oldDesigner != "" && input.StarRate != nil && active {
			plan.adjust(oldDesigner, *input.StarRate)
		}
	}

	var activity *models.TaskActivity
	if change == designerAssigned || change == designerReassigned {
		activity = s.assignmentActivity(actor, oldDesigner, newDesigner, change, now)
	}

	err = s.store.Transaction(func(tx repository.Store) error {
		if err := tx.Tasks().UpdateFieldsIf(task, guard, columns...); err != nil {
			if errors.Is(err, repository.ErrStaleTask) {
				return ErrTaskConflict
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		if change == designerAssigned || change == designerReassigned {
			if err := tx.Tasks().AddDesigner(task.ID, newDesigner); err != nil {
				return fmt.Errorf("failed to record designer: %w", err)
			}
		}
		if activity != nil {
			activity.TaskID = task.ID
			if err := tx.Tasks().AppendActivity(activity); err != nil {
				return fmt.Errorf("failed to append activity: %w", err)
			}
		}
		if advanced {
			if err := tx.Tasks().AppendStatusChange(&models.TaskStatusChange{
				TaskID:    task.ID,
				Status:    tr.To,
				ChangedAt: now,
				ChangedBy: actor.UserID,
				Notes:     "Designer assigned",
			}); err != nil {
				return fmt.Errorf("failed to append status history: %w", err)
			}
		}
		s.applyWorkload(tx, task.ID, plan)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if advanced {
		metrics.StatusTransitions.WithLabelValues(string(tr.To), "assignment").Inc()
	}

	switch change {
	case designerAssigned:
		s.notifier.NotifyTaskAssigned(ctx, s.event(actor, task), newDesigner)
	case designerReassigned:
		s.notifier.NotifyDesignerChange(ctx, s.event(actor, task), oldDesigner, newDesigner)
	}

	return s.detail(ctx, task.ID)
}

func (s *TaskService) assignmentActivity(actor access.Actor, oldDesigner, newDesigner string, change designerChange, now time.Time) *models.TaskActivity {
	users, err := s.store.Users().FindByIDs([]string{actor.UserID, oldDesigner, newDesigner})
	if err != nil {
		s.logger.Warn("failed to resolve names for assignment activity", "error", err)
		users = map[string]models.User{}
	}
	names := nameBook(users)

	if change == designerReassigned {
		return &models.TaskActivity{
			ByWho:   actor.UserID,
			Comment: fmt.Sprintf("Task reassigned from %s to %s", names.orElse(oldDesigner, "Designer"), names.orElse(newDesigner, "Designer")),
			Time:    now,
			Type:    models.ActivityDesignerChanged,
		}
	}
	return &models.TaskActivity{
		ByWho:   actor.UserID,
		Comment: fmt.Sprintf("Task assigned to %s by %s", names.orElse(newDesigner, "Designer"), names.orElse(actor.UserID, "Lead")),
		Time:    now,
		Type:    models.ActivityDesignerAssigned,
	}
}

// AddActivity appends a comment or activity entry. Activity types that map to
// a state move the task there and append a status history entry as well.
func (s *TaskService) AddActivity(ctx context.Context, actor access.Actor, taskID string, input ActivityInput) (*dto.TaskDTO, error) {
	comment := strings.TrimSpace(input.Comment)
	asset := strings.TrimSpace(input.Asset)

	v := &ValidationError{}
	if comment == "" && asset == "" {
		v.add("comment", "comment text or asset is required")
	}
	if input.Type == "" {
		v.add("type", "comment type is required")
	} else if !workflow.IsCommentType(input.Type) {
		v.add("type", fmt.Sprintf("unknown comment type %q", input.Type))
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	task, err := s.loadTask(actor, taskID, "Designers")
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.TaskActivity{
		TaskID:  task.ID,
		ByWho:   actor.UserID,
		Comment: comment,
		Time:    now,
		Type:    input.Type,
		Asset:   optional(asset),
	}

	var tr workflow.Transition
	moved := false
	if next, ok := workflow.NextStatus(input.Type, task.HasDesigner()); ok && next != task.Status {
		tr = workflow.Apply(task, next, now)
		moved = true
	}

	err = s.store.Transaction(func(tx repository.Store) error {
		if err := tx.Tasks().AppendActivity(entry); err != nil {
			return fmt.Errorf("failed to append activity: %w", err)
		}

		columns := []string{}
		if moved {
			columns = append(columns, "status", "completed_at")
			if err := tx.Tasks().AppendStatusChange(&models.TaskStatusChange{
				TaskID:    task.ID,
				Status:    tr.To,
				ChangedAt: now,
				ChangedBy: actor.UserID,
				Notes:     "Activity: " + string(input.Type),
			}); err != nil {
				return fmt.Errorf("failed to append status history: %w", err)
			}
		}
		if err := tx.Tasks().UpdateFields(task, columns...); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if moved {
			s.applyWorkload(tx, task.ID, completionPlan(task, tr))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := s.event(actor, task)
	if moved {
		metrics.StatusTransitions.WithLabelValues(string(tr.To), "activity").Inc()
		s.notifier.NotifyStatusChange(ctx, ev, tr.From, tr.To)
	}
	s.notifier.NotifyCommentAdded(ctx, ev, comment)

	return s.detail(ctx, task.ID)
}

// SetStatus applies an explicit status change from the settable set. A
// history entry is appended even when the status does not move.
func (s *TaskService) SetStatus(ctx context.Context, actor access.Actor, taskID string, status models.TaskStatus, notes string) (*dto.StatusChangeResponse, error) {
	if !workflow.IsSettable(status) {
		return nil, &TransitionError{Status: status, Allowed: workflow.SettableStatuses()}
	}

	task, err := s.loadTask(actor, taskID, "Designers")
	if err != nil {
		return nil, err
	}

	now := s.now()
	tr := workflow.Apply(task, status, now)

	err = s.store.Transaction(func(tx repository.Store) error {
		if err := tx.Tasks().UpdateFields(task, "status", "completed_at"); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := tx.Tasks().AppendStatusChange(&models.TaskStatusChange{
			TaskID:    task.ID,
			Status:    status,
			ChangedAt: now,
			ChangedBy: actor.UserID,
			Notes:     strings.TrimSpace(notes),
		}); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}
		s.applyWorkload(tx, task.ID, completionPlan(task, tr))
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(status), "status").Inc()
	if tr.Changed() {
		s.notifier.NotifyStatusChange(ctx, s.event(actor, task), tr.From, tr.To)
	}

	view, err := s.detail(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.StatusChangeResponse{Task: *view}
	total, completed, err := s.store.Tasks().ProjectProgress(task.ProjectID)
	if err != nil {
		s.logger.Warn("failed to compute project progress", "project_id", task.ProjectID, "error", err)
	} else {
		progress := dto.NewProjectProgress(total, completed)
		resp.ProjectProgress = &progress
	}
	return resp, nil
}

// AddDeliverable appends a deliverable reference submitted by the actor
func (s *TaskService) AddDeliverable(ctx context.Context, actor access.Actor, taskID, reference string) (*dto.TaskDTO, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, validationFailed("reference", "deliverable reference is required")
	}

	task, err := s.loadTask(actor, taskID, "Designers")
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(func(tx repository.Store) error {
		if err := tx.Tasks().AppendDeliverable(&models.TaskDeliverable{
			TaskID:      task.ID,
			Reference:   reference,
			SubmittedBy: actor.UserID,
			SubmittedAt: s.now(),
		}); err != nil {
			return fmt.Errorf("failed to append deliverable: %w", err)
		}
		return tx.Tasks().UpdateFields(task)
	})
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, task.ID)
}

// DeleteTask hard deletes a task. Only administrators and the creator may
// delete; every designer's ledger row for the task is released first.
func (s *TaskService) DeleteTask(ctx context.Context, actor access.Actor, taskID string) error {
	task, err := s.loadTask(actor, taskID, "Designers")
	if err != nil {
		return err
	}
	if !actor.CanDelete(task) {
		return ErrAccessDenied
	}

	var plan workloadPlan
	for _, d := range task.Designers {
		plan.release(d.UserID)
	}
	if task.HasDesigner() {
		plan.release(*task.AssignedDesigner)
	}

	err = s.store.Transaction(func(tx repository.Store) error {
		s.applyWorkload(tx, task.ID, plan)
		if err := tx.Tasks().Delete(task.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", task.ID, "deleted_by", actor.UserID)
	return nil
}

// GetTask returns a task with its logs and people resolved
func (s *TaskService) GetTask(ctx context.Context, actor access.Actor, taskID string) (*dto.TaskDTO, error) {
	if _, err := s.loadTask(actor, taskID, "Designers"); err != nil {
		return nil, err
	}
	return s.detail(ctx, taskID)
}

// ListTasks lists the tasks visible to the actor
func (s *TaskService) ListTasks(ctx context.Context, actor access.Actor, input ListTasksInput) (*dto.TaskListResponse, error) {
	return s.list(ctx, access.ScopeFor(actor), nil, input)
}

// ListProjectTasks lists the visible tasks of one project
func (s *TaskService) ListProjectTasks(ctx context.Context, actor access.Actor, projectID string, input ListTasksInput) (*dto.TaskListResponse, error) {
	project, err := s.findProject(actor, projectID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, access.ProjectScope(actor), []string{project.ID}, input)
}

// ListCompletedProjectTasks lists approved tasks of a project, the pool rework
// tasks are spawned from
func (s *TaskService) ListCompletedProjectTasks(ctx context.Context, actor access.Actor, projectID string, input ListTasksInput) (*dto.TaskListResponse, error) {
	input.Statuses = []models.TaskStatus{models.TaskStatusClientApproved}
	return s.ListProjectTasks(ctx, actor, projectID, input)
}

// ListMyTasks lists tasks assigned to the actor, earliest due first
func (s *TaskService) ListMyTasks(ctx context.Context, actor access.Actor, input ListTasksInput) (*dto.TaskListResponse, error) {
	input.AssignedDesigner = &actor.UserID
	input.SortByDueDate = true
	return s.list(ctx, access.TaskScope{OrganizationID: actor.OrganizationID}, nil, input)
}

// ListUnassignedTasks lists tasks waiting for a designer
func (s *TaskService) ListUnassignedTasks(ctx context.Context, actor access.Actor, input ListTasksInput) (*dto.TaskListResponse, error) {
	scope, ok := access.UnassignedScope(actor)
	if !ok {
		return nil, ErrAccessDenied
	}
	return s.list(ctx, scope, nil, input)
}

func (s *TaskService) list(ctx context.Context, scope access.TaskScope, projectIDs []string, input ListTasksInput) (*dto.TaskListResponse, error) {
	v := &ValidationError{}
	for _, st := range input.Statuses {
		if !workflow.IsKnown(st) {
			v.add("status", fmt.Sprintf("unknown status %q", st))
		}
	}
	for _, tt := range input.TaskTypes {
		if !tt.IsValid() {
			v.add("task_type", fmt.Sprintf("unknown task type %q", tt))
		}
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		v.add("priority", "invalid priority")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	params := utils.NewPaginationParams(input.Page, input.PageSize)
	filter := repository.TaskFilter{
		OrganizationID:   scope.OrganizationID,
		ProjectIDs:       projectIDs,
		ParticipantID:    scope.ParticipantID,
		UnassignedOnly:   scope.UnassignedOnly,
		AssignedDesigner: input.AssignedDesigner,
		Statuses:         input.Statuses,
		Priority:         input.Priority,
		TaskTypes:        input.TaskTypes,
		Search:           input.Search,
		SortByDueDate:    input.SortByDueDate,
		Pagination:       &params,
	}

	tasks, total, err := s.store.Tasks().List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items, err := s.populate(ctx, tasks)
	if err != nil {
		return nil, err
	}

	return &dto.TaskListResponse{
		Tasks:      items,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
		TotalPages: params.TotalPages(total),
	}, nil
}

// loadTask finds a task the actor may act on. Tenant mismatch and missing
// access are reported as ErrTaskNotFound.
func (s *TaskService) loadTask(actor access.Actor, taskID string, preload ...string) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !access.CanAccess(actor, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) findProject(actor access.Actor, projectID string) (*models.Project, error) {
	project, err := s.store.Projects().FindByID(strings.TrimSpace(projectID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.OrganizationID != actor.OrganizationID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// ensureMember returns ErrAccessDenied when userID is not in the actor's organization
func (s *TaskService) ensureMember(actor access.Actor, userID string) error {
	user, err := s.store.Users().FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccessDenied
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.OrganizationID != actor.OrganizationID {
		return ErrAccessDenied
	}
	return nil
}

// event builds the notification input from the committed task
func (s *TaskService) event(actor access.Actor, task *models.Task) TaskEvent {
	ev := TaskEvent{Task: task, Actor: actor}
	project, err := s.store.Projects().FindByID(task.ProjectID)
	if err != nil {
		s.logger.Warn("failed to load project for notification", "project_id", task.ProjectID, "error", err)
		return ev
	}
	ev.Project = project
	return ev
}

func (s *TaskService) detail(ctx context.Context, taskID string) (*dto.TaskDTO, error) {
	task, err := s.store.Tasks().FindByID(taskID, taskDetailRelations...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	items, err := s.populate(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
