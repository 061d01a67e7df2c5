package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/dto"
	apierrors "github.com/yukikurage/creative-task-api/internal/errors"
	"github.com/yukikurage/creative-task-api/internal/middleware"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/services"
	"github.com/yukikurage/creative-task-api/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTaskRequest is the body of POST /api/tasks/project/:projectId
type CreateTaskRequest struct {
	TaskName          string              `json:"task_name"`
	Brief             string              `json:"brief"`
	Description       string              `json:"description"`
	TaskType          models.TaskType     `json:"task_type"`
	Priority          models.TaskPriority `json:"priority"`
	DueDate           string              `json:"due_date"`
	DueTime           string              `json:"due_time"`
	Tags              []string            `json:"tags"`
	Assets            []string            `json:"assets"`
	References        []string            `json:"references"`
	IsRework          bool                `json:"is_rework"`
	OriginalTaskID    string              `json:"original_task_id"`
	ReworkSuggestions string              `json:"rework_suggestions"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:taskId. Absent fields are
// left alone; an explicit null clears due_date, assigned_designer and design_lead.
type UpdateTaskRequest struct {
	TaskName         *string              `json:"task_name"`
	Brief            *string              `json:"brief"`
	Description      *string              `json:"description"`
	Priority         *models.TaskPriority `json:"priority"`
	DueDate          *string              `json:"due_date"`
	DueTime          *string              `json:"due_time"`
	EstimatedHours   *float64             `json:"estimated_hours"`
	ActualHours      *float64             `json:"actual_hours"`
	Tags             *[]string            `json:"tags"`
	Assets           *[]string            `json:"assets"`
	References       *[]string            `json:"references"`
	AssignedDesigner *string              `json:"assigned_designer"`
	DesignLead       *string              `json:"design_lead"`
	StarRate         *int                 `json:"star_rate"`
}

type StatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
	Notes  string            `json:"notes"`
}

type ActivityRequest struct {
	Type    models.ActivityType `json:"type"`
	Comment string              `json:"comment"`
	Asset   string              `json:"asset"`
}

type DeliverableRequest struct {
	Reference string `json:"reference" binding:"required"`
}

type DraftTasksRequest struct {
	Text string `json:"text"`
}

// CreateTask creates a task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var dueDate *time.Time
	dueDateInvalid := false
	if req.DueDate != "" {
		if parsed, err := parseDueDate(req.DueDate); err != nil {
			dueDateInvalid = true
		} else {
			dueDate = &parsed
		}
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), actor, c.Param("projectId"), services.CreateTaskInput{
		TaskName:          req.TaskName,
		Brief:             req.Brief,
		Description:       req.Description,
		TaskType:          req.TaskType,
		Priority:          req.Priority,
		DueDate:           dueDate,
		DueDateInvalid:    dueDateInvalid,
		DueTime:           req.DueTime,
		Tags:              req.Tags,
		Assets:            req.Assets,
		References:        req.References,
		IsRework:          req.IsRework,
		OriginalTaskID:    req.OriginalTaskID,
		ReworkSuggestions: req.ReworkSuggestions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask returns a task with its logs and user summaries
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), actor, c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Parse twice: once into typed fields, once to see which keys were sent as null
	var req UpdateTaskRequest
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		TaskName:              req.TaskName,
		Brief:                 req.Brief,
		Description:           req.Description,
		Priority:              req.Priority,
		DueTime:               req.DueTime,
		EstimatedHours:        req.EstimatedHours,
		ActualHours:           req.ActualHours,
		Tags:                  req.Tags,
		Assets:                req.Assets,
		References:            req.References,
		StarRate:              req.StarRate,
		ClearDueDate:          isNull(raw, "due_date"),
		ClearAssignedDesigner: isNull(raw, "assigned_designer") || emptyString(req.AssignedDesigner),
		ClearDesignLead:       isNull(raw, "design_lead") || emptyString(req.DesignLead),
	}
	if !input.ClearAssignedDesigner {
		input.AssignedDesigner = req.AssignedDesigner
	}
	if !input.ClearDesignLead {
		input.DesignLead = req.DesignLead
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if parsed, err := parseDueDate(*req.DueDate); err != nil {
			input.DueDateInvalid = true
		} else {
			input.DueDate = &parsed
		}
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), actor, c.Param("taskId"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SetStatus moves a task to one of the settable statuses
func (h *TaskHandler) SetStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	result, err := h.tasks.SetStatus(c.Request.Context(), actor, c.Param("taskId"), req.Status, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddActivity appends a comment, possibly moving the task along the workflow
func (h *TaskHandler) AddActivity(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.AddActivity(c.Request.Context(), actor, c.Param("taskId"), services.ActivityInput{
		Type:    req.Type,
		Comment: req.Comment,
		Asset:   req.Asset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// AddDeliverable attaches a delivered asset reference
func (h *TaskHandler) AddDeliverable(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req DeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "reference is required")
		return
	}

	task, err := h.tasks.AddDeliverable(c.Request.Context(), actor, c.Param("taskId"), req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// DeleteTask removes a task and releases its designers' workload
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), actor, c.Param("taskId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ListProjectTasks lists every task in the project
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	h.listInProject(c, h.tasks.ListProjectTasks)
}

// ListCompletedProjectTasks lists client-approved tasks in the project
func (h *TaskHandler) ListCompletedProjectTasks(c *gin.Context) {
	h.listInProject(c, h.tasks.ListCompletedProjectTasks)
}

// ListTasks lists tasks visible to the actor across the organization
func (h *TaskHandler) ListTasks(c *gin.Context) {
	h.listForActor(c, h.tasks.ListTasks)
}

// ListMyTasks lists tasks assigned to the actor
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	h.listForActor(c, h.tasks.ListMyTasks)
}

// ListUnassignedTasks lists tasks awaiting a designer
func (h *TaskHandler) ListUnassignedTasks(c *gin.Context) {
	h.listForActor(c, h.tasks.ListUnassignedTasks)
}

// DraftTasks proposes tasks from free-form client text without saving them
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.tasks.DraftTasks(c.Request.Context(), actor, c.Param("projectId"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

type projectLister func(ctx context.Context, actor access.Actor, projectID string, input services.ListTasksInput) (*dto.TaskListResponse, error)

type actorLister func(ctx context.Context, actor access.Actor, input services.ListTasksInput) (*dto.TaskListResponse, error)

func (h *TaskHandler) listInProject(c *gin.Context, list projectLister) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	result, err := list(c.Request.Context(), actor, c.Param("projectId"), listInput(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) listForActor(c *gin.Context, list actorLister) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	result, err := list(c.Request.Context(), actor, listInput(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// listInput reads the free filters shared by every listing endpoint
func listInput(c *gin.Context) services.ListTasksInput {
	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		Search:        strings.TrimSpace(c.Query("search")),
		SortByDueDate: c.Query("sort") == "due_date",
		Page:          params.Page,
		PageSize:      params.Limit,
	}

	for _, s := range queryList(c, "status") {
		input.Statuses = append(input.Statuses, models.TaskStatus(s))
	}
	for _, t := range queryList(c, "task_type") {
		input.TaskTypes = append(input.TaskTypes, models.TaskType(t))
	}
	if p := c.Query("priority"); p != "" {
		priority := models.TaskPriority(p)
		input.Priority = &priority
	}
	if d := c.Query("assigned_designer"); d != "" {
		input.AssignedDesigner = &d
	}
	return input
}

// queryList accepts both repeated keys and comma separated values
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	value, ok := raw[key]
	return ok && bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func emptyString(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}
