package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/models"
)

// TaskDrafter turns free-form client brief text into task suggestions
type TaskDrafter interface {
	DraftTasks(ctx context.Context, projectName, text string) ([]DraftedTask, error)
}

// DraftedTask is a suggestion only; nothing is persisted
type DraftedTask struct {
	TaskName string              `json:"task_name"`
	Brief    string              `json:"brief"`
	TaskType models.TaskType     `json:"task_type"`
	Priority models.TaskPriority `json:"priority,omitempty"`
	DueDate  *time.Time          `json:"due_date"`
}

// BriefAssistant drafts tasks with an OpenAI chat model
type BriefAssistant struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// NewBriefAssistant returns nil when apiKey is empty. baseURL overrides the
// API endpoint when set.
func NewBriefAssistant(apiKey, baseURL, model string) *BriefAssistant {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &BriefAssistant{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		now:    time.Now,
	}
}

// DraftTasks asks the model for a task breakdown of text
func (a *BriefAssistant) DraftTasks(ctx context.Context, projectName, text string) ([]DraftedTask, error) {
	types := make([]string, 0, 7)
	for _, t := range []models.TaskType{
		models.TaskTypeGraphicDesign, models.TaskTypeMotionGraphicDesign, models.TaskType3DDesign,
		models.TaskTypeAIGeneration, models.TaskTypeWebDesign, models.TaskTypeCopyWriting,
		models.TaskTypeStrategyThinking,
	} {
		types = append(types, string(t))
	}

	prompt := fmt.Sprintf(`You help a creative agency break a client brief into tasks.

Current time: %s
Project: %s

Brief:
%s

Return a JSON array of at most %d tasks:
[
  {
    "task_name": "short task name",
    "brief": "what the designer needs to deliver",
    "task_type": one of %s,
    "priority": "low" | "medium" | "high" | "urgent",
    "due_date": "ISO8601 timestamp, or null when the brief gives no deadline"
  }
]

Return [] when the brief contains no actionable work. Return only JSON.`,
		a.now().Format(time.RFC3339), projectName, text, constants.MaxDraftedTasks, strings.Join(types, ", "))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []DraftedTask
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return drafts, nil
}

// stripCodeFence removes a surrounding ```json fence some models add
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// DraftTasks drafts tasks for a project the actor may create tasks in. Drafts
// with an unknown type or no name are dropped.
func (s *TaskService) DraftTasks(ctx context.Context, actor access.Actor, projectID, text string) ([]DraftedTask, error) {
	if s.assistant == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if !actor.CanCreateTasks() {
		return nil, ErrAccessDenied
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationFailed("text", "brief text is required")
	}

	project, err := s.findProject(actor, projectID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.assistant.DraftTasks(ctx, project.ProjectName, text)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	valid := make([]DraftedTask, 0, len(drafts))
	for _, d := range drafts {
		d.TaskName = strings.TrimSpace(d.TaskName)
		if d.TaskName == "" || !d.TaskType.IsValid() {
			continue
		}
		if !d.Priority.IsValid() {
			d.Priority = models.TaskPriorityMedium
		}
		valid = append(valid, d)
		if len(valid) == constants.MaxDraftedTasks {
			break
		}
	}
	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	s.logger.Info("tasks drafted", "project_id", project.ID, "drafts", len(valid), "user_id", actor.UserID)
	return valid, nil
}
