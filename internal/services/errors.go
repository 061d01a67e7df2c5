package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/creative-task-api/internal/models"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrProjectNotFound        = errors.New("project not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrAccessDenied           = errors.New("access denied")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrTaskConflict           = errors.New("task was changed by another request")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// FieldError is one validation violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one request
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// err returns nil when nothing was recorded
func (e *ValidationError) err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func validationFailed(field, message string) error {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

// TransitionError reports a status outside the settable set
type TransitionError struct {
	Status  models.TaskStatus
	Allowed []models.TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("status %q is not allowed", e.Status)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
