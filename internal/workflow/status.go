// Package workflow holds the task state machine: the status whitelist, the
// activity-type transition table and the completion rules.
package workflow

import (
	"time"

	"github.com/yukikurage/creative-task-api/internal/models"
)

// Statuses lists every task state in pipeline order.
var Statuses = []models.TaskStatus{
	models.TaskStatusBriefSubmitted,
	models.TaskStatusReworkRequested,
	models.TaskStatusDesignerAssigned,
	models.TaskStatusPickedUp,
	models.TaskStatusHoldByDesigner,
	models.TaskStatusDraftSubmitted,
	models.TaskStatusInternalApproved,
	models.TaskStatusSentToClient,
	models.TaskStatusClientApproved,
	models.TaskStatusClientFeedback,
}

// IsKnown reports whether s is one of the task states.
func IsKnown(s models.TaskStatus) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsSettable reports whether s may be set directly through a status change.
// hold_by_designer is only reachable through the onhold activity.
func IsSettable(s models.TaskStatus) bool {
	return IsKnown(s) && s != models.TaskStatusHoldByDesigner
}

// SettableStatuses returns the explicit-change whitelist.
func SettableStatuses() []models.TaskStatus {
	out := make([]models.TaskStatus, 0, len(Statuses)-1)
	for _, s := range Statuses {
		if IsSettable(s) {
			out = append(out, s)
		}
	}
	return out
}

// IsTerminal reports whether s completes the task.
func IsTerminal(s models.TaskStatus) bool {
	return s == models.TaskStatusClientApproved
}

// InitialStatus is the state a new task starts in.
func InitialStatus(isRework bool) models.TaskStatus {
	if isRework {
		return models.TaskStatusReworkRequested
	}
	return models.TaskStatusBriefSubmitted
}

// Transition describes one applied status change.
type Transition struct {
	From models.TaskStatus
	To   models.TaskStatus
	// Completed is set when the task is at the terminal state after the change.
	Completed bool
	// Reopened is set when the task left the terminal state.
	Reopened bool
}

// Changed reports whether the status value moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Apply moves task to next and keeps CompletedAt in step with the terminal
// state: set when the task is at client_approved, nil otherwise.
func Apply(task *models.Task, next models.TaskStatus, now time.Time) Transition {
	tr := Transition{From: task.Status, To: next}
	task.Status = next

	if IsTerminal(next) {
		tr.Completed = true
		if task.CompletedAt == nil || !IsTerminal(tr.From) {
			completed := now
			task.CompletedAt = &completed
		}
	} else {
		tr.Reopened = IsTerminal(tr.From)
		task.CompletedAt = nil
	}
	return tr
}

// Active statuses for dashboards. The organization overview treats anything
// short of client approval as ongoing; designer workload additionally drops
// work that is waiting on review or the client.
var designerIdleStatuses = map[models.TaskStatus]struct{}{
	models.TaskStatusDraftSubmitted:   {},
	models.TaskStatusInternalApproved: {},
	models.TaskStatusSentToClient:     {},
	models.TaskStatusClientApproved:   {},
}

// IsOngoing is the organization-wide active predicate.
func IsOngoing(s models.TaskStatus) bool {
	return s != models.TaskStatusClientApproved
}

// IsDesignerActive is the designer-workload active predicate.
func IsDesignerActive(s models.TaskStatus) bool {
	_, idle := designerIdleStatuses[s]
	return !idle
}

// DesignerIdleStatuses lists the statuses excluded from designer workload.
func DesignerIdleStatuses() []models.TaskStatus {
	return []models.TaskStatus{
		models.TaskStatusDraftSubmitted,
		models.TaskStatusInternalApproved,
		models.TaskStatusSentToClient,
		models.TaskStatusClientApproved,
	}
}
