package workflow

import (
	"testing"
	"time"

	"github.com/yukikurage/creative-task-api/internal/models"
	"pgregory.net/rapid"
)

// For any sequence of status changes and activities, CompletedAt is non-nil
// exactly when the task sits at client_approved.
func TestProperty_CompletedAtTracksTerminalState(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := &models.Task{Status: InitialStatus(rapid.Bool().Draw(rt, "rework"))}
		hasDesigner := rapid.Bool().Draw(rt, "has_designer")
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(time.Minute)
			if rapid.Bool().Draw(rt, "explicit") {
				next := rapid.SampledFrom(SettableStatuses()).Draw(rt, "status")
				Apply(task, next, now)
			} else {
				activity := rapid.SampledFrom(CommentTypes()).Draw(rt, "activity")
				if next, ok := NextStatus(activity, hasDesigner); ok {
					Apply(task, next, now)
				}
			}

			if (task.CompletedAt != nil) != IsTerminal(task.Status) {
				rt.Fatalf("completed_at=%v with status %s", task.CompletedAt, task.Status)
			}
			if !IsKnown(task.Status) {
				rt.Fatalf("unknown status %q", task.Status)
			}
		}
	})
}

// Every activity target is a known state, and reactivation never lands on
// designer_assigned without a designer.
func TestProperty_ActivityTargetsAreKnown(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		activity := rapid.SampledFrom(CommentTypes()).Draw(rt, "activity")
		hasDesigner := rapid.Bool().Draw(rt, "has_designer")

		next, ok := NextStatus(activity, hasDesigner)
		if !ok {
			return
		}
		if !IsKnown(next) {
			rt.Fatalf("%s -> unknown %q", activity, next)
		}
		if next == models.TaskStatusDesignerAssigned && !hasDesigner {
			rt.Fatalf("%s assigned a designer-less task", activity)
		}
	})
}
