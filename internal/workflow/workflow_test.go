package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/creative-task-api/internal/models"
)

func TestIsSettable(t *testing.T) {
	for _, s := range Statuses {
		if s == models.TaskStatusHoldByDesigner {
			assert.False(t, IsSettable(s), s)
			continue
		}
		assert.True(t, IsSettable(s), s)
	}
	assert.False(t, IsSettable("brief_rework"))
	assert.False(t, IsSettable(""))
	assert.Len(t, SettableStatuses(), 9)
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.TaskStatusBriefSubmitted, InitialStatus(false))
	assert.Equal(t, models.TaskStatusReworkRequested, InitialStatus(true))
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		activity    models.ActivityType
		hasDesigner bool
		want        models.TaskStatus
		changes     bool
	}{
		{models.ActivityPickedUp, true, models.TaskStatusPickedUp, true},
		{models.ActivityBriefRework, false, models.TaskStatusReworkRequested, true},
		{models.ActivityOnHold, true, models.TaskStatusHoldByDesigner, true},
		{models.ActivityReactivate, true, models.TaskStatusDesignerAssigned, true},
		{models.ActivityReactivate, false, models.TaskStatusBriefSubmitted, true},
		{models.ActivityAMFeedback, true, models.TaskStatusDraftSubmitted, true},
		{models.ActivityRejectFeedback, true, models.TaskStatusInternalApproved, true},
		{models.ActivityRejectRework, true, models.TaskStatusClientApproved, true},
		{models.ActivityAcceptFeedback, true, models.TaskStatusDesignerAssigned, true},
		{models.ActivityFeedbackResponse, true, "", false},
		{models.ActivityNeedClarity, false, "", false},
		{models.ActivityDesignerAssigned, true, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.activity), func(t *testing.T) {
			got, changes := NextStatus(tt.activity, tt.hasDesigner)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changes, changes)
		})
	}
}

func TestIsCommentType(t *testing.T) {
	assert.True(t, IsCommentType(models.ActivityClientFeedback))
	assert.True(t, IsCommentType(models.ActivityNeedClarity))
	assert.False(t, IsCommentType(models.ActivityDesignerChanged))
	assert.False(t, IsCommentType("banana"))
}

func TestApply_CompletionLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &models.Task{Status: models.TaskStatusSentToClient}

	tr := Apply(task, models.TaskStatusClientApproved, now)
	assert.True(t, tr.Completed)
	assert.True(t, tr.Changed())
	if assert.NotNil(t, task.CompletedAt) {
		assert.Equal(t, now, *task.CompletedAt)
	}

	// re-approving keeps the original completion time
	tr = Apply(task, models.TaskStatusClientApproved, now.Add(time.Hour))
	assert.False(t, tr.Changed())
	assert.Equal(t, now, *task.CompletedAt)

	tr = Apply(task, models.TaskStatusClientFeedback, now.Add(2*time.Hour))
	assert.True(t, tr.Reopened)
	assert.Nil(t, task.CompletedAt)
}

func TestActivePredicates(t *testing.T) {
	assert.True(t, IsOngoing(models.TaskStatusDraftSubmitted))
	assert.False(t, IsOngoing(models.TaskStatusClientApproved))

	assert.False(t, IsDesignerActive(models.TaskStatusDraftSubmitted))
	assert.False(t, IsDesignerActive(models.TaskStatusSentToClient))
	assert.True(t, IsDesignerActive(models.TaskStatusPickedUp))
	assert.True(t, IsDesignerActive(models.TaskStatusClientFeedback))
	assert.Len(t, DesignerIdleStatuses(), 4)
}
