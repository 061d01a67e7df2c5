package workflow

import (
	"slices"

	"github.com/yukikurage/creative-task-api/internal/models"
)

type effectKind int

const (
	// noChange records activity only.
	noChange effectKind = iota
	// fixed moves to a single target state.
	fixed
	// backToDesigner returns the task to the designer queue, or to the brief
	// stage when nobody is assigned.
	backToDesigner
)

type effect struct {
	kind   effectKind
	target models.TaskStatus
}

var activityEffects = map[models.ActivityType]effect{
	models.ActivityBriefSubmitted:   {fixed, models.TaskStatusBriefSubmitted},
	models.ActivityPickedUp:         {fixed, models.TaskStatusPickedUp},
	models.ActivityDraftSubmitted:   {fixed, models.TaskStatusDraftSubmitted},
	models.ActivityInternalApproved: {fixed, models.TaskStatusInternalApproved},
	models.ActivitySentToClient:     {fixed, models.TaskStatusSentToClient},
	models.ActivityClientApproved:   {fixed, models.TaskStatusClientApproved},
	models.ActivityClientFeedback:   {fixed, models.TaskStatusClientFeedback},
	models.ActivityReworkRequested:  {fixed, models.TaskStatusReworkRequested},
	models.ActivityBriefRework:      {fixed, models.TaskStatusReworkRequested},
	models.ActivityOnHold:           {fixed, models.TaskStatusHoldByDesigner},
	models.ActivityAMFeedback:       {fixed, models.TaskStatusDraftSubmitted},
	models.ActivityRejectFeedback:   {fixed, models.TaskStatusInternalApproved},
	models.ActivityRejectRework:     {fixed, models.TaskStatusClientApproved},

	models.ActivityReactivate:       {kind: backToDesigner},
	models.ActivityInternalFeedback: {kind: backToDesigner},
	models.ActivityAcceptFeedback:   {kind: backToDesigner},
	models.ActivityApproveRework:    {kind: backToDesigner},

	models.ActivityFeedbackResponse: {kind: noChange},
	models.ActivityNeedClarity:      {kind: noChange},
	models.ActivityClarification:    {kind: noChange},
	models.ActivityDesignRework:     {kind: noChange},
	models.ActivityDesignerFeedback: {kind: noChange},
}

// IsCommentType reports whether t may be submitted as an activity entry.
// designer_assigned and designer_changed are written by the assignment flow.
func IsCommentType(t models.ActivityType) bool {
	_, ok := activityEffects[t]
	return ok
}

// NextStatus returns the state an activity of type t moves a task into. The
// boolean is false for types that only record activity.
func NextStatus(t models.ActivityType, hasDesigner bool) (models.TaskStatus, bool) {
	e, ok := activityEffects[t]
	if !ok {
		return "", false
	}
	switch e.kind {
	case fixed:
		return e.target, true
	case backToDesigner:
		if hasDesigner {
			return models.TaskStatusDesignerAssigned, true
		}
		return models.TaskStatusBriefSubmitted, true
	}
	return "", false
}

// CommentTypes returns every accepted activity type in sorted order.
func CommentTypes() []models.ActivityType {
	out := make([]models.ActivityType, 0, len(activityEffects))
	for t := range activityEffects {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
