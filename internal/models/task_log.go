package models

import "time"

// TaskStatusChange is one entry of a task's append-only status history.
type TaskStatusChange struct {
	ID        uint64     `gorm:"primarykey" json:"-"`
	TaskID    string     `gorm:"type:varchar(36);not null;index" json:"-"`
	Status    TaskStatus `gorm:"type:varchar(32);not null" json:"status"`
	ChangedAt time.Time  `gorm:"not null" json:"changed_at"`
	ChangedBy string     `gorm:"type:varchar(36);not null" json:"changed_by"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
}

// TaskActivity is one entry of a task's append-only activity and comment log.
type TaskActivity struct {
	ID      uint64       `gorm:"primarykey" json:"-"`
	TaskID  string       `gorm:"type:varchar(36);not null;index" json:"-"`
	ByWho   string       `gorm:"type:varchar(36);not null" json:"by_who"`
	Comment string       `gorm:"type:text" json:"comment"`
	Time    time.Time    `gorm:"not null" json:"time"`
	Type    ActivityType `gorm:"type:varchar(32);not null" json:"type"`
	Asset   *string      `gorm:"type:text" json:"asset,omitempty"`
}

type TaskDeliverable struct {
	ID          uint64    `gorm:"primarykey" json:"-"`
	TaskID      string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Reference   string    `gorm:"type:text;not null" json:"reference"`
	SubmittedBy string    `gorm:"type:varchar(36);not null" json:"submitted_by"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
}

type ActivityType string

const (
	ActivityBriefSubmitted   ActivityType = "brief_submitted"
	ActivityBriefRework      ActivityType = "brief_rework"
	ActivityDesignRework     ActivityType = "design_rework"
	ActivityDesignerFeedback ActivityType = "designer_feedback"
	ActivityClientFeedback   ActivityType = "client_feedback"
	ActivityInternalFeedback ActivityType = "internal_feedback"
	ActivityReworkRequested  ActivityType = "rework_requested"
	ActivityDesignerAssigned ActivityType = "designer_assigned"
	ActivityDesignerChanged  ActivityType = "designer_changed"
	ActivityClarification    ActivityType = "clarification"
	ActivityOnHold           ActivityType = "onhold"
	ActivityReactivate       ActivityType = "reactivate"
	ActivityNeedClarity      ActivityType = "need_clarity"
	ActivityPickedUp         ActivityType = "picked_up"
	ActivityDraftSubmitted   ActivityType = "draft_submitted"
	ActivityAMFeedback       ActivityType = "am_feedback"
	ActivityFeedbackResponse ActivityType = "feedback_response"
	ActivityInternalApproved ActivityType = "internal_approved"
	ActivitySentToClient     ActivityType = "sent_to_client"
	ActivityClientApproved   ActivityType = "client_approved"
	ActivityAcceptFeedback   ActivityType = "accept_feedback"
	ActivityRejectFeedback   ActivityType = "reject_feedback"
	ActivityApproveRework    ActivityType = "approve_rework"
	ActivityRejectRework     ActivityType = "reject_rework"
)
