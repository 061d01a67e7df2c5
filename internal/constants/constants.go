package constants

import "time"

// Context keys shared by the session store and gin context
const (
	ContextKeyUserID         = "user_id"
	ContextKeyOrganizationID = "organization_id"
	ContextKeyRole           = "role"
	ContextKeyTeam           = "team"
	ContextKeyIsAdmin        = "is_admin"
	ContextKeyActor          = "actor"
	ContextKeyTask           = "task"
	ContextKeyProject        = "project"
)

const SessionCookieName = "task_session"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notifications
const (
	NotificationRetention     = 30 * 24 * time.Hour
	DefaultNotificationLimit  = 50
	MaxNotificationLimit      = 200
	CommentPreviewLength      = 100
	NotificationPushTimeout   = 5 * time.Second
	DefaultNotificationPrefix = "notifications.user"
)

// Workload
const (
	MaxStarRate           = 5
	DefaultWorkloadRating = 3
	CapacityLowMax        = 5
	CapacityMediumMax     = 10
	CapacityHighMax       = 20
)

// Brief assistant
const MaxDraftedTasks = 10
