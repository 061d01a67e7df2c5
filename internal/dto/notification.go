package dto

import "github.com/yukikurage/creative-task-api/internal/models"

// NotificationListResponse is the inbox listing
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// UnreadCountResponse is the inbox badge count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkAllReadResponse reports how many notifications were flipped
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
