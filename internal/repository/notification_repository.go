package repository

import (
	"time"

	"github.com/yukikurage/creative-task-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create persists a notification
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByUser lists a user's unexpired notifications, newest first
func (r *GormNotificationRepository) ListByUser(userID string, now time.Time, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// ListUnreadByUser lists a user's unread unexpired notifications, newest first
func (r *GormNotificationRepository) ListUnreadByUser(userID string, now time.Time) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.Where("user_id = ? AND is_read = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts a user's unread unexpired notifications
func (r *GormNotificationRepository) CountUnread(userID string, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND expires_at > ?", userID, false, now).
		Count(&count).Error
	return count, err
}

// MarkAsRead flags one of the user's notifications as read
func (r *GormNotificationRepository) MarkAsRead(id, userID string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := r.db.Model(&notification).Update("is_read", true).Error; err != nil {
			return nil, err
		}
		notification.IsRead = true
	}
	return &notification, nil
}

// MarkAllAsRead flags every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllAsRead(userID string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Delete removes one of the user's notifications
func (r *GormNotificationRepository) Delete(id, userID string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpired removes notifications whose expiry is before now
func (r *GormNotificationRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
