package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/metrics"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/realtime"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"gorm.io/gorm"
)

const unknownName = "Someone"

// NotificationService routes task events to recipients, persists one
// notification per recipient and pushes it over the realtime channel. It also
// serves each user's inbox.
type NotificationService struct {
	store     repository.Store
	pusher    realtime.Pusher
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time

	pending sync.WaitGroup
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store repository.Store, pusher realtime.Pusher, logger *slog.Logger, retention time.Duration) *NotificationService {
	if pusher == nil {
		pusher = realtime.NoopPusher{}
	}
	if retention <= 0 {
		retention = constants.NotificationRetention
	}
	return &NotificationService{
		store:     store,
		pusher:    pusher,
		logger:    logger,
		retention: retention,
		now:       time.Now,
	}
}

// TaskEvent is the task state a notification is composed from, read after the
// mutation committed.
type TaskEvent struct {
	Task    *models.Task
	Project *models.Project
	Actor   access.Actor
}

func (e TaskEvent) assignedAM() string {
	if e.Project == nil || e.Project.AssignedAM == nil {
		return ""
	}
	return *e.Project.AssignedAM
}

func (e TaskEvent) projectName() string {
	if e.Project == nil {
		return "Unknown Project"
	}
	return e.Project.ProjectName
}

// NotifyTaskAssigned tells the new designer and the design lead about an
// assignment. The assigner is never notified of their own action.
func (s *NotificationService) NotifyTaskAssigned(ctx context.Context, ev TaskEvent, designerID string) {
	names := s.names(ev.Actor.UserID)
	message := fmt.Sprintf("%s assigned you to %q in project %q", names.of(ev.Actor.UserID), ev.Task.TaskName, ev.projectName())

	var batch []models.Notification
	for _, userID := range recipients(ev.Actor.UserID, designerID, deref(ev.Task.DesignLead)) {
		batch = append(batch, s.compose(ev, userID, models.NotificationTaskAssigned, "New Task Assigned", message))
	}
	s.dispatch(ctx, batch)
}

// NotifyStatusChange tells the other side of the workflow that the status moved.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, ev TaskEvent, from, to models.TaskStatus) {
	names := s.names(ev.Actor.UserID)
	message := fmt.Sprintf("%s changed status of %q from %s to %s",
		names.of(ev.Actor.UserID), ev.Task.TaskName, humanize(string(from)), humanize(string(to)))

	var batch []models.Notification
	for _, userID := range counterparts(ev) {
		batch = append(batch, s.compose(ev, userID, models.NotificationTaskStatusChanged, "Task Status Updated", message))
	}
	s.dispatch(ctx, batch)
}

// NotifyDesignerChange sends the old designer, the new designer and the
// design lead each their own message about a reassignment.
func (s *NotificationService) NotifyDesignerChange(ctx context.Context, ev TaskEvent, oldDesignerID, newDesignerID string) {
	names := s.names(ev.Actor.UserID, oldDesignerID, newDesignerID)
	by := names.of(ev.Actor.UserID)
	oldName := names.orElse(oldDesignerID, "another designer")
	newName := names.orElse(newDesignerID, "another designer")

	batch := []models.Notification{
		s.compose(ev, oldDesignerID, models.NotificationDesignerChanged, "Task Reassigned",
			fmt.Sprintf("%s reassigned %q from you to %s", by, ev.Task.TaskName, newName)),
		s.compose(ev, newDesignerID, models.NotificationDesignerChanged, "Task Assigned to You",
			fmt.Sprintf("%s reassigned %q from %s to you", by, ev.Task.TaskName, oldName)),
	}
	if lead := deref(ev.Task.DesignLead); lead != "" && lead != ev.Actor.UserID {
		batch = append(batch, s.compose(ev, lead, models.NotificationDesignerChanged, "Designer Changed",
			fmt.Sprintf("%s reassigned %q from %s to %s", by, ev.Task.TaskName, oldName, newName)))
	}
	s.dispatch(ctx, batch)
}

// NotifyCommentAdded notifies the same counterparts as a status change. Entries
// without text do not notify.
func (s *NotificationService) NotifyCommentAdded(ctx context.Context, ev TaskEvent, comment string) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return
	}

	names := s.names(ev.Actor.UserID)
	message := fmt.Sprintf("%s commented on %q: %s", names.of(ev.Actor.UserID), ev.Task.TaskName, preview(comment))

	var batch []models.Notification
	for _, userID := range counterparts(ev) {
		batch = append(batch, s.compose(ev, userID, models.NotificationCommentAdded, "New Comment", message))
	}
	s.dispatch(ctx, batch)
}

// counterparts picks recipients by the actor's side of the workflow. Account
// managers reach the design side; designers reach their AM and lead; leads
// and heads reach the AM and the designer. The actor is never included.
func counterparts(ev TaskEvent) []string {
	designer := deref(ev.Task.AssignedDesigner)
	lead := deref(ev.Task.DesignLead)
	am := ev.assignedAM()

	role := ev.Actor.Role
	switch {
	case role.IsAccountManager():
		return recipients(ev.Actor.UserID, designer, lead)
	case role == models.RoleDesigner:
		return recipients(ev.Actor.UserID, am, lead)
	case role.IsDesignSupervisor():
		return recipients(ev.Actor.UserID, am, designer)
	}
	return nil
}

// recipients drops empty IDs, duplicates and the excluded user, keeping order.
func recipients(exclude string, ids ...string) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *NotificationService) compose(ev TaskEvent, userID string, kind models.NotificationType, title, message string) models.Notification {
	now := s.now()
	taskID := ev.Task.ID
	projectID := ev.Task.ProjectID
	actionBy := ev.Actor.UserID
	return models.Notification{
		UserID:         userID,
		OrganizationID: ev.Task.OrganizationID,
		Type:           kind,
		Title:          title,
		Message:        message,
		TaskID:         &taskID,
		ProjectID:      &projectID,
		ActionBy:       &actionBy,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.retention),
	}
}

// dispatch persists each notification and pushes the stored ones in the
// background. Failures are logged and never returned.
func (s *NotificationService) dispatch(ctx context.Context, batch []models.Notification) {
	for i := range batch {
		n := batch[i]
		if err := s.store.Notifications().Create(&n); err != nil {
			metrics.Notifications.WithLabelValues(string(n.Type), "persist_failed").Inc()
			s.logger.Error("failed to persist notification",
				"user_id", n.UserID,
				"type", n.Type,
				"error", err)
			continue
		}
		metrics.Notifications.WithLabelValues(string(n.Type), "persisted").Inc()

		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.NotificationPushTimeout)
			defer cancel()

			if err := s.pusher.Push(pctx, &n); err != nil {
				metrics.Notifications.WithLabelValues(string(n.Type), "push_failed").Inc()
				s.logger.Warn("failed to push notification",
					"notification_id", n.ID,
					"user_id", n.UserID,
					"error", err)
				return
			}
			metrics.Notifications.WithLabelValues(string(n.Type), "pushed").Inc()
		}()
	}
}

// Wait blocks until every in-flight push has finished.
func (s *NotificationService) Wait() {
	s.pending.Wait()
}

type nameBook map[string]models.User

func (b nameBook) of(id string) string {
	return b.orElse(id, unknownName)
}

func (b nameBook) orElse(id, fallback string) string {
	if u, ok := b[id]; ok && u.FullName != "" {
		return u.FullName
	}
	return fallback
}

func (s *NotificationService) names(ids ...string) nameBook {
	users, err := s.store.Users().FindByIDs(recipients("", ids...))
	if err != nil {
		s.logger.Warn("failed to resolve names for notification", "error", err)
		return nameBook{}
	}
	return nameBook(users)
}

func humanize(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}

func preview(comment string) string {
	runes := []rune(comment)
	if len(runes) <= constants.CommentPreviewLength {
		return comment
	}
	return string(runes[:constants.CommentPreviewLength]) + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Inbox

// ListNotifications returns the user's unexpired notifications, newest first
func (s *NotificationService) ListNotifications(userID string, limit int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 {
		limit = constants.DefaultNotificationLimit
	}
	if limit > constants.MaxNotificationLimit {
		limit = constants.MaxNotificationLimit
	}

	var (
		notifications []models.Notification
		err           error
	)
	if unreadOnly {
		notifications, err = s.store.Notifications().ListUnreadByUser(userID, s.now())
	} else {
		notifications, err = s.store.Notifications().ListByUser(userID, s.now(), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

// UnreadCount counts the user's unread unexpired notifications
func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	count, err := s.store.Notifications().CountUnread(userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead flags a notification owned by userID as read
func (s *NotificationService) MarkAsRead(id, userID string) (*models.Notification, error) {
	n, err := s.store.Notifications().MarkAsRead(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return n, nil
}

// MarkAllAsRead flags all of the user's notifications as read
func (s *NotificationService) MarkAllAsRead(userID string) (int64, error) {
	updated, err := s.store.Notifications().MarkAllAsRead(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return updated, nil
}

// DeleteNotification removes a notification owned by userID
func (s *NotificationService) DeleteNotification(id, userID string) error {
	if err := s.store.Notifications().Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// PurgeExpired removes every notification past its expiry
func (s *NotificationService) PurgeExpired() (int64, error) {
	removed, err := s.store.Notifications().DeleteExpired(s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	metrics.NotificationsPurged.Add(float64(removed))
	return removed, nil
}

// RunPurger purges expired notifications every interval until ctx is done.
func (s *NotificationService) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	s.purgeOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeOnce()
		}
	}
}

func (s *NotificationService) purgeOnce() {
	removed, err := s.PurgeExpired()
	if err != nil {
		s.logger.Error("failed to purge expired notifications", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("purged expired notifications", "removed", removed)
	}
}
