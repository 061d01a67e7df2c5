package repository

import (
	"time"

	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/utils"
)

// Store groups the repositories so a service can run several of them inside
// one transaction. Calling Transaction on a store that is already inside a
// transaction opens a savepoint.
type Store interface {
	Tasks() TaskRepository
	Users() UserRepository
	Projects() ProjectRepository
	Organizations() OrganizationRepository
	Notifications() NotificationRepository

	// Transaction runs fn atomically; an error from fn rolls back its writes.
	Transaction(fn func(tx Store) error) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task together with its seeded history and activity
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// UpdateFields writes only the named columns of task
	UpdateFields(task *models.Task, columns ...string) error

	// UpdateFieldsIf writes the named columns only while the row still matches
	// guard, and returns ErrStaleTask otherwise
	UpdateFieldsIf(task *models.Task, guard TaskGuard, columns ...string) error

	// AppendStatusChange appends to the status history
	AppendStatusChange(entry *models.TaskStatusChange) error

	// AppendActivity appends to the activity log
	AppendActivity(entries ...*models.TaskActivity) error

	// AppendDeliverable appends a deliverable reference
	AppendDeliverable(entry *models.TaskDeliverable) error

	// AddDesigner records userID in the task's designer set; repeated calls are no-ops
	AddDesigner(taskID, userID string) error

	// Delete hard deletes a task and its logs
	Delete(id string) error

	// ProjectProgress counts all and completed tasks of a project
	ProjectProgress(projectID string) (total int64, completed int64, err error)
}

// TaskGuard holds the values a conditional task update expects to find.
// Unchecked fields are ignored.
type TaskGuard struct {
	CheckDesigner bool
	// Designer is the expected assigned designer; empty means unassigned
	Designer string

	CheckStatus bool
	Status      models.TaskStatus
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OrganizationID string
	ProjectIDs     []string

	// Visibility predicate
	ParticipantID  string
	UnassignedOnly bool

	AssignedDesigner *string
	AssignedOnly     bool
	Statuses         []models.TaskStatus
	ExcludeStatuses  []models.TaskStatus
	Priority         *models.TaskPriority
	TaskTypes        []models.TaskType
	Search           string
	SortByDueDate    bool
	// Pagination is nil for unpaged listings
	Pagination *utils.PaginationParams
}

// UserRepository defines the interface for user data access and the
// designer workload ledger
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByIDs returns the users found among ids, keyed by ID
	FindByIDs(ids []string) (map[string]models.User, error)

	// ListByOrganization lists users of an organization, optionally limited to one team
	ListByOrganization(organizationID string, team *models.Team) ([]models.User, error)

	// AcquireTask adds a ledger row for (userID, taskID) and bumps the user's
	// counters. It reports false when the row already existed.
	AcquireTask(userID, taskID string, rating int) (bool, error)

	// ReleaseTask removes the ledger row for (userID, taskID) and lowers the
	// user's counters by its rating. It reports false when there was no row.
	ReleaseTask(userID, taskID string) (bool, error)

	// AdjustRating changes the rating of an existing ledger row and applies the delta
	AdjustRating(userID, taskID string, rating int) (bool, error)

	// ReconcileWorkload rebuilds the ledger of an organization from its tasks
	// and recomputes every user's counters from the ledger
	ReconcileWorkload(organizationID string) (ReconcileResult, error)
}

// ReconcileResult summarizes a workload reconciliation.
type ReconcileResult struct {
	RowsRemoved int64 `json:"rows_removed"`
	RowsAdded   int64 `json:"rows_added"`
	UsersSynced int64 `json:"users_synced"`
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id string) (*models.Project, error)

	// FindByIDs returns the projects found among ids, keyed by ID
	FindByIDs(ids []string) (map[string]models.Project, error)

	// ListByAssignedAM lists the projects an account manager is responsible for
	ListByAssignedAM(organizationID, userID string) ([]models.Project, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id string) (*models.Organization, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create persists a notification
	Create(notification *models.Notification) error

	// ListByUser lists a user's unexpired notifications, newest first
	ListByUser(userID string, now time.Time, limit int) ([]models.Notification, error)

	// ListUnreadByUser lists a user's unread unexpired notifications, newest first
	ListUnreadByUser(userID string, now time.Time) ([]models.Notification, error)

	// CountUnread counts a user's unread unexpired notifications
	CountUnread(userID string, now time.Time) (int64, error)

	// MarkAsRead flags one of the user's notifications as read
	MarkAsRead(id, userID string) (*models.Notification, error)

	// MarkAllAsRead flags every unread notification of the user as read
	MarkAllAsRead(userID string) (int64, error)

	// Delete removes one of the user's notifications
	Delete(id, userID string) error

	// DeleteExpired removes notifications whose expiry is before now
	DeleteExpired(now time.Time) (int64, error)
}
