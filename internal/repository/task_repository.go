package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleTask means a conditional update found the row already changed
var ErrStaleTask = errors.New("task repository: task changed since it was read")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts the task row and any history, activity and designer rows attached to it
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading. Log relations are
// always returned in append order.
func (r *GormTaskRepository) FindByID(id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
			return db.Order(orderFor(p))
		})
	}

	if err := query.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func orderFor(relation string) string {
	switch relation {
	case "Designers":
		return "added_at ASC, user_id ASC"
	default:
		return "id ASC"
	}
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if filter.OrganizationID == "" {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("tasks.organization_id = ?", filter.OrganizationID)

	if len(filter.ProjectIDs) > 0 {
		query = query.Where("tasks.project_id IN ?", filter.ProjectIDs)
	}
	if filter.ParticipantID != "" {
		query = query.Where("(tasks.assigned_designer = ? OR tasks.design_lead = ?)", filter.ParticipantID, filter.ParticipantID)
	}
	if filter.UnassignedOnly {
		query = query.Where("(tasks.assigned_designer IS NULL OR tasks.assigned_designer = '')")
	}
	if filter.AssignedOnly {
		query = query.Where("tasks.assigned_designer IS NOT NULL AND tasks.assigned_designer <> ''")
	}
	if filter.AssignedDesigner != nil {
		query = query.Where("tasks.assigned_designer = ?", *filter.AssignedDesigner)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("tasks.status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatuses) > 0 {
		query = query.Where("tasks.status NOT IN ?", filter.ExcludeStatuses)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if len(filter.TaskTypes) > 0 {
		query = query.Where("tasks.task_type IN ?", filter.TaskTypes)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			"(LOWER(tasks.task_name) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!' OR LOWER(tasks.brief) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	if err := listQuery.Preload("Designers", func(db *gorm.DB) *gorm.DB {
		return db.Order("added_at ASC, user_id ASC")
	}).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// UpdateFields writes only the named columns. updated_at is always written.
func (r *GormTaskRepository) UpdateFields(task *models.Task, columns ...string) error {
	task.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	return r.db.Model(&models.Task{ID: task.ID}).
		Select(columns).
		Omit(clause.Associations).
		Updates(task).Error
}

// UpdateFieldsIf is UpdateFields guarded by a compare-and-set on the
// designer and status columns
func (r *GormTaskRepository) UpdateFieldsIf(task *models.Task, guard TaskGuard, columns ...string) error {
	task.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	query := r.db.Model(&models.Task{ID: task.ID})
	if guard.CheckDesigner {
		if guard.Designer == "" {
			query = query.Where("(assigned_designer IS NULL OR assigned_designer = '')")
		} else {
			query = query.Where("assigned_designer = ?", guard.Designer)
		}
	}
	if guard.CheckStatus {
		query = query.Where("status = ?", guard.Status)
	}

	result := query.Select(columns).Omit(clause.Associations).Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleTask
	}
	return nil
}

// AppendStatusChange appends to the status history
func (r *GormTaskRepository) AppendStatusChange(entry *models.TaskStatusChange) error {
	return r.db.Create(entry).Error
}

// AppendActivity appends to the activity log in the order given
func (r *GormTaskRepository) AppendActivity(entries ...*models.TaskActivity) error {
	for _, entry := range entries {
		if err := r.db.Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// AppendDeliverable appends a deliverable reference
func (r *GormTaskRepository) AppendDeliverable(entry *models.TaskDeliverable) error {
	return r.db.Create(entry).Error
}

// AddDesigner records userID in the task's designer set
func (r *GormTaskRepository) AddDesigner(taskID, userID string) error {
	designer := models.TaskDesigner{
		TaskID:  taskID,
		UserID:  userID,
		AddedAt: time.Now(),
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&designer).Error
}

// Delete hard deletes a task with its logs and designer set. Workload ledger
// rows are left to the caller so counters can be released first.
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&models.TaskStatusChange{},
			&models.TaskActivity{},
			&models.TaskDeliverable{},
			&models.TaskDesigner{},
		}
		for _, child := range children {
			if err := tx.Where("task_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ProjectProgress counts all and completed tasks of a project
func (r *GormTaskRepository) ProjectProgress(projectID string) (int64, int64, error) {
	var total, completed int64

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	if err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.TaskStatusClientApproved).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}
