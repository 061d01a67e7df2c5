package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/creative-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrLedgerRow is returned when a workload ledger row cannot be written.
	ErrLedgerRow = errors.New("user repository: workload ledger write failed")
	// ErrCounterUpdate is returned when a user's workload counters cannot be updated.
	ErrCounterUpdate = errors.New("user repository: workload counter update failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users found among ids, keyed by ID
func (r *GormUserRepository) FindByIDs(ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var found []models.User
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

// ListByOrganization lists users of an organization, optionally limited to one team
func (r *GormUserRepository) ListByOrganization(organizationID string, team *models.Team) ([]models.User, error) {
	var users []models.User
	query := r.db.Where("organization_id = ?", organizationID)
	if team != nil {
		query = query.Where("team = ?", *team)
	}
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AcquireTask adds a ledger row and bumps the counters atomically
func (r *GormUserRepository) AcquireTask(userID, taskID string, rating int) (bool, error) {
	acquired := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		row := models.TaskDifficulty{UserID: userID, TaskID: taskID, StarRating: rating}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrLedgerRow, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := bumpCounters(tx, userID, 1, rating); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

// ReleaseTask removes a ledger row and lowers the counters by its rating
func (r *GormUserRepository) ReleaseTask(userID, taskID string) (bool, error) {
	released := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row models.TaskDifficulty
		if err := tx.Where("user_id = ? AND task_id = ?", userID, taskID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		result := tx.Where("user_id = ? AND task_id = ?", userID, taskID).Delete(&models.TaskDifficulty{})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrLedgerRow, result.Error)
		}
		// a concurrent release already took it
		if result.RowsAffected == 0 {
			return nil
		}

		if err := bumpCounters(tx, userID, -1, -row.StarRating); err != nil {
			return err
		}
		released = true
		return nil
	})
	return released, err
}

// AdjustRating changes the rating of an existing ledger row and applies the delta
func (r *GormUserRepository) AdjustRating(userID, taskID string, rating int) (bool, error) {
	adjusted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row models.TaskDifficulty
		if err := tx.Where("user_id = ? AND task_id = ?", userID, taskID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if row.StarRating == rating {
			return nil
		}

		result := tx.Model(&models.TaskDifficulty{}).
			Where("user_id = ? AND task_id = ? AND star_rating = ?", userID, taskID, row.StarRating).
			Update("star_rating", rating)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrLedgerRow, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := bumpCounters(tx, userID, 0, rating-row.StarRating); err != nil {
			return err
		}
		adjusted = true
		return nil
	})
	return adjusted, err
}

func bumpCounters(tx *gorm.DB, userID string, tasks, score int) error {
	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"ongoing_tasks":  gorm.Expr("ongoing_tasks + ?", tasks),
			"workload_score": gorm.Expr("workload_score + ?", score),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrCounterUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s not found", ErrCounterUpdate, userID)
	}
	return nil
}

// ReconcileWorkload rebuilds the ledger from the organization's tasks and
// recomputes counters from the ledger. The ledger keeps one row per
// (assigned designer, task) for every task short of client approval.
func (r *GormUserRepository) ReconcileWorkload(organizationID string) (ReconcileResult, error) {
	var res ReconcileResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		orgUsers := tx.Model(&models.User{}).Select("id").Where("organization_id = ?", organizationID)

		stale := tx.Model(&models.Task{}).
			Select("1").
			Where("tasks.id = task_difficulties.task_id").
			Where("tasks.assigned_designer = task_difficulties.user_id").
			Where("tasks.status <> ?", models.TaskStatusClientApproved)

		removed := tx.Where("user_id IN (?)", orgUsers).
			Where("NOT EXISTS (?)", stale).
			Delete(&models.TaskDifficulty{})
		if removed.Error != nil {
			return fmt.Errorf("failed to prune ledger: %w", removed.Error)
		}
		res.RowsRemoved = removed.RowsAffected

		var active []models.Task
		if err := tx.Where("organization_id = ?", organizationID).
			Where("assigned_designer IS NOT NULL AND assigned_designer <> ''").
			Where("status <> ?", models.TaskStatusClientApproved).
			Find(&active).Error; err != nil {
			return fmt.Errorf("failed to load active tasks: %w", err)
		}

		for _, task := range active {
			rating := 0
			if task.StarRate != nil {
				rating = *task.StarRate
			}
			row := models.TaskDifficulty{UserID: *task.AssignedDesigner, TaskID: task.ID, StarRating: rating}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if result.Error != nil {
				return fmt.Errorf("%w: %v", ErrLedgerRow, result.Error)
			}
			res.RowsAdded += result.RowsAffected
		}

		synced := tx.Model(&models.User{}).
			Where("organization_id = ?", organizationID).
			Updates(map[string]interface{}{
				"ongoing_tasks": gorm.Expr(
					"(SELECT COUNT(*) FROM task_difficulties WHERE task_difficulties.user_id = users.id)"),
				"workload_score": gorm.Expr(
					"(SELECT COALESCE(SUM(star_rating), 0) FROM task_difficulties WHERE task_difficulties.user_id = users.id)"),
			})
		if synced.Error != nil {
			return fmt.Errorf("%w: %v", ErrCounterUpdate, synced.Error)
		}
		res.UsersSynced = synced.RowsAffected
		return nil
	})

	return res, err
}
