package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/creative-task-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds composite indexes used by listing and dashboard queries.
// Single-column indexes come from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// Project and participant listings
		{&models.Task{}, "idx_tasks_org_project", "organization_id, project_id"},
		{&models.Task{}, "idx_tasks_org_status", "organization_id, status"},
		{&models.Task{}, "idx_tasks_org_designer", "organization_id, assigned_designer"},

		// Workload ledger lookups by task
		{&models.TaskDifficulty{}, "idx_task_difficulties_task_id", "task_id"},

		// Inbox unread counts
		{&models.Notification{}, "idx_notifications_user_read", "user_id, is_read"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", stmt.Schema.Table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs post-AutoMigrate steps
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
