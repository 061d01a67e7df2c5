package models

import "time"

// TaskDesigner records that a user has been the assigned designer of a task
// at some point. Rows are never removed while the task exists.
type TaskDesigner struct {
	TaskID  string    `gorm:"type:varchar(36);primarykey" json:"-"`
	UserID  string    `gorm:"type:varchar(36);primarykey" json:"user_id"`
	AddedAt time.Time `gorm:"not null" json:"added_at"`
}

// TaskDifficulty is a designer's workload ledger row for one active task.
type TaskDifficulty struct {
	UserID     string    `gorm:"type:varchar(36);primarykey" json:"-"`
	TaskID     string    `gorm:"type:varchar(36);primarykey" json:"task_id"`
	StarRating int       `gorm:"not null" json:"star_rating"`
	CreatedAt  time.Time `json:"created_at"`
}
