package domain

import "time"

type Task struct {
	ID                int64     `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	CreatedBy         int64     `db:"created_by" json:"created_by"`
	CreatedByUsername string    `db:"-" json:"created_by_username"`
	DueDate           *Date     `db:"due_date" json:"due_date"`
	IsCompleted       bool      `db:"is_completed" json:"is_completed"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// TaskPatch carries a partial update: nil fields are left untouched. DueDate
// only applies when DueDateSet is true, so an explicit null can clear a due
// date while an absent key leaves it alone.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *Date
	DueDateSet  bool
	IsCompleted *bool
}
