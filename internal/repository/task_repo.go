package repository

import (
	"context"
	"errors"
	"time"

	"todo_backend/internal/apperr"
	"todo_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.title, COALESCE(t.description, ''), t.created_by, u.username,
	t.due_date, t.is_completed, t.created_at, t.updated_at`

// ListByOwner returns every task owned by ownerID, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 JOIN users u ON u.id = t.created_by
		 WHERE t.created_by = $1
		 ORDER BY t.created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	var due *time.Time
	if t.DueDate != nil {
		due = &t.DueDate.Time
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, created_by, due_date, is_completed)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		 RETURNING id, created_at, updated_at,
		           (SELECT username FROM users WHERE id = $3)`,
		t.Title,
		t.Description,
		t.CreatedBy,
		due,
		t.IsCompleted,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.CreatedByUsername)
}

// GetByOwnerAndID looks up a task by id scoped to its owner in one filtered
// query. A task owned by somebody else is indistinguishable from a task that
// does not exist.
func (r *TaskRepository) GetByOwnerAndID(ctx context.Context, ownerID, taskID int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 JOIN users u ON u.id = t.created_by
		 WHERE t.id = $1 AND t.created_by = $2`,
		taskID, ownerID,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, err
	}
	return t, nil
}

// Update applies a partial update: only set patch fields change, and the
// owner scoping lives in the WHERE clause like the lookup. due_date gets its
// own set flag so an explicit null can clear it.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	var due *time.Time
	if patch.DueDate != nil {
		due = &patch.DueDate.Time
	}
	row := r.db.QueryRow(ctx,
		`WITH updated AS (
		     UPDATE tasks
		     SET title        = COALESCE($3, title),
		         description  = COALESCE($4, description),
		         due_date     = CASE WHEN $5 THEN $6::date ELSE due_date END,
		         is_completed = COALESCE($7, is_completed),
		         updated_at   = now()
		     WHERE id = $1 AND created_by = $2
		     RETURNING *
		 )
		 SELECT `+taskColumns+`
		 FROM updated t
		 JOIN users u ON u.id = t.created_by`,
		taskID, ownerID,
		patch.Title,
		patch.Description,
		patch.DueDateSet,
		due,
		patch.IsCompleted,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND created_by = $2`,
		taskID, ownerID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Task not found")
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var due *time.Time
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.CreatedBy,
		&t.CreatedByUsername,
		&due,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.DueDate = domain.DateFromTime(due)
	return &t, nil
}
