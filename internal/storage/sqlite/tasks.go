package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

const taskColumns = "id, user_id, title, description, duration, category, tags, priority, " +
	"is_completed, completed_at, is_active, toggled_at, created_at, last_modified_at, due_at, show_before_due"

// execer is satisfied by both *sql.DB and *sql.Tx so task inserts can run
// inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateTask persists a new task.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.Task) error {
	defer observe("create_task")()
	return insertTask(ctx, s.db, task)
}

// GetTask retrieves a task by ID regardless of owner.
func (s *SQLiteStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	defer observe("get_task")()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?",
		id.String(),
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasksByUser returns all tasks owned by the user, oldest first.
func (s *SQLiteStore) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	defer observe("list_tasks_by_user")()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at, id",
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// ReplaceTask deletes the original task and inserts the derived tasks as one
// atomic unit. The transaction is serializable and the deferred rollback fires
// on every exit path that did not commit, so a failure anywhere leaves the
// store exactly as it was.
func (s *SQLiteStore) ReplaceTask(ctx context.Context, original *models.Task, derived []*models.Task) error {
	defer observe("replace_task")()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete scoped to the owner: a stale ownership check cannot remove
	// another user's task.
	res, err := tx.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ?",
		original.ID.String(), original.UserID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		// The task vanished between validation and the delete, e.g. a
		// concurrent split won the race.
		return storage.ErrNotFound
	}

	for _, task := range derived {
		if err := insertTask(ctx, tx, task); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, ex execer, task *models.Task) error {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = ex.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID.String(), task.UserID.String(), task.Title, task.Description, task.Duration,
		task.Category, string(tagsJSON), task.Priority,
		task.IsCompleted, nullableInt(task.CompletedAt),
		task.IsActive, nullableInt(task.ToggledAt),
		task.CreatedAt, task.LastModifiedAt,
		nullableInt(task.DueAt), nullableInt(task.ShowBeforeDue),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		task                                     models.Task
		id, userID, tagsJSON                     string
		completedAt, toggledAt, dueAt, showDelta sql.NullInt64
	)
	err := row.Scan(
		&id, &userID, &task.Title, &task.Description, &task.Duration,
		&task.Category, &tagsJSON, &task.Priority,
		&task.IsCompleted, &completedAt,
		&task.IsActive, &toggledAt,
		&task.CreatedAt, &task.LastModifiedAt,
		&dueAt, &showDelta,
	)
	if err != nil {
		return nil, err
	}

	if task.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse task id: %w", err)
	}
	if task.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("failed to parse task user id: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	task.CompletedAt = intPtr(completedAt)
	task.ToggledAt = intPtr(toggledAt)
	task.DueAt = intPtr(dueAt)
	task.ShowBeforeDue = intPtr(showDelta)
	return &task, nil
}

func nullableInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
