// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
)

// ErrNotFound is returned when a requested record does not exist. For
// ReplaceTask it also covers the case where the target task disappeared
// between validation and the transactional delete.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for user and task storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the handlers.
type Store interface {
	// CreateUser persists a new user. The user.ID and CreatedAt fields are
	// populated by the store if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns ErrNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrNotFound if no such user exists.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// CreateTask persists a new task.
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTask retrieves a task by ID regardless of owner.
	// Returns ErrNotFound if no such task exists.
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// ListTasksByUser returns all tasks owned by the user, oldest first.
	ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)

	// ReplaceTask atomically deletes the original task and inserts the
	// derived tasks, in order, as a single transaction. The delete is scoped
	// to the original's owner; if it removes no row the transaction is
	// rolled back and ErrNotFound is returned. On any error the store's
	// visible state is unchanged.
	ReplaceTask(ctx context.Context, original *models.Task, derived []*models.Task) error

	// Close releases any resources held by the store.
	Close() error
}
