package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

// CreateUser persists a new user, generating an ID and creation timestamp
// if unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	defer observe("create_user")()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, first_name, last_name, identity_token, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID.String(), user.Email, user.FirstName, user.LastName, user.IdentityToken, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observe("get_user_by_email")()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, first_name, last_name, identity_token, created_at FROM users WHERE email = ?",
		email,
	)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer observe("get_user_by_id")()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, first_name, last_name, identity_token, created_at FROM users WHERE id = ?",
		id.String(),
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user models.User
		id   string
	)
	err := row.Scan(&id, &user.Email, &user.FirstName, &user.LastName, &user.IdentityToken, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return &user, nil
}
