package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "tasksync-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func newTestUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:         email,
		FirstName:     "Test",
		LastName:      "User",
		IdentityToken: "sub-" + email,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func newTestTask(userID uuid.UUID, title string) *models.Task {
	return &models.Task{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          title,
		Description:    "desc of " + title,
		Duration:       "00:30:00",
		Category:       "work",
		Tags:           []string{"a", "b"},
		Priority:       2,
		CreatedAt:      1700000000000,
		LastModifiedAt: 1700000000000,
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		user := newTestUser(t, store, "alice@example.com")
		if user.ID == uuid.Nil {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail round trip", func(t *testing.T) {
		created := newTestUser(t, store, "bob@example.com")

		got, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, created.ID)
		}
		if got.IdentityToken != created.IdentityToken {
			t.Errorf("IdentityToken mismatch: got %s, want %s", got.IdentityToken, created.IdentityToken)
		}
	})

	t.Run("GetUserByID round trip", func(t *testing.T) {
		created := newTestUser(t, store, "carol@example.com")

		got, err := store.GetUserByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Email != "carol@example.com" {
			t.Errorf("Email mismatch: got %s", got.Email)
		}
	})

	t.Run("missing user reports ErrNotFound", func(t *testing.T) {
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByID(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		newTestUser(t, store, "dup@example.com")
		err := store.CreateUser(ctx, &models.User{
			Email:         "dup@example.com",
			IdentityToken: "other",
		})
		if err == nil {
			t.Error("expected unique constraint error, got nil")
		}
	})
}

func TestTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "tasks@example.com")

	t.Run("CreateTask and GetTask round trip", func(t *testing.T) {
		due := int64(1700001000000)
		lead := int64(3600000)
		toggled := int64(1700000500000)

		task := newTestTask(user.ID, "round trip")
		task.IsActive = true
		task.ToggledAt = &toggled
		task.DueAt = &due
		task.ShowBeforeDue = &lead

		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}

		got, err := store.GetTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if got.Title != task.Title || got.Description != task.Description {
			t.Errorf("text fields mismatch: got %+v", got)
		}
		if got.Duration != "00:30:00" || got.Category != "work" || got.Priority != 2 {
			t.Errorf("projected fields mismatch: got %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "a" || got.Tags[1] != "b" {
			t.Errorf("tags mismatch: got %v", got.Tags)
		}
		if !got.IsActive || got.ToggledAt == nil || *got.ToggledAt != toggled {
			t.Errorf("active state mismatch: got %+v", got)
		}
		if got.DueAt == nil || *got.DueAt != due || got.ShowBeforeDue == nil || *got.ShowBeforeDue != lead {
			t.Errorf("due fields mismatch: got %+v", got)
		}
		if got.CompletedAt != nil {
			t.Errorf("expected nil CompletedAt, got %v", *got.CompletedAt)
		}
	})

	t.Run("GetTask reports ErrNotFound", func(t *testing.T) {
		if _, err := store.GetTask(ctx, uuid.New()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListTasksByUser is scoped and ordered", func(t *testing.T) {
		other := newTestUser(t, store, "other@example.com")

		first := newTestTask(user.ID, "first")
		first.CreatedAt = 1000
		second := newTestTask(user.ID, "second")
		second.CreatedAt = 2000
		theirs := newTestTask(other.ID, "theirs")

		for _, task := range []*models.Task{second, first, theirs} {
			if err := store.CreateTask(ctx, task); err != nil {
				t.Fatalf("CreateTask failed: %v", err)
			}
		}

		tasks, err := store.ListTasksByUser(ctx, other.ID)
		if err != nil {
			t.Fatalf("ListTasksByUser failed: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "theirs" {
			t.Errorf("expected only the other user's task, got %d tasks", len(tasks))
		}

		mine, err := store.ListTasksByUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListTasksByUser failed: %v", err)
		}
		firstIdx, secondIdx := -1, -1
		for i, task := range mine {
			switch task.Title {
			case "first":
				firstIdx = i
			case "second":
				secondIdx = i
			}
		}
		if firstIdx == -1 || secondIdx == -1 || firstIdx > secondIdx {
			t.Errorf("expected oldest task first, got order first=%d second=%d", firstIdx, secondIdx)
		}
	})
}

func TestReplaceTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "replace@example.com")

	t.Run("replaces one task with many atomically", func(t *testing.T) {
		original := newTestTask(user.ID, "original")
		if err := store.CreateTask(ctx, original); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}

		derived := []*models.Task{
			newTestTask(user.ID, "part one"),
			newTestTask(user.ID, "part two"),
		}
		if err := store.ReplaceTask(ctx, original, derived); err != nil {
			t.Fatalf("ReplaceTask failed: %v", err)
		}

		if _, err := store.GetTask(ctx, original.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected original to be gone, got %v", err)
		}
		for _, d := range derived {
			if _, err := store.GetTask(ctx, d.ID); err != nil {
				t.Errorf("expected derived task %s to exist: %v", d.Title, err)
			}
		}
	})

	t.Run("missing original rolls back inserts", func(t *testing.T) {
		ghost := newTestTask(user.ID, "ghost")
		derived := []*models.Task{newTestTask(user.ID, "orphan")}

		err := store.ReplaceTask(ctx, ghost, derived)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetTask(ctx, derived[0].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected derived task to be rolled back, got %v", err)
		}
	})

	t.Run("wrong owner leaves target untouched", func(t *testing.T) {
		victim := newTestTask(user.ID, "victim")
		if err := store.CreateTask(ctx, victim); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}

		// Same task ID claimed under a different owner: the scoped delete
		// must not match.
		intruder := newTestUser(t, store, "intruder@example.com")
		stale := *victim
		stale.UserID = intruder.ID

		err := store.ReplaceTask(ctx, &stale, []*models.Task{newTestTask(intruder.ID, "stolen")})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetTask(ctx, victim.ID); err != nil {
			t.Errorf("expected victim task to survive: %v", err)
		}
	})

	t.Run("failed insert restores the original", func(t *testing.T) {
		original := newTestTask(user.ID, "restore me")
		if err := store.CreateTask(ctx, original); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}

		blocker := newTestTask(user.ID, "blocker")
		if err := store.CreateTask(ctx, blocker); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}

		// Second derived task collides with an existing primary key, so the
		// transaction must abort after the delete already ran.
		colliding := newTestTask(user.ID, "colliding")
		colliding.ID = blocker.ID

		err := store.ReplaceTask(ctx, original, []*models.Task{newTestTask(user.ID, "fine"), colliding})
		if err == nil {
			t.Fatal("expected insert conflict error, got nil")
		}

		got, err := store.GetTask(ctx, original.ID)
		if err != nil {
			t.Fatalf("expected original to be restored: %v", err)
		}
		if got.Title != "restore me" {
			t.Errorf("original mutated: %+v", got)
		}
	})
}
