package split

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

// Notifier receives the outcome of a committed split. It is invoked strictly
// after the transaction committed and never on failure. Implementations
// decide whether and where events go; delivery problems must not surface
// back into the split result.
type Notifier interface {
	SplitApplied(ctx context.Context, issuer uuid.UUID, original *models.Task, derived []*models.Task)
}

// Splitter executes split operations: validate, project, replace, notify.
type Splitter struct {
	store    TaskStore
	notifier Notifier
	now      func() int64
}

// NewSplitter creates a Splitter over the given store and notifier.
func NewSplitter(store TaskStore, notifier Notifier) *Splitter {
	return &Splitter{
		store:    store,
		notifier: notifier,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// Split replaces the request's target task with one derived task per spec,
// atomically. On success it returns the derived tasks in spec order and hands
// the pre-deletion snapshot plus the derived list to the notifier. On any
// failure the store is left exactly as it was and the returned error is a
// *Failure.
//
// A failed request is never retried here; resubmitting re-validates from
// scratch.
func (s *Splitter) Split(ctx context.Context, userID, issuer uuid.UUID, req models.SplitRequest) ([]*models.Task, error) {
	original, err := Validate(ctx, s.store, userID, req)
	if err != nil {
		return nil, err
	}

	// One timestamp for the whole operation.
	now := s.now()

	derived := make([]*models.Task, len(req.Splits))
	for i, spec := range req.Splits {
		derived[i] = Project(original, spec, now)
	}

	if err := s.store.ReplaceTask(ctx, original, derived); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Lost a race: the task was deleted after validation. The
			// transaction rolled back, so answer as a fresh request would.
			return nil, failf(CodeNotFound, "task not found")
		}
		slog.Error("task replace failed", "task_id", original.ID, "user_id", userID, "error", err)
		return nil, failf(CodeInternal, "failed to apply split")
	}

	slog.Info("task split applied",
		"task_id", original.ID,
		"user_id", userID,
		"splits", len(derived),
	)

	s.notifier.SplitApplied(ctx, issuer, original, derived)
	return derived, nil
}
