package split

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/storage"
)

// TaskStore is the slice of the storage layer the split operation needs.
type TaskStore interface {
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ReplaceTask(ctx context.Context, original *models.Task, derived []*models.Task) error
}

// Validate checks a split request against the authenticated user and loads
// the target task. It runs before any transaction is opened; no mutation
// happens if it fails. Checks run in a fixed order and the first failure wins:
// ID syntax, non-empty splits, per-spec fields, existence, ownership.
// Ownership is checked strictly after existence so a missing task always
// reports not_found, never revealing tasks of other users.
func Validate(ctx context.Context, store TaskStore, userID uuid.UUID, req models.SplitRequest) (*models.Task, error) {
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil || taskID == uuid.Nil {
		return nil, failf(CodeInvalidRequest, "invalid task ID format")
	}

	if len(req.Splits) == 0 {
		return nil, failf(CodeInvalidRequest, "at least one split is required")
	}

	for i, spec := range req.Splits {
		if spec.Title == "" {
			return nil, failf(CodeInvalidRequest, fmt.Sprintf("split %d is missing a title", i))
		}
		if _, err := models.ParseDuration(spec.Duration); err != nil {
			return nil, failf(CodeInvalidRequest, fmt.Sprintf("split %d has an invalid duration", i))
		}
	}

	task, err := store.GetTask(ctx, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, failf(CodeNotFound, "task not found")
	}
	if err != nil {
		return nil, failf(CodeInternal, "failed to load task")
	}

	if task.UserID != userID {
		return nil, failf(CodeForbidden, "task does not belong to user")
	}

	return task, nil
}
