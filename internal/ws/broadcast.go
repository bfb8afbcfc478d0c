package ws

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/split"
)

// Ensure Broadcaster satisfies the split notifier contract.
var _ split.Notifier = (*Broadcaster)(nil)

// Broadcaster turns a committed split into sync events for the owner's peer
// sessions. The issuer never receives its own events; it learns the outcome
// from its request path.
type Broadcaster struct {
	manager *ClientManager
}

// NewBroadcaster creates a broadcaster over the session registry.
func NewBroadcaster(manager *ClientManager) *Broadcaster {
	return &Broadcaster{manager: manager}
}

// taskRef is the payload of a related_task_deleted event.
type taskRef struct {
	ID uuid.UUID `json:"id"`
}

// SplitApplied emits one related_task_deleted for the original, then one
// new_task_created per derived task in order. A completed original is split
// silently: the mutation stands but peers are not notified.
func (b *Broadcaster) SplitApplied(ctx context.Context, issuer uuid.UUID, original *models.Task, derived []*models.Task) {
	if original.IsCompleted {
		slog.Debug("split of completed task, suppressing events", "task_id", original.ID)
		return
	}

	b.manager.BroadcastToUserExcept(ctx, EventTaskDeleted, original.UserID, issuer, taskRef{ID: original.ID})
	for _, task := range derived {
		b.manager.BroadcastToUserExcept(ctx, EventTaskCreated, original.UserID, issuer, task)
	}
}
