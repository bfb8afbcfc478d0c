package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
	"github.com/dinopy/tasksync/internal/split"
)

// handleTaskSplit runs the split operation for a bound session. Success has
// no dedicated ack; the issuer infers it from the absence of a
// connection_error, and peers learn of the outcome through the broadcaster.
func (h *Handler) handleTaskSplit(ctx context.Context, w EventWriter, sid uuid.UUID, data json.RawMessage) error {
	client, ok := h.manager.Get(sid)
	if !ok {
		return sendError(ctx, w, errForbidden, "session is not bound to a user", http.StatusForbidden)
	}

	var req models.SplitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return sendError(ctx, w, errInvalidRequest, "invalid split request", http.StatusBadRequest)
	}

	if _, err := h.splitter.Split(ctx, client.User.ID, sid, req); err != nil {
		if failure, isFailure := split.AsFailure(err); isFailure {
			return sendError(ctx, w, string(failure.Code), failure.Message, failureStatus(failure.Code))
		}
		return sendError(ctx, w, errInternal, "failed to apply split", http.StatusInternalServerError)
	}
	return nil
}
