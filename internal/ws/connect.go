package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/auth"
	"github.com/dinopy/tasksync/internal/models"
)

// Handshake error types on the wire.
const (
	errMissingIdentityToken = "missing_identity_token"
	errIdentityMismatch     = "identity_mismatch"
	errInternal             = "internal_error"
	errInvalidRequest       = "invalid_request"
	errForbidden            = "forbidden"
)

// connectedAck is the payload of the connected event: the bound identity, a
// resume token for the next reconnect, and the user's current task snapshot.
type connectedAck struct {
	SID         uuid.UUID      `json:"sid"`
	UserID      uuid.UUID      `json:"user_id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	ResumeToken string         `json:"resume_token,omitempty"`
	Tasks       []*models.Task `json:"tasks"`
}

// handleConnect resolves the identity claim and binds the session. The
// session stays unbound on every failure path; the client may retry with a
// corrected claim on the same connection.
func (h *Handler) handleConnect(ctx context.Context, w EventWriter, sid uuid.UUID, data json.RawMessage) error {
	var claim models.IdentityClaim
	if err := json.Unmarshal(data, &claim); err != nil {
		return sendError(ctx, w, errInvalidRequest, "invalid connection data", http.StatusBadRequest)
	}

	user, err := h.resolver.Resolve(ctx, claim)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingIdentityToken):
			return sendError(ctx, w, errMissingIdentityToken, "identity token is required", http.StatusBadRequest)
		case errors.Is(err, auth.ErrIdentityMismatch):
			return sendError(ctx, w, errIdentityMismatch, "identity token does not match", http.StatusForbidden)
		default:
			slog.Error("identity resolution failed", "sid", sid, "error", err)
			return sendError(ctx, w, errInternal, "failed to resolve identity", http.StatusInternalServerError)
		}
	}

	h.manager.Add(&Client{SID: sid, User: user, conn: w})

	tasks, err := h.tasks.ListTasksByUser(ctx, user.ID)
	if err != nil {
		slog.Error("failed to load task snapshot", "user_id", user.ID, "error", err)
		return sendError(ctx, w, errInternal, "failed to load tasks", http.StatusInternalServerError)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	ack := connectedAck{
		SID:       sid,
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Tasks:     tasks,
	}
	if h.tokens != nil {
		token, err := h.tokens.Generate(user)
		if err != nil {
			slog.Warn("failed to mint resume token", "user_id", user.ID, "error", err)
		} else {
			ack.ResumeToken = token
		}
	}

	slog.Info("session bound", "sid", sid, "user_id", user.ID)
	return w.WriteEvent(ctx, EventConnected, ack)
}
