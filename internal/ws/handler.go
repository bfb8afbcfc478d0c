package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/metrics"
	"github.com/dinopy/tasksync/internal/models"
)

// IdentityResolver binds an identity claim to a user account.
type IdentityResolver interface {
	Resolve(ctx context.Context, claim models.IdentityClaim) (*models.User, error)
}

// TaskLister loads the task snapshot sent in the connected ack.
type TaskLister interface {
	ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
}

// SplitExecutor runs the task split operation.
type SplitExecutor interface {
	Split(ctx context.Context, userID, issuer uuid.UUID, req models.SplitRequest) ([]*models.Task, error)
}

// TokenIssuer mints resume tokens for the connected ack. May be nil.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// Config holds the transport-level knobs.
type Config struct {
	// PingInterval is how often the server pings each connection.
	PingInterval time.Duration
	// PingTimeout is how long to wait for a pong before closing.
	PingTimeout time.Duration
}

// Handler serves the WebSocket endpoint: it accepts connections, runs the
// per-connection read loop, and dispatches events to the connect and split
// handlers.
type Handler struct {
	cfg      Config
	manager  *ClientManager
	resolver IdentityResolver
	tasks    TaskLister
	splitter SplitExecutor
	tokens   TokenIssuer
}

// NewHandler wires the transport to its collaborators.
func NewHandler(cfg Config, manager *ClientManager, resolver IdentityResolver, tasks TaskLister, splitter SplitExecutor, tokens TokenIssuer) *Handler {
	return &Handler{
		cfg:      cfg,
		manager:  manager,
		resolver: resolver,
		tasks:    tasks,
		splitter: splitter,
		tokens:   tokens,
	}
}

// ServeHTTP upgrades the request and runs the session until disconnect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	sid := uuid.New()
	defer func() {
		conn.Close(websocket.StatusInternalError, "server error")
		h.manager.Remove(sid)
	}()

	ctx := r.Context()
	writer := wsWriter{conn: conn}
	pongCh := make(chan struct{})
	go h.pingLoop(ctx, conn, writer, pongCh)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Debug("client disconnected", "sid", sid)
			} else {
				slog.Debug("read error", "sid", sid, "error", err)
			}
			return
		}

		var msg EventMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("undecodable frame", "sid", sid, "error", err)
			continue
		}

		if err := h.dispatch(ctx, writer, sid, msg, pongCh); err != nil {
			slog.Error("event handler failed", "event", msg.Event, "sid", sid, "error", err)
			return
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, w EventWriter, sid uuid.UUID, msg EventMessage, pongCh chan struct{}) error {
	if msg.Event != EventPong {
		slog.Debug("event received", "event", msg.Event, "sid", sid)
	}

	switch msg.Event {
	case EventPong:
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	case EventConnect:
		defer observeEvent(EventConnect)()
		return h.handleConnect(ctx, w, sid, msg.Data)
	case EventTaskSplit:
		defer observeEvent(EventTaskSplit)()
		return h.handleTaskSplit(ctx, w, sid, msg.Data)
	default:
		slog.Debug("ignoring unknown event", "event", msg.Event, "sid", sid)
		return nil
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn, w EventWriter, pongCh chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.WriteEvent(ctx, EventPing, nil); err != nil {
				slog.Debug("ping failed", "error", err)
				conn.Close(websocket.StatusInternalError, "failed to send ping")
				return
			}

			select {
			case <-pongCh:
			case <-time.After(h.cfg.PingTimeout):
				slog.Debug("no pong received, closing connection")
				conn.Close(websocket.StatusNormalClosure, "no pong response")
				return
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func observeEvent(event string) func() {
	start := time.Now()
	return func() {
		metrics.WebSocketEventDuration.WithLabelValues(event).Observe(time.Since(start).Seconds())
	}
}
