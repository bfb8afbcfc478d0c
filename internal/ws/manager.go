package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/metrics"
	"github.com/dinopy/tasksync/internal/models"
)

// Client is one live session bound to a user after a successful handshake.
// Sessions are never persisted; they exist from transport accept to
// disconnect.
type Client struct {
	SID  uuid.UUID
	User *models.User
	conn EventWriter
}

// ClientManager is the session registry: it tracks live sessions per user and
// delivers events to them. All access goes through the manager; nothing else
// holds the session table.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

// NewClientManager creates an empty registry.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Add registers a bound session.
func (m *ClientManager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.SID] = c
	metrics.WebSocketConnections.WithLabelValues(c.User.ID.String()).Inc()
	slog.Debug("client added", "sid", c.SID, "user_id", c.User.ID)
}

// Remove unregisters a session. Unknown session IDs are ignored.
func (m *ClientManager) Remove(sid uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client, exists := m.clients[sid]; exists {
		metrics.WebSocketConnections.WithLabelValues(client.User.ID.String()).Dec()
		delete(m.clients, sid)
		slog.Debug("client removed", "sid", sid)
	}
}

// Get returns the bound session for sid, if any.
func (m *ClientManager) Get(sid uuid.UUID) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[sid]
	return client, ok
}

// SendTo delivers one event to a single session. Missing sessions are a no-op.
func (m *ClientManager) SendTo(ctx context.Context, event string, sid uuid.UUID, data any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[sid]
	if !ok {
		return nil
	}
	return client.conn.WriteEvent(ctx, event, data)
}

// BroadcastToUser delivers one event to every session bound to userID.
func (m *ClientManager) BroadcastToUser(ctx context.Context, event string, userID uuid.UUID, data any) {
	m.broadcast(ctx, event, userID, uuid.Nil, data)
}

// BroadcastToUserExcept delivers one event to every session bound to userID
// except the excluded one. Delivery is fire-and-forget: a failed peer send is
// logged and does not affect the caller.
func (m *ClientManager) BroadcastToUserExcept(ctx context.Context, event string, userID, exclude uuid.UUID, data any) {
	m.broadcast(ctx, event, userID, exclude, data)
}

func (m *ClientManager) broadcast(ctx context.Context, event string, userID, exclude uuid.UUID, data any) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, client := range m.clients {
		if client.User.ID != userID || client.SID == exclude {
			continue
		}
		if err := client.conn.WriteEvent(ctx, event, data); err != nil {
			slog.Warn("broadcast delivery failed", "event", event, "sid", client.SID, "error", err)
		}
	}
}
