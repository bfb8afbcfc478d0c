// Package ws implements the WebSocket event transport: the session registry,
// the per-connection read loop, and the handlers for the connect handshake
// and the task split operation.
package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/dinopy/tasksync/internal/split"
)

// Wire event names. Inbound events come from clients; outbound events are
// pushed by the server.
const (
	EventConnect   = "connect"
	EventTaskSplit = "task_split"
	EventPing      = "ping"
	EventPong      = "pong"

	EventConnected       = "connected"
	EventConnectionError = "connection_error"
	EventTaskDeleted     = "related_task_deleted"
	EventTaskCreated     = "new_task_created"
)

// EventMessage is the frame envelope: every frame is {"event": ..., "data": ...}.
type EventMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ConnectionError is the payload of a connection_error event.
type ConnectionError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// EventWriter writes one event frame to a client connection. The websocket
// connection satisfies it through wsWriter; tests substitute a recorder.
type EventWriter interface {
	WriteEvent(ctx context.Context, event string, data any) error
}

// wsWriter adapts a websocket connection to EventWriter.
type wsWriter struct {
	conn *websocket.Conn
}

func (w wsWriter) WriteEvent(ctx context.Context, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(EventMessage{Event: event, Data: raw})
	if err != nil {
		return err
	}
	return w.conn.Write(ctx, websocket.MessageText, payload)
}

// sendError emits a single connection_error frame to the issuing session.
func sendError(ctx context.Context, w EventWriter, errType, message string, code int) error {
	return w.WriteEvent(ctx, EventConnectionError, ConnectionError{
		Type:    errType,
		Message: message,
		Code:    code,
	})
}

// failureStatus maps a split failure code to the HTTP-style status carried in
// the error payload.
func failureStatus(code split.Code) int {
	switch code {
	case split.CodeInvalidRequest:
		return http.StatusBadRequest
	case split.CodeNotFound:
		return http.StatusNotFound
	case split.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
