package ws

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dinopy/tasksync/internal/models"
)

// recordedFrame is one delivered event.
type recordedFrame struct {
	Event string
	Data  any
}

// recordingWriter is an EventWriter capturing frames in order.
type recordingWriter struct {
	mu     sync.Mutex
	frames []recordedFrame
	err    error
}

func (w *recordingWriter) WriteEvent(_ context.Context, event string, data any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.frames = append(w.frames, recordedFrame{Event: event, Data: data})
	return nil
}

func (w *recordingWriter) recorded() []recordedFrame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]recordedFrame(nil), w.frames...)
}

func addSession(m *ClientManager, user *models.User) (uuid.UUID, *recordingWriter) {
	sid := uuid.New()
	writer := &recordingWriter{}
	m.Add(&Client{SID: sid, User: user, conn: writer})
	return sid, writer
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "u@example.com"}
}

func TestClientManager_AddGetRemove(t *testing.T) {
	m := NewClientManager()
	user := testUser()
	sid, _ := addSession(m, user)

	got, ok := m.Get(sid)
	if !ok || got.User.ID != user.ID {
		t.Fatalf("Get(%s) = %v, %v", sid, got, ok)
	}

	m.Remove(sid)
	if _, ok := m.Get(sid); ok {
		t.Error("session still present after Remove")
	}

	// Removing twice is harmless.
	m.Remove(sid)
}

func TestClientManager_BroadcastScoping(t *testing.T) {
	m := NewClientManager()
	alice := testUser()
	bob := testUser()

	issuerSID, issuerW := addSession(m, alice)
	_, peerW := addSession(m, alice)
	_, otherPeerW := addSession(m, alice)
	_, bobW := addSession(m, bob)

	m.BroadcastToUserExcept(context.Background(), "evt", alice.ID, issuerSID, "payload")

	if frames := issuerW.recorded(); len(frames) != 0 {
		t.Errorf("issuer received its own broadcast: %v", frames)
	}
	for name, w := range map[string]*recordingWriter{"peer": peerW, "other peer": otherPeerW} {
		frames := w.recorded()
		if len(frames) != 1 || frames[0].Event != "evt" {
			t.Errorf("%s session: expected 1 frame, got %v", name, frames)
		}
	}
	if frames := bobW.recorded(); len(frames) != 0 {
		t.Errorf("another user's session received the broadcast: %v", frames)
	}
}

func TestClientManager_BroadcastToUser(t *testing.T) {
	m := NewClientManager()
	alice := testUser()
	_, w1 := addSession(m, alice)
	_, w2 := addSession(m, alice)

	m.BroadcastToUser(context.Background(), "evt", alice.ID, nil)

	for i, w := range []*recordingWriter{w1, w2} {
		if len(w.recorded()) != 1 {
			t.Errorf("session %d: expected 1 frame, got %d", i, len(w.recorded()))
		}
	}
}

func TestClientManager_BroadcastSurvivesFailedPeer(t *testing.T) {
	m := NewClientManager()
	alice := testUser()

	brokenSID := uuid.New()
	broken := &recordingWriter{err: errors.New("peer gone")}
	m.Add(&Client{SID: brokenSID, User: alice, conn: broken})
	_, healthyW := addSession(m, alice)

	// A failed delivery must not stop delivery to the remaining peers.
	m.BroadcastToUserExcept(context.Background(), "evt", alice.ID, uuid.Nil, nil)

	if len(healthyW.recorded()) != 1 {
		t.Errorf("healthy peer missed the broadcast: %v", healthyW.recorded())
	}
}

func TestClientManager_SendTo(t *testing.T) {
	m := NewClientManager()
	alice := testUser()
	sid, w := addSession(m, alice)

	if err := m.SendTo(context.Background(), "evt", sid, 42); err != nil {
		t.Fatalf("SendTo failed: %v", err)
	}
	if frames := w.recorded(); len(frames) != 1 || frames[0].Event != "evt" {
		t.Errorf("unexpected frames: %v", frames)
	}

	// Unknown session is a no-op, not an error.
	if err := m.SendTo(context.Background(), "evt", uuid.New(), nil); err != nil {
		t.Errorf("SendTo to unknown session: %v", err)
	}
}
