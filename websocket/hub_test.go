package websocket

import (
	"testing"

	"github.com/google/uuid"
)

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	other := uuid.New()

	a := &Client{ID: uuid.New(), UserID: user, Hub: hub, Send: make(chan WebSocketMessage, 1)}
	b := &Client{ID: uuid.New(), UserID: user, Hub: hub, Send: make(chan WebSocketMessage, 1)}
	c := &Client{ID: uuid.New(), UserID: other, Hub: hub, Send: make(chan WebSocketMessage, 1)}
	hub.add(a)
	hub.add(b)
	hub.add(c)

	if got := hub.SendToUser(user, WebSocketMessage{Type: MessageTypeDecision, Payload: "approved"}); got != 2 {
		t.Fatalf("expected delivery to both tabs, got %d", got)
	}
	if len(c.Send) != 0 {
		t.Fatal("other users must not receive the message")
	}
	msg := <-a.Send
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should be filled in")
	}

	// b's buffer is still full, so it is dropped on the next send.
	if got := hub.SendToUser(user, WebSocketMessage{Type: MessageTypeDecision}); got != 1 {
		t.Fatalf("expected one delivery, got %d", got)
	}
	if hub.GetClientCount() != 2 {
		t.Fatalf("slow client should be dropped, count=%d", hub.GetClientCount())
	}

	hub.remove(a)
	if hub.IsOnline(user) {
		t.Fatal("user should be offline after last connection leaves")
	}
	hub.remove(a)
}
