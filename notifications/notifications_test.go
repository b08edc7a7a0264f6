package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/testdb"
	ws "study-abroad-backend/websocket"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakePusher struct {
	sent map[uuid.UUID][]ws.WebSocketMessage
}

func (f *fakePusher) SendToUser(userID uuid.UUID, message ws.WebSocketMessage) int {
	if f.sent == nil {
		f.sent = map[uuid.UUID][]ws.WebSocketMessage{}
	}
	f.sent[userID] = append(f.sent[userID], message)
	return 1
}

type sentMail struct {
	to, subject, html, text string
}

func TestHandleDecisionEmailsAndPushes(t *testing.T) {
	db := testdb.Open(t)
	student := testdb.Student(t, db, "asha")

	var mails []sentMail
	pusher := &fakePusher{}
	p := NewProcessor(db, pusher, func(to, subject, html, text, _ string) error {
		mails = append(mails, sentMail{to, subject, html, text})
		return nil
	})

	event := DecisionEvent{
		Entity:      models.VisaPermitEntity,
		EntityID:    uuid.New(),
		Decision:    models.DecisionApprove,
		Status:      models.StatusApproved,
		RecipientID: student.ID,
		Summary:     "Valid until 2026-09-01.",
	}
	task, err := NewDecisionTask(event)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.HandleDecision(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mails) != 1 || mails[0].to != student.Email {
		t.Fatalf("expected one mail to %s, got %+v", student.Email, mails)
	}
	if mails[0].subject != "Your visa request was approved" {
		t.Fatalf("unexpected subject %q", mails[0].subject)
	}
	if !strings.Contains(mails[0].html, "Valid until 2026-09-01.") {
		t.Fatalf("summary missing from html: %s", mails[0].html)
	}
	if len(pusher.sent[student.ID]) != 1 || pusher.sent[student.ID][0].Type != ws.MessageTypeDecision {
		t.Fatalf("expected one websocket push, got %+v", pusher.sent)
	}
}

func TestHandleDecisionUnknownRecipient(t *testing.T) {
	db := testdb.Open(t)
	called := false
	p := NewProcessor(db, nil, func(string, string, string, string, string) error {
		called = true
		return nil
	})

	task, _ := NewDecisionTask(DecisionEvent{Entity: models.ApplicationEntity, RecipientID: uuid.New(), Status: models.StatusRejected})
	if err := p.HandleDecision(context.Background(), task); err != nil {
		t.Fatalf("missing recipients should be skipped, got %v", err)
	}
	if called {
		t.Fatal("no mail should be sent")
	}
}

func TestHandleDecisionBadPayloadSkipsRetry(t *testing.T) {
	p := NewProcessor(nil, nil, nil)
	err := p.HandleDecision(context.Background(), asynq.NewTask(TypeDecision, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestDispatchSwallowsErrors(t *testing.T) {
	rec := &Recorder{Err: errors.New("redis down")}
	Dispatch(context.Background(), rec, DecisionEvent{Entity: models.ApplicationEntity})
	if len(rec.Decisions) != 0 {
		t.Fatal("failed notifier should not record")
	}

	rec.Err = nil
	Dispatch(context.Background(), rec, DecisionEvent{Entity: models.ApplicationEntity})
	last, ok := rec.Last()
	if !ok || last.OccurredAt.IsZero() {
		t.Fatalf("expected recorded event with timestamp, got %+v", last)
	}
}

func TestVisaExpiryTaskPayload(t *testing.T) {
	event := VisaExpiryEvent{VisaID: uuid.New(), RecipientID: uuid.New(), Country: "Japan", ExpiryDate: "2026-01-01", DaysLeft: 30}
	task, err := NewVisaExpiryTask(event)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeVisaExpiry {
		t.Fatalf("unexpected type %s", task.Type())
	}
	var decoded VisaExpiryEvent
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil || decoded != event {
		t.Fatalf("payload mismatch: %+v %v", decoded, err)
	}
}
