package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	ws "study-abroad-backend/websocket"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pusher delivers live messages to connected users.
type Pusher interface {
	SendToUser(userID uuid.UUID, message ws.WebSocketMessage) int
}

// MailFunc matches utils.SendEmail.
type MailFunc func(to, subject, htmlBody, textBody, attachmentPath string) error

// Processor handles notification tasks: it e-mails the student and pushes
// the event to their open browser sessions.
type Processor struct {
	DB     *gorm.DB
	Hub    Pusher
	SendFn MailFunc
}

func NewProcessor(db *gorm.DB, hub Pusher, send MailFunc) *Processor {
	return &Processor{DB: db, Hub: hub, SendFn: send}
}

// Register attaches the handlers to an asynq mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDecision, p.HandleDecision)
	mux.HandleFunc(TypeVisaExpiry, p.HandleVisaExpiry)
}

func (p *Processor) recipient(id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := p.DB.Select("id", "name", "email").First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (p *Processor) HandleDecision(ctx context.Context, t *asynq.Task) error {
	var event DecisionEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("decode decision event: %v: %w", err, asynq.SkipRetry)
	}

	if p.Hub != nil {
		p.Hub.SendToUser(event.RecipientID, ws.WebSocketMessage{Type: ws.MessageTypeDecision, Payload: event})
	}

	student, err := p.recipient(event.RecipientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		config.Logger.Warn("Notification recipient no longer exists", zap.String("recipient_id", event.RecipientID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	subject, html, text, err := RenderDecisionEmail(student.Name, event)
	if err != nil {
		return fmt.Errorf("render decision email: %v: %w", err, asynq.SkipRetry)
	}
	if p.SendFn == nil {
		return nil
	}
	return p.SendFn(student.Email, subject, html, text, "")
}

func (p *Processor) HandleVisaExpiry(ctx context.Context, t *asynq.Task) error {
	var event VisaExpiryEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("decode visa expiry event: %v: %w", err, asynq.SkipRetry)
	}

	if p.Hub != nil {
		p.Hub.SendToUser(event.RecipientID, ws.WebSocketMessage{Type: ws.MessageTypeReminder, Payload: event})
	}

	student, err := p.recipient(event.RecipientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your %s visa expires in %d days", event.Country, event.DaysLeft)
	text := fmt.Sprintf("Dear %s,\n\nYour visa for %s expires on %s. Please plan your renewal.\n", student.Name, event.Country, event.ExpiryDate)
	if p.SendFn == nil {
		return nil
	}
	return p.SendFn(student.Email, subject, "", text, "")
}

var entityLabels = map[models.DecisionEntity]string{
	models.ApplicationEntity:            "program application",
	models.ApplicationDocumentEntity:    "document",
	models.ScholarshipApplicationEntity: "scholarship application",
	models.VisaPermitEntity:             "visa request",
	models.HousingRequestEntity:         "housing request",
}

var decisionEmail = template.Must(template.New("decision").Parse(`<html><body>
<p>Dear {{.Name}},</p>
<p>Your {{.Label}} has been <strong>{{.Status}}</strong>.</p>
{{if .Summary}}<p>{{.Summary}}</p>{{end}}
<p>Log in to the portal for details.</p>
</body></html>`))

// RenderDecisionEmail builds the subject and bodies for a decision event.
func RenderDecisionEmail(name string, event DecisionEvent) (subject, html, text string, err error) {
	label, ok := entityLabels[event.Entity]
	if !ok {
		label = strings.ReplaceAll(string(event.Entity), "_", " ")
	}
	status := strings.ToLower(string(event.Status))
	subject = fmt.Sprintf("Your %s was %s", label, status)

	var buf bytes.Buffer
	err = decisionEmail.Execute(&buf, map[string]string{
		"Name":    name,
		"Label":   label,
		"Status":  status,
		"Summary": event.Summary,
	})
	if err != nil {
		return "", "", "", err
	}

	text = fmt.Sprintf("Dear %s,\n\nYour %s has been %s.\n%s\n", name, label, status, event.Summary)
	return subject, buf.String(), text, nil
}

// NewServer builds the asynq server that runs the notification queue.
func NewServer(redisOpt asynq.RedisClientOpt) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{QueueName: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			config.Logger.Error("Notification task failed",
				zap.String("type", task.Type()),
				zap.Error(err),
			)
		}),
	})
}
