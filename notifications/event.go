package notifications

import (
	"context"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecisionEvent tells a student that a reviewer decided one of their
// requests.
type DecisionEvent struct {
	Entity      models.DecisionEntity `json:"entity"`
	EntityID    uuid.UUID             `json:"entity_id"`
	Decision    models.Decision       `json:"decision"`
	Outcome     string                `json:"outcome"`
	Status      models.ReviewStatus   `json:"status"`
	RecipientID uuid.UUID             `json:"recipient_id"`
	Summary     string                `json:"summary"`
	ActorRole   models.Role           `json:"actor_role"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// VisaExpiryEvent reminds a student that an approved visa is about to lapse.
type VisaExpiryEvent struct {
	VisaID      uuid.UUID `json:"visa_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Country     string    `json:"country"`
	ExpiryDate  string    `json:"expiry_date"`
	DaysLeft    int       `json:"days_left"`
}

// Notifier delivers workflow events out of band.
type Notifier interface {
	DecisionMade(ctx context.Context, event DecisionEvent) error
	VisaExpiring(ctx context.Context, event VisaExpiryEvent) error
}

// Dispatch sends a decision event and only logs failures, so a broken
// notification channel never fails the decision that triggered it.
func Dispatch(ctx context.Context, n Notifier, event DecisionEvent) {
	if n == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := n.DecisionMade(ctx, event); err != nil {
		metrics.NotificationFailures.Inc()
		config.Logger.Warn("Failed to enqueue decision notification",
			zap.String("entity", string(event.Entity)),
			zap.String("entity_id", event.EntityID.String()),
			zap.String("recipient_id", event.RecipientID.String()),
			zap.Error(err),
		)
	}
}

// LogNotifier only logs events. It is used when no queue is configured.
type LogNotifier struct{}

func (LogNotifier) DecisionMade(_ context.Context, event DecisionEvent) error {
	config.Logger.Info("Decision notification",
		zap.String("entity", string(event.Entity)),
		zap.String("entity_id", event.EntityID.String()),
		zap.String("outcome", event.Outcome),
	)
	return nil
}

func (LogNotifier) VisaExpiring(_ context.Context, event VisaExpiryEvent) error {
	config.Logger.Info("Visa expiry reminder",
		zap.String("visa_id", event.VisaID.String()),
		zap.Int("days_left", event.DaysLeft),
	)
	return nil
}
