package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeDecision   = "notification:decision"
	TypeVisaExpiry = "notification:visa_expiry"

	QueueName = "notifications"
)

func NewDecisionTask(event DecisionEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision event: %w", err)
	}
	return asynq.NewTask(TypeDecision, payload, asynq.MaxRetry(5), asynq.Queue(QueueName), asynq.Timeout(time.Minute)), nil
}

// NewVisaExpiryTask is unique per visa for a day so a rerun of the cron job
// does not send duplicates.
func NewVisaExpiryTask(event VisaExpiryEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal visa expiry event: %w", err)
	}
	return asynq.NewTask(TypeVisaExpiry, payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueName),
		asynq.Unique(24*time.Hour),
		asynq.TaskID(fmt.Sprintf("visa-expiry-%s-%d", event.VisaID, event.DaysLeft)),
	), nil
}

// AsynqNotifier enqueues events for the worker.
type AsynqNotifier struct {
	client *asynq.Client
}

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

func (n *AsynqNotifier) DecisionMade(ctx context.Context, event DecisionEvent) error {
	task, err := NewDecisionTask(event)
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueContext(ctx, task)
	return err
}

func (n *AsynqNotifier) VisaExpiring(ctx context.Context, event VisaExpiryEvent) error {
	task, err := NewVisaExpiryTask(event)
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
