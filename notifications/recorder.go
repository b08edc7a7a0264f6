package notifications

import (
	"context"
	"sync"
)

// Recorder keeps every event in memory. Tests use it in place of the queue.
type Recorder struct {
	mu        sync.Mutex
	Decisions []DecisionEvent
	Reminders []VisaExpiryEvent
	Err       error
}

func (r *Recorder) DecisionMade(_ context.Context, event DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Decisions = append(r.Decisions, event)
	return nil
}

func (r *Recorder) VisaExpiring(_ context.Context, event VisaExpiryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Reminders = append(r.Reminders, event)
	return nil
}

func (r *Recorder) Last() (DecisionEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Decisions) == 0 {
		return DecisionEvent{}, false
	}
	return r.Decisions[len(r.Decisions)-1], true
}
