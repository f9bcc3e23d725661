// Package eventbus broadcasts payouts and event lifecycle changes so the
// overlay can animate them.
package eventbus

import (
	"context"
	"sync"
	"time"
)

// Kinds of broadcast events.
const (
	KindPayout        = "payout"
	KindEventStarted  = "event.started"
	KindEventResolved = "event.resolved"
	KindMilestone     = "streak.milestone"
)

// Event is the envelope published for every broadcast.
type Event struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Source    string                 `json:"source"`
	User      string                 `json:"user,omitempty"`
	Amount    int64                  `json:"amount,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop is a publisher that does nothing.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind filters recorded events by kind.
func (r *Recorder) OfKind(kind string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
