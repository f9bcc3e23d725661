// Package event runs the singleton community events: heist, raffle, drop,
// challenge and boss. Each keeps one record system-wide, accepts
// participation during a window and resolves exactly once.
package event

import (
	"context"
	"strings"
	"unicode"

	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/game"
)

// Event outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeNoEntry  = "no_entries"
	OutcomeDefeated = "defeated"
	OutcomeEscaped  = "escaped"
)

// Event is the surface shared by every community event.
type Event interface {
	Name() string
	// Status describes the active instance, if any.
	Status(ctx context.Context) (game.Reply, error)
	// ResolveIfExpired settles an instance whose window has closed. It is
	// safe to call repeatedly and concurrently; nil means nothing was resolved.
	ResolveIfExpired(ctx context.Context) (*Outcome, error)
}

// Outcome is the settled result of one instance.
type Outcome struct {
	Event   string
	ID      string
	Result  string
	Payouts map[string]int64
	Text    string
}

// announce pays nothing; it counts and broadcasts an outcome whose payouts
// have already been credited.
func announce(ctx context.Context, deps *game.Deps, o *Outcome) {
	deps.Metrics.EventResolved(o.Event, o.Result)
	payouts := make(map[string]interface{}, len(o.Payouts))
	for u, amt := range o.Payouts {
		payouts[u] = amt
	}
	deps.Publish(ctx, eventbus.Event{
		Kind:   eventbus.KindEventResolved,
		Source: o.Event,
		Data: map[string]interface{}{
			"id":      o.ID,
			"result":  o.Result,
			"payouts": payouts,
			"text":    o.Text,
		},
	})
}

func announceStart(ctx context.Context, deps *game.Deps, kind, id string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["id"] = id
	deps.Publish(ctx, eventbus.Event{Kind: eventbus.KindEventStarted, Source: kind, Data: data})
}

// words splits a chat message into lower-cased words.
func words(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWord reports whether message contains keyword as a whole word.
func containsWord(message, keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, w := range words(message) {
		if w == keyword {
			return true
		}
	}
	return false
}
