// Package sweeper settles work nobody touched in time: community events
// whose window closed with no further chat, and pending duels or requests
// nobody answered.
package sweeper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/event"
)

const sweepTimeout = 30 * time.Second

// Expirer drops stale pending offers and returns how many it removed.
type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// Result summarizes one pass.
type Result struct {
	Resolved []*event.Outcome
	Expired  int
}

type Sweeper struct {
	events   *event.Registry
	pending  []Expirer
	interval time.Duration
}

func New(events *event.Registry, interval time.Duration, pending ...Expirer) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{events: events, pending: pending, interval: interval}
}

// Sweep runs a single pass. Failures are logged and the pass moves on.
func (s *Sweeper) Sweep(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	var res Result
	for _, e := range s.events.All() {
		out, err := e.ResolveIfExpired(ctx)
		if err != nil {
			logrus.Errorf("sweeper: failed to resolve %s: %v", e.Name(), err)
			continue
		}
		if out != nil {
			logrus.Infof("sweeper: %s %s resolved as %s", out.Event, out.ID, out.Result)
			res.Resolved = append(res.Resolved, out)
		}
	}
	for _, p := range s.pending {
		n, err := p.ExpireStale(ctx)
		if err != nil {
			logrus.Errorf("sweeper: failed to expire pending offers: %v", err)
			continue
		}
		res.Expired += n
	}
	if res.Expired > 0 {
		logrus.Debugf("sweeper: expired %d pending offers", res.Expired)
	}
	return res
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.Infof("sweeper started, interval %s", s.interval)
	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("sweeper stopping")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
