// Package gametest builds a fully wired game.Deps over miniredis with a
// controllable clock and scripted randomness.
package gametest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/ledger"
	"github.com/streamkit/tazos-engine/pkg/metrics"
	"github.com/streamkit/tazos-engine/pkg/names"
	"github.com/streamkit/tazos-engine/pkg/rng"
	"github.com/streamkit/tazos-engine/pkg/settings"
	"github.com/streamkit/tazos-engine/pkg/streak"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Harness is a test environment for games and events.
type Harness struct {
	MR      *miniredis.Miniredis
	Client  *redis.Client
	Config  *gameconfig.Config
	Clock   *Clock
	Rand    *rng.Sequence
	Events  *eventbus.Recorder
	Metrics *metrics.Metrics
	Deps    *game.Deps
}

// New wires a harness using gameconfig.Default(). The streak tracker has no
// milestones, so balances only move by game payouts.
func New(t testing.TB) *Harness {
	t.Helper()
	return NewWithConfig(t, gameconfig.Default())
}

func NewWithConfig(t testing.TB, cfg *gameconfig.Config) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := NewClock(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	seq := &rng.Sequence{}
	rec := &eventbus.Recorder{}
	m := metrics.New()

	l := ledger.New(client, ledger.Config{
		StartingBalance: cfg.Ledger.StartingBalance,
		MinBet:          cfg.Ledger.MinBet,
	})
	st := settings.New(client, cfg.Features, "UTC", time.Minute)
	tracker := streak.New(client, l, streak.Options{
		Location:  st.Location,
		Now:       clock.Now,
		Publisher: rec,
	})

	return &Harness{
		MR:      mr,
		Client:  client,
		Config:  cfg,
		Clock:   clock,
		Rand:    seq,
		Events:  rec,
		Metrics: m,
		Deps: &game.Deps{
			Store:     client,
			Config:    cfg,
			Ledger:    l,
			Cooldowns: cooldown.New(client, clock.Now),
			Streaks:   tracker,
			Names:     names.NewRegistry(client),
			Settings:  st,
			Rand:      seq,
			Now:       clock.Now,
			Publisher: rec,
			Metrics:   m,
		},
	}
}

// Balance returns a user's balance, failing the test on store errors.
func (h *Harness) Balance(t testing.TB, user string) int64 {
	t.Helper()
	bal, err := h.Deps.Ledger.GetBalance(context.Background(), user)
	if err != nil {
		t.Fatalf("GetBalance(%s) error = %v", user, err)
	}
	return bal
}

// SetBalance moves a user's balance to exactly want.
func (h *Harness) SetBalance(t testing.TB, user string, want int64) {
	t.Helper()
	ctx := context.Background()
	cur := h.Balance(t, user)
	switch {
	case want > cur:
		if _, err := h.Deps.Ledger.Credit(ctx, user, want-cur); err != nil {
			t.Fatalf("Credit error = %v", err)
		}
	case want < cur:
		res, err := h.Deps.Ledger.Deduct(ctx, user, cur-want)
		if err != nil || !res.OK {
			t.Fatalf("Deduct error = %v ok=%v", err, res.OK)
		}
	}
}
