// Package game holds what every game and event shares: the collaborator
// bundle, the reply type, and parsing of user-supplied amounts and bets.
package game

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/ledger"
	"github.com/streamkit/tazos-engine/pkg/metrics"
	"github.com/streamkit/tazos-engine/pkg/names"
	"github.com/streamkit/tazos-engine/pkg/rng"
	"github.com/streamkit/tazos-engine/pkg/settings"
	"github.com/streamkit/tazos-engine/pkg/streak"
)

// Deps bundles the collaborators games draw on. Store holds sessions and
// event records. Settings, Streaks, Names, Metrics and Publisher
// may be nil.
type Deps struct {
	Store     redis.UniversalClient
	Config    *gameconfig.Config
	Ledger    *ledger.Ledger
	Cooldowns *cooldown.Gate
	Streaks   *streak.Tracker
	Names     *names.Registry
	Settings  *settings.Store
	Rand      rng.Source
	Now       func() time.Time
	Publisher eventbus.Publisher
	Metrics   *metrics.Metrics
}

// Enabled reports whether a feature flag is on.
func (d *Deps) Enabled(ctx context.Context, feature string) bool {
	if d.Settings == nil {
		if d.Config == nil {
			return true
		}
		on, ok := d.Config.Features[feature]
		return !ok || on
	}
	return d.Settings.Enabled(ctx, feature)
}

// Clock returns the current time from the injected clock.
func (d *Deps) Clock() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Display returns the user's display name, or the user when unknown.
func (d *Deps) Display(ctx context.Context, user string) string {
	if d.Names == nil {
		return user
	}
	return d.Names.Display(ctx, user)
}

// StartBet gates a wager-initiating action: feature flag, cooldown, then the
// clamped bet. When it returns a non-nil Reply the action must stop there.
func (d *Deps) StartBet(ctx context.Context, feature, user string, requested int64) (ledger.BetResult, *Reply, error) {
	if !d.Enabled(ctx, feature) {
		r := Disabled(feature)
		return ledger.BetResult{}, &r, nil
	}

	window := d.Config.CooldownFor(feature)
	remaining, ok, err := d.Cooldowns.Acquire(ctx, user, feature, window)
	if err != nil {
		return ledger.BetResult{}, nil, err
	}
	if !ok {
		r := Cooldown(user, cooldown.Seconds(remaining))
		return ledger.BetResult{}, &r, nil
	}

	bet, err := d.Ledger.PlaceBet(ctx, user, requested)
	if err != nil || !bet.OK {
		if relErr := d.Cooldowns.Release(ctx, user, feature); relErr != nil {
			logrus.Warnf("failed to release %s cooldown for %s: %v", feature, user, relErr)
		}
	}
	if err != nil {
		return ledger.BetResult{}, nil, err
	}
	if !bet.OK {
		r := Insufficient("@%s you need at least %d tazos to play (balance: %d).", user, d.Ledger.MinBet(), bet.Balance)
		return bet, &r, nil
	}

	d.Metrics.Bet(feature, bet.Bet)
	return bet, nil, nil
}

// Pay credits winnings, counts them and broadcasts the payout.
func (d *Deps) Pay(ctx context.Context, source, user string, amount int64) (int64, error) {
	bal, err := d.Ledger.Credit(ctx, user, amount)
	if err != nil {
		return 0, err
	}
	if amount > 0 {
		d.Metrics.Payout(source, amount)
		d.Publish(ctx, eventbus.Event{Kind: eventbus.KindPayout, Source: source, User: user, Amount: amount})
	}
	return bal, nil
}

// Publish broadcasts an event, logging delivery failures.
func (d *Deps) Publish(ctx context.Context, event eventbus.Event) {
	if d.Publisher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.Clock()
	}
	if err := d.Publisher.Publish(ctx, event); err != nil {
		logrus.Warnf("failed to publish %s event: %v", event.Kind, err)
	}
}

// RecordOutcome updates the win streak and returns any milestone suffix for the reply.
// Streak failures never block game flow.
func (d *Deps) RecordOutcome(ctx context.Context, user string, won bool) string {
	if d.Streaks == nil || !d.Enabled(ctx, gameconfig.FeatureStreaks) {
		return ""
	}
	if !won {
		if err := d.Streaks.RecordLoss(ctx, user); err != nil {
			logrus.Errorf("failed to record loss for %s: %v", user, err)
		}
		return ""
	}
	res, err := d.Streaks.RecordWin(ctx, user)
	if err != nil {
		logrus.Errorf("failed to record win for %s: %v", user, err)
		return ""
	}
	if res.Bonus > 0 {
		return streakSuffix(res.Count, res.Bonus)
	}
	return ""
}
