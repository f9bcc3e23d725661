package wager

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

const featureDuel = gameconfig.FeatureDuel

// Duels holds challenger stakes until the target accepts, denies or the offer expires.
type Duels struct {
	deps    *game.Deps
	pending pendingStore
}

func NewDuels(deps *game.Deps) *Duels {
	return &Duels{
		deps: deps,
		pending: pendingStore{
			client: deps.Store,
			family: "duel",
			window: deps.Config.Duel.Window,
		},
	}
}

// Challenge debits the challenger's stake and leaves a pending duel on the target.
func (d *Duels) Challenge(ctx context.Context, challenger, target string, amount int64) (game.Reply, error) {
	if !d.deps.Enabled(ctx, featureDuel) {
		return game.Disabled(featureDuel), nil
	}
	if target == "" {
		return game.Rejected("@%s who do you want to duel?", challenger), nil
	}
	if target == challenger {
		return game.Rejected("@%s you can't duel yourself.", challenger), nil
	}
	if min := d.deps.Ledger.MinBet(); amount < min {
		return game.Rejected("@%s the minimum duel is %d tazos.", challenger, min), nil
	}

	remaining, ok, err := d.deps.Cooldowns.Acquire(ctx, challenger, featureDuel, d.deps.Config.CooldownFor(featureDuel))
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Cooldown(challenger, cooldown.Seconds(remaining)), nil
	}

	res, err := d.deps.Ledger.Deduct(ctx, challenger, amount)
	if err != nil {
		return game.Reply{}, err
	}
	if !res.OK {
		if err := d.deps.Cooldowns.Release(ctx, challenger, featureDuel); err != nil {
			logrus.Warnf("failed to release duel cooldown for %s: %v", challenger, err)
		}
		return game.Insufficient("@%s you only have %d tazos, not enough for a %d duel.", challenger, res.Balance, amount), nil
	}
	d.deps.Metrics.Bet(featureDuel, amount)

	displaced, err := d.pending.put(ctx, Pending{
		From:        challenger,
		FromDisplay: d.deps.Display(ctx, challenger),
		To:          target,
		Amount:      amount,
		CreatedAt:   d.deps.Clock().UnixMilli(),
	})
	if displaced != nil {
		d.refund(ctx, *displaced, "displaced")
	}
	if err != nil {
		d.refund(ctx, Pending{From: challenger, Amount: amount}, "store failure")
		return game.Reply{}, err
	}

	return game.OK("⚔️ @%s, %s challenges you to a duel for %d tazos! Type !accept or !deny within %ds.",
		d.deps.Display(ctx, target), d.deps.Display(ctx, challenger), amount, cooldown.Seconds(d.pending.window)), nil
}

// Accept matches the stake and flips for the pot. If the target cannot
// cover it, the challenger is refunded and the duel is cancelled.
func (d *Duels) Accept(ctx context.Context, target string) (game.Reply, error) {
	p, err := d.pending.claim(ctx, target)
	if err != nil {
		return game.Reply{}, err
	}
	if p == nil {
		return game.NotFound("@%s you have no pending duel.", target), nil
	}
	if p.Expired(d.deps.Clock(), d.pending.window) {
		d.refund(ctx, *p, "expired")
		return game.Rejected("@%s that duel expired. %s has been refunded.", target, p.FromDisplay), nil
	}

	res, err := d.deps.Ledger.Deduct(ctx, target, p.Amount)
	if err != nil {
		d.refund(ctx, *p, "store failure")
		return game.Reply{}, err
	}
	if !res.OK {
		d.refund(ctx, *p, "insufficient target funds")
		return game.Insufficient("@%s you need %d tazos to accept (balance: %d). Duel cancelled, %s has been refunded.",
			target, p.Amount, res.Balance, p.FromDisplay), nil
	}
	d.deps.Metrics.Bet(featureDuel, p.Amount)

	winner, loser := p.From, target
	if d.deps.Rand.Intn(2) == 1 {
		winner, loser = target, p.From
	}
	pot := p.Amount * 2
	if _, err := d.deps.Pay(ctx, featureDuel, winner, pot); err != nil {
		// Unwind both stakes so the pot is not lost.
		d.refund(ctx, *p, "payout failure")
		d.refund(ctx, Pending{From: target, Amount: p.Amount}, "payout failure")
		return game.Reply{}, err
	}
	suffix := d.deps.RecordOutcome(ctx, winner, true)
	d.deps.RecordOutcome(ctx, loser, false)

	return game.OK("⚔️ %s defeats %s and takes the %d tazo pot!%s",
		d.deps.Display(ctx, winner), d.deps.Display(ctx, loser), pot, suffix), nil
}

// Deny cancels the pending duel and refunds the challenger.
func (d *Duels) Deny(ctx context.Context, target string) (game.Reply, error) {
	p, err := d.pending.claim(ctx, target)
	if err != nil {
		return game.Reply{}, err
	}
	if p == nil {
		return game.NotFound("@%s you have no pending duel.", target), nil
	}
	d.refund(ctx, *p, "denied")
	return game.OK("@%s declined the duel. %s gets %d tazos back.", target, p.FromDisplay, p.Amount), nil
}

// Pending returns the duel waiting on target, if any.
func (d *Duels) Pending(ctx context.Context, target string) (*Pending, error) {
	return d.pending.get(ctx, target)
}

// ExpireStale refunds every duel past its window and returns how many it closed.
func (d *Duels) ExpireStale(ctx context.Context) (int, error) {
	return d.pending.sweep(ctx, d.deps.Clock(), func(p Pending) error {
		_, err := d.deps.Ledger.Credit(ctx, p.From, p.Amount)
		if err == nil {
			logrus.Infof("duel from %s to %s expired, refunded %d", p.From, p.To, p.Amount)
		}
		return err
	})
}

func (d *Duels) refund(ctx context.Context, p Pending, reason string) {
	if _, err := d.deps.Ledger.Credit(ctx, p.From, p.Amount); err != nil {
		logrus.WithFields(logrus.Fields{
			"user":   p.From,
			"amount": p.Amount,
			"reason": reason,
		}).Errorf("failed to refund duel stake: %v", err)
	}
}
