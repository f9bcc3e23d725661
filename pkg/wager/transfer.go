package wager

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

const featureTransfer = gameconfig.FeatureTransfer

// Transfers moves tazos between users, directly or by accepted request.
type Transfers struct {
	deps     *game.Deps
	requests pendingStore
}

func NewTransfers(deps *game.Deps) *Transfers {
	return &Transfers{
		deps: deps,
		requests: pendingStore{
			client: deps.Store,
			family: "request",
			window: deps.Config.Request.Window,
		},
	}
}

func (t *Transfers) precheck(ctx context.Context, from, to string, amount int64) *game.Reply {
	var r game.Reply
	switch {
	case !t.deps.Enabled(ctx, featureTransfer):
		r = game.Disabled(featureTransfer)
	case to == "":
		r = game.Rejected("@%s who is it for?", from)
	case to == from:
		r = game.Rejected("@%s you can't transfer to yourself.", from)
	case amount <= 0:
		r = game.Rejected("@%s the amount must be positive.", from)
	default:
		return nil
	}
	return &r
}

// Gift moves tazos from sender to recipient immediately.
func (t *Transfers) Gift(ctx context.Context, from, to string, amount int64) (game.Reply, error) {
	if r := t.precheck(ctx, from, to, amount); r != nil {
		return *r, nil
	}
	remaining, ok, err := t.deps.Cooldowns.Acquire(ctx, from, featureTransfer, t.deps.Config.CooldownFor(featureTransfer))
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Cooldown(from, cooldown.Seconds(remaining)), nil
	}

	res, err := t.deps.Ledger.Deduct(ctx, from, amount)
	if err != nil {
		return game.Reply{}, err
	}
	if !res.OK {
		if err := t.deps.Cooldowns.Release(ctx, from, featureTransfer); err != nil {
			logrus.Warnf("failed to release transfer cooldown for %s: %v", from, err)
		}
		return game.Insufficient("@%s you only have %d tazos.", from, res.Balance), nil
	}
	bal, err := t.deps.Ledger.Credit(ctx, to, amount)
	if err != nil {
		if _, rerr := t.deps.Ledger.Credit(ctx, from, amount); rerr != nil {
			logrus.Errorf("failed to return gift of %d to %s: %v", amount, from, rerr)
		}
		return game.Reply{}, err
	}
	return game.OK("🎁 %s gave %d tazos to %s (now %d).",
		t.deps.Display(ctx, from), amount, t.deps.Display(ctx, to), bal), nil
}

// Request asks target for tazos. Nothing moves until the target accepts.
func (t *Transfers) Request(ctx context.Context, requester, target string, amount int64) (game.Reply, error) {
	if r := t.precheck(ctx, requester, target, amount); r != nil {
		return *r, nil
	}
	if _, err := t.requests.put(ctx, Pending{
		From:        requester,
		FromDisplay: t.deps.Display(ctx, requester),
		To:          target,
		Amount:      amount,
		CreatedAt:   t.deps.Clock().UnixMilli(),
	}); err != nil {
		return game.Reply{}, err
	}
	return game.OK("💸 @%s, %s is asking you for %d tazos. Type !acceptrequest or !denyrequest within %ds.",
		t.deps.Display(ctx, target), t.deps.Display(ctx, requester), amount, cooldown.Seconds(t.requests.window)), nil
}

// AcceptRequest pays the pending request from target to requester.
func (t *Transfers) AcceptRequest(ctx context.Context, target string) (game.Reply, error) {
	p, err := t.requests.claim(ctx, target)
	if err != nil {
		return game.Reply{}, err
	}
	if p == nil {
		return game.NotFound("@%s you have no pending request.", target), nil
	}
	if p.Expired(t.deps.Clock(), t.requests.window) {
		return game.Rejected("@%s that request from %s expired.", target, p.FromDisplay), nil
	}

	res, err := t.deps.Ledger.Deduct(ctx, target, p.Amount)
	if err != nil {
		return game.Reply{}, err
	}
	if !res.OK {
		return game.Insufficient("@%s you need %d tazos to cover the request (balance: %d). Request cancelled.",
			target, p.Amount, res.Balance), nil
	}
	bal, err := t.deps.Ledger.Credit(ctx, p.From, p.Amount)
	if err != nil {
		if _, rerr := t.deps.Ledger.Credit(ctx, target, p.Amount); rerr != nil {
			logrus.Errorf("failed to return %d to %s: %v", p.Amount, target, rerr)
		}
		return game.Reply{}, err
	}
	return game.OK("💸 %s sent %d tazos to %s (now %d).",
		t.deps.Display(ctx, target), p.Amount, p.FromDisplay, bal), nil
}

// DenyRequest drops the pending request.
func (t *Transfers) DenyRequest(ctx context.Context, target string) (game.Reply, error) {
	p, err := t.requests.claim(ctx, target)
	if err != nil {
		return game.Reply{}, err
	}
	if p == nil {
		return game.NotFound("@%s you have no pending request.", target), nil
	}
	return game.OK("@%s declined %s's request.", target, p.FromDisplay), nil
}

// PendingRequest returns the request waiting on target, if any.
func (t *Transfers) PendingRequest(ctx context.Context, target string) (*Pending, error) {
	return t.requests.get(ctx, target)
}

// ExpireStale deletes requests past their window.
func (t *Transfers) ExpireStale(ctx context.Context) (int, error) {
	return t.requests.sweep(ctx, t.deps.Clock(), func(Pending) error { return nil })
}
