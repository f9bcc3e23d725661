package event

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

var errAlreadyJoined = errors.New("already joined")

type HeistMember struct {
	User    string `json:"user"`
	Display string `json:"display"`
	Stake   int64  `json:"stake"`
}

type HeistData struct {
	Members []HeistMember `json:"members"`
}

// Heist pools stakes for a single success roll.
type Heist struct {
	deps   *game.Deps
	cfg    gameconfig.HeistConfig
	record *Singleton[HeistData]
}

func NewHeist(deps *game.Deps) *Heist {
	return &Heist{
		deps:   deps,
		cfg:    deps.Config.Heist,
		record: NewSingleton[HeistData](deps.Store, gameconfig.FeatureHeist, deps.Clock),
	}
}

func (h *Heist) Name() string { return gameconfig.FeatureHeist }

// SuccessChance is the success percentage for n members.
func (h *Heist) SuccessChance(n int) int {
	pct := h.cfg.BasePct + h.cfg.PerMemberPct*n
	if pct > h.cfg.MaxPct {
		return h.cfg.MaxPct
	}
	return pct
}

// Join stakes an amount on the active heist, starting one if none is running.
func (h *Heist) Join(ctx context.Context, user string, requested int64) (game.Reply, error) {
	if !h.deps.Enabled(ctx, h.Name()) {
		return game.Disabled(h.Name()), nil
	}
	if _, err := h.ResolveIfExpired(ctx); err != nil {
		return game.Reply{}, err
	}

	rec, err := h.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		ok, wait, err := h.record.ShouldStart(ctx, h.cfg.MinGap)
		if err != nil {
			return game.Reply{}, err
		}
		if !ok {
			return game.Rejected("@%s the crew is laying low. Next heist in %ds.", user, cooldown.Seconds(wait)), nil
		}
	} else {
		for _, m := range rec.Data.Members {
			if m.User == user {
				return game.Rejected("@%s you're already in this heist.", user), nil
			}
		}
	}

	bet, reply, err := h.deps.StartBet(ctx, h.Name(), user, requested)
	if err != nil {
		return game.Reply{}, err
	}
	if reply != nil {
		return *reply, nil
	}

	member := HeistMember{User: user, Display: h.deps.Display(ctx, user), Stake: bet.Bet}

	if rec == nil {
		created, ok, err := h.record.Create(ctx, h.cfg.JoinWindow, HeistData{Members: []HeistMember{member}})
		if err != nil {
			h.refund(ctx, member)
			return game.Reply{}, err
		}
		if ok {
			announceStart(ctx, h.deps, h.Name(), created.ID, map[string]interface{}{"leader": member.Display})
			return game.OK("💰 %s is planning a heist with %d tazos! Type !heist <amount> within %ds to join the crew.",
				member.Display, member.Stake, cooldown.Seconds(h.cfg.JoinWindow)), nil
		}
	}

	updated, err := h.record.Update(ctx, func(r *Record[HeistData]) error {
		if r.Closed(h.deps.Clock()) {
			return ErrNoEvent
		}
		for _, m := range r.Data.Members {
			if m.User == user {
				return errAlreadyJoined
			}
		}
		r.Data.Members = append(r.Data.Members, member)
		return nil
	})
	switch {
	case errors.Is(err, errAlreadyJoined):
		h.refund(ctx, member)
		return game.Rejected("@%s you're already in this heist.", user), nil
	case errors.Is(err, ErrNoEvent):
		h.refund(ctx, member)
		return game.Rejected("@%s the heist already left without you.", user), nil
	case err != nil:
		h.refund(ctx, member)
		return game.Reply{}, err
	}

	n := len(updated.Data.Members)
	return game.OK("💰 %s joins the heist with %d tazos! Crew of %d, %d%% chance of success.",
		member.Display, member.Stake, n, h.SuccessChance(n)), nil
}

func (h *Heist) Status(ctx context.Context) (game.Reply, error) {
	rec, err := h.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		return game.NotFound("No heist is being planned. Start one with !heist <amount>."), nil
	}
	var pot int64
	for _, m := range rec.Data.Members {
		pot += m.Stake
	}
	n := len(rec.Data.Members)
	return game.OK("💰 Heist crew of %d with %d tazos staked, %d%% chance. Leaves in %ds.",
		n, pot, h.SuccessChance(n), cooldown.Seconds(rec.Remaining(h.deps.Clock()))), nil
}

func (h *Heist) ResolveIfExpired(ctx context.Context) (*Outcome, error) {
	rec, err := h.record.Get(ctx)
	if err != nil || rec == nil || !rec.Closed(h.deps.Clock()) {
		return nil, err
	}
	won, err := h.record.Resolve(ctx, rec.ID)
	if err != nil || !won {
		return nil, err
	}

	members := rec.Data.Members
	out := &Outcome{Event: h.Name(), ID: rec.ID, Payouts: map[string]int64{}}
	if len(members) == 0 {
		out.Result = OutcomeNoEntry
		out.Text = "💰 The heist was called off."
		announce(ctx, h.deps, out)
		return out, nil
	}

	chance := h.SuccessChance(len(members))
	if h.deps.Rand.Intn(100) >= chance {
		out.Result = OutcomeFailure
		out.Text = fmt.Sprintf("🚨 The heist failed! The crew of %d lost everything.", len(members))
		announce(ctx, h.deps, out)
		return out, nil
	}

	mult := h.cfg.MinMultiplier + h.deps.Rand.Float64()*(h.cfg.MaxMultiplier-h.cfg.MinMultiplier)
	parts := make([]string, 0, len(members))
	for _, m := range members {
		amt := int64(math.Floor(float64(m.Stake) * mult))
		if _, err := h.deps.Pay(ctx, h.Name(), m.User, amt); err != nil {
			logrus.Errorf("heist %s: failed to pay %s: %v", rec.ID, m.User, err)
			continue
		}
		out.Payouts[m.User] += amt
		parts = append(parts, fmt.Sprintf("%s +%d", m.Display, amt))
	}
	out.Result = OutcomeSuccess
	out.Text = fmt.Sprintf("🎉 The heist succeeded at %.2fx! %s", mult, strings.Join(parts, ", "))
	announce(ctx, h.deps, out)
	return out, nil
}

// refund returns a stake that never made it into the crew and frees the join cooldown.
func (h *Heist) refund(ctx context.Context, m HeistMember) {
	if _, err := h.deps.Ledger.Credit(ctx, m.User, m.Stake); err != nil {
		logrus.Errorf("failed to refund heist stake of %d to %s: %v", m.Stake, m.User, err)
	}
	if err := h.deps.Cooldowns.Release(ctx, m.User, h.Name()); err != nil {
		logrus.Warnf("failed to release heist cooldown for %s: %v", m.User, err)
	}
}
