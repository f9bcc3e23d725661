package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

type ChallengeData struct {
	Target int            `json:"target"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// Challenge pays every participant when chat hits a message target in time.
type Challenge struct {
	deps   *game.Deps
	cfg    gameconfig.ChallengeConfig
	record *Singleton[ChallengeData]
}

func NewChallenge(deps *game.Deps) *Challenge {
	return &Challenge{
		deps:   deps,
		cfg:    deps.Config.Challenge,
		record: NewSingleton[ChallengeData](deps.Store, gameconfig.FeatureChallenge, deps.Clock),
	}
}

func (c *Challenge) Name() string { return gameconfig.FeatureChallenge }

func (c *Challenge) Start(ctx context.Context) (game.Reply, error) {
	if !c.deps.Enabled(ctx, c.Name()) {
		return game.Disabled(c.Name()), nil
	}
	if _, err := c.ResolveIfExpired(ctx); err != nil {
		return game.Reply{}, err
	}
	ok, wait, err := c.record.ShouldStart(ctx, c.cfg.MinGap)
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Rejected("A chat challenge can't start for another %ds.", cooldown.Seconds(wait)), nil
	}
	rec, created, err := c.record.Create(ctx, c.cfg.Window, ChallengeData{Target: c.cfg.Target, Counts: map[string]int{}})
	if err != nil {
		return game.Reply{}, err
	}
	if !created {
		return game.Rejected("A chat challenge is already running."), nil
	}
	announceStart(ctx, c.deps, c.Name(), rec.ID, map[string]interface{}{"target": c.cfg.Target})
	return game.OK("💬 CHAT CHALLENGE! Send %d messages together in %ds and everyone who helped gets %d tazos (max %d each).",
		c.cfg.Target, cooldown.Seconds(c.cfg.Window), c.cfg.Prize, c.cfg.PerUserCap), nil
}

// Count credits one qualifying message, up to the per-user cap.
func (c *Challenge) Count(ctx context.Context, user, message string) (bool, error) {
	if utf8.RuneCountInString(strings.TrimSpace(message)) < c.cfg.MinLength {
		return false, nil
	}
	rec, err := c.record.Get(ctx)
	if err != nil || rec == nil || rec.Closed(c.deps.Clock()) || rec.Data.Counts[user] >= c.cfg.PerUserCap {
		return false, err
	}

	counted := false
	_, err = c.record.Update(ctx, func(r *Record[ChallengeData]) error {
		if r.Closed(c.deps.Clock()) {
			return ErrNoEvent
		}
		if r.Data.Counts == nil {
			r.Data.Counts = map[string]int{}
		}
		if r.Data.Counts[user] >= c.cfg.PerUserCap {
			return ErrNoChange
		}
		r.Data.Counts[user]++
		r.Data.Total++
		counted = true
		return nil
	})
	if errors.Is(err, ErrNoEvent) {
		return false, nil
	}
	return counted, err
}

func (c *Challenge) Status(ctx context.Context) (game.Reply, error) {
	rec, err := c.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		return game.NotFound("No chat challenge is running."), nil
	}
	return game.OK("💬 Chat challenge: %d/%d messages from %d chatters, %ds left.",
		rec.Data.Total, rec.Data.Target, len(rec.Data.Counts), cooldown.Seconds(rec.Remaining(c.deps.Clock()))), nil
}

// ResolveIfExpired settles at the end of the window so late helpers still share the prize.
func (c *Challenge) ResolveIfExpired(ctx context.Context) (*Outcome, error) {
	rec, err := c.record.Get(ctx)
	if err != nil || rec == nil || !rec.Closed(c.deps.Clock()) {
		return nil, err
	}
	won, err := c.record.Resolve(ctx, rec.ID)
	if err != nil || !won {
		return nil, err
	}

	out := &Outcome{Event: c.Name(), ID: rec.ID, Payouts: map[string]int64{}}
	if rec.Data.Total < rec.Data.Target {
		out.Result = OutcomeFailure
		out.Text = fmt.Sprintf("💬 Challenge failed: %d/%d messages. Nobody gets paid.", rec.Data.Total, rec.Data.Target)
		announce(ctx, c.deps, out)
		return out, nil
	}

	users := make([]string, 0, len(rec.Data.Counts))
	for u := range rec.Data.Counts {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		if _, err := c.deps.Pay(ctx, c.Name(), u, c.cfg.Prize); err != nil {
			logrus.Errorf("challenge %s: failed to pay %s: %v", rec.ID, u, err)
			continue
		}
		out.Payouts[u] = c.cfg.Prize
	}
	out.Result = OutcomeSuccess
	out.Text = fmt.Sprintf("🎉 Challenge complete with %d messages! %d chatters earn %d tazos each.",
		rec.Data.Total, len(out.Payouts), c.cfg.Prize)
	announce(ctx, c.deps, out)
	return out, nil
}
