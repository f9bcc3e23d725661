package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

var errDropFull = errors.New("drop fully claimed")

type DropData struct {
	Keyword  string   `json:"keyword"`
	Winners  []string `json:"winners"`
	Displays []string `json:"displays"`
}

// Drop pays the first N distinct users to type the keyword.
type Drop struct {
	deps   *game.Deps
	cfg    gameconfig.DropConfig
	record *Singleton[DropData]
	recent *recentList
}

func NewDrop(deps *game.Deps) *Drop {
	cfg := deps.Config.Drop
	return &Drop{
		deps:   deps,
		cfg:    cfg,
		record: NewSingleton[DropData](deps.Store, gameconfig.FeatureDrop, deps.Clock),
		recent: newRecentList(deps.Store, gameconfig.FeatureDrop, cfg.RecentMemory),
	}
}

func (d *Drop) Name() string { return gameconfig.FeatureDrop }

func (d *Drop) Start(ctx context.Context) (game.Reply, error) {
	if !d.deps.Enabled(ctx, d.Name()) {
		return game.Disabled(d.Name()), nil
	}
	if _, err := d.ResolveIfExpired(ctx); err != nil {
		return game.Reply{}, err
	}
	ok, wait, err := d.record.ShouldStart(ctx, d.cfg.MinGap)
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Rejected("A drop can't start for another %ds.", cooldown.Seconds(wait)), nil
	}

	keyword, err := d.recent.pick(ctx, d.deps.Rand, d.cfg.Keywords)
	if err != nil {
		return game.Reply{}, err
	}
	rec, created, err := d.record.Create(ctx, d.cfg.Window, DropData{Keyword: keyword})
	if err != nil {
		return game.Reply{}, err
	}
	if !created {
		return game.Rejected("A drop is already running."), nil
	}
	announceStart(ctx, d.deps, d.Name(), rec.ID, map[string]interface{}{"keyword": keyword})
	return game.OK("📦 SUPPLY DROP! First %d to type %q get %d tazos!", d.cfg.MaxWinners, keyword, d.cfg.Prize), nil
}

// Claim pays user if message has the keyword and a slot is left. The drop
// resolves as soon as the last slot is taken.
func (d *Drop) Claim(ctx context.Context, user, message string) (*game.Reply, error) {
	rec, err := d.record.Get(ctx)
	if err != nil || rec == nil || rec.Closed(d.deps.Clock()) || !containsWord(message, rec.Data.Keyword) {
		return nil, err
	}
	display := d.deps.Display(ctx, user)

	claimed := false
	updated, err := d.record.Update(ctx, func(r *Record[DropData]) error {
		if r.Closed(d.deps.Clock()) {
			return ErrNoEvent
		}
		for _, w := range r.Data.Winners {
			if w == user {
				return ErrNoChange
			}
		}
		if len(r.Data.Winners) >= d.cfg.MaxWinners {
			return errDropFull
		}
		r.Data.Winners = append(r.Data.Winners, user)
		r.Data.Displays = append(r.Data.Displays, display)
		claimed = true
		return nil
	})
	if errors.Is(err, ErrNoEvent) || errors.Is(err, errDropFull) {
		return nil, nil
	}
	if err != nil || !claimed {
		return nil, err
	}

	bal, err := d.deps.Pay(ctx, d.Name(), user, d.cfg.Prize)
	if err != nil {
		d.unclaim(ctx, user)
		return nil, err
	}
	reply := game.OK("📦 %s grabbed %d tazos (balance: %d)!", display, d.cfg.Prize, bal)

	if len(updated.Data.Winners) >= d.cfg.MaxWinners {
		out, err := d.resolve(ctx, updated)
		if err != nil {
			logrus.Errorf("drop %s: failed to close after last claim: %v", updated.ID, err)
		} else if out != nil {
			reply.Text += " " + out.Text
		}
	}
	return &reply, nil
}

// unclaim gives back a slot whose prize could not be paid, so the outcome only
// lists credited winners.
func (d *Drop) unclaim(ctx context.Context, user string) {
	_, err := d.record.Update(ctx, func(r *Record[DropData]) error {
		for i, w := range r.Data.Winners {
			if w == user {
				r.Data.Winners = append(r.Data.Winners[:i], r.Data.Winners[i+1:]...)
				if i < len(r.Data.Displays) {
					r.Data.Displays = append(r.Data.Displays[:i], r.Data.Displays[i+1:]...)
				}
				return nil
			}
		}
		return ErrNoChange
	})
	if err != nil {
		logrus.Errorf("drop: failed to release unpaid claim of %s: %v", user, err)
	}
}

func (d *Drop) Status(ctx context.Context) (game.Reply, error) {
	rec, err := d.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		return game.NotFound("No drop is active."), nil
	}
	return game.OK("📦 Drop keyword %q: %d of %d claimed, %ds left.",
		rec.Data.Keyword, len(rec.Data.Winners), d.cfg.MaxWinners, cooldown.Seconds(rec.Remaining(d.deps.Clock()))), nil
}

func (d *Drop) ResolveIfExpired(ctx context.Context) (*Outcome, error) {
	rec, err := d.record.Get(ctx)
	if err != nil || rec == nil || !rec.Closed(d.deps.Clock()) {
		return nil, err
	}
	return d.resolve(ctx, rec)
}

// resolve closes the drop. Winners were paid as they claimed.
func (d *Drop) resolve(ctx context.Context, rec *Record[DropData]) (*Outcome, error) {
	won, err := d.record.Resolve(ctx, rec.ID)
	if err != nil || !won {
		return nil, err
	}
	out := &Outcome{Event: d.Name(), ID: rec.ID, Payouts: map[string]int64{}}
	for _, w := range rec.Data.Winners {
		out.Payouts[w] = d.cfg.Prize
	}
	if len(rec.Data.Winners) == 0 {
		out.Result = OutcomeNoEntry
		out.Text = "📦 Nobody grabbed the drop."
	} else {
		out.Result = OutcomeSuccess
		out.Text = fmt.Sprintf("📦 Drop over! Winners: %s.", strings.Join(rec.Data.Displays, ", "))
	}
	announce(ctx, d.deps, out)
	return out, nil
}
