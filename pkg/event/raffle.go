package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/rng"
)

type RaffleData struct {
	Keyword string `json:"keyword"`
	// Entries holds one element per matching message; repeats weight the draw.
	Entries  []string          `json:"entries"`
	Displays map[string]string `json:"displays"`
}

// Raffle draws one winner from keyword entries.
type Raffle struct {
	deps   *game.Deps
	cfg    gameconfig.RaffleConfig
	record *Singleton[RaffleData]
	recent *recentList
}

func NewRaffle(deps *game.Deps) *Raffle {
	cfg := deps.Config.Raffle
	return &Raffle{
		deps:   deps,
		cfg:    cfg,
		record: NewSingleton[RaffleData](deps.Store, gameconfig.FeatureRaffle, deps.Clock),
		recent: newRecentList(deps.Store, gameconfig.FeatureRaffle, cfg.RecentMemory),
	}
}

func (r *Raffle) Name() string { return gameconfig.FeatureRaffle }

// Start opens a raffle with a keyword not used recently.
func (r *Raffle) Start(ctx context.Context) (game.Reply, error) {
	if !r.deps.Enabled(ctx, r.Name()) {
		return game.Disabled(r.Name()), nil
	}
	if _, err := r.ResolveIfExpired(ctx); err != nil {
		return game.Reply{}, err
	}
	ok, wait, err := r.record.ShouldStart(ctx, r.cfg.MinGap)
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Rejected("A raffle can't start for another %ds.", cooldown.Seconds(wait)), nil
	}

	keyword, err := r.recent.pick(ctx, r.deps.Rand, r.cfg.Keywords)
	if err != nil {
		return game.Reply{}, err
	}
	rec, created, err := r.record.Create(ctx, r.cfg.EntryWindow, RaffleData{Keyword: keyword, Displays: map[string]string{}})
	if err != nil {
		return game.Reply{}, err
	}
	if !created {
		return game.Rejected("A raffle is already running."), nil
	}
	announceStart(ctx, r.deps, r.Name(), rec.ID, map[string]interface{}{"keyword": keyword})
	return game.OK("🎟️ RAFFLE! Type %q in chat within %ds to enter. Every message is another ticket!",
		keyword, cooldown.Seconds(r.cfg.EntryWindow)), nil
}

// Enter adds a ticket when message contains the active keyword.
func (r *Raffle) Enter(ctx context.Context, user, message string) (bool, error) {
	rec, err := r.record.Get(ctx)
	if err != nil || rec == nil || rec.Closed(r.deps.Clock()) || !containsWord(message, rec.Data.Keyword) {
		return false, err
	}
	display := r.deps.Display(ctx, user)
	_, err = r.record.Update(ctx, func(rec *Record[RaffleData]) error {
		if rec.Closed(r.deps.Clock()) {
			return ErrNoEvent
		}
		rec.Data.Entries = append(rec.Data.Entries, user)
		if rec.Data.Displays == nil {
			rec.Data.Displays = map[string]string{}
		}
		rec.Data.Displays[user] = display
		return nil
	})
	if errors.Is(err, ErrNoEvent) {
		return false, nil
	}
	return err == nil, err
}

func (r *Raffle) Status(ctx context.Context) (game.Reply, error) {
	rec, err := r.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		return game.NotFound("No raffle is running."), nil
	}
	return game.OK("🎟️ Raffle keyword %q: %d tickets from %d players, %ds left.",
		rec.Data.Keyword, len(rec.Data.Entries), len(rec.Data.Displays), cooldown.Seconds(rec.Remaining(r.deps.Clock()))), nil
}

func (r *Raffle) ResolveIfExpired(ctx context.Context) (*Outcome, error) {
	rec, err := r.record.Get(ctx)
	if err != nil || rec == nil || !rec.Closed(r.deps.Clock()) {
		return nil, err
	}
	won, err := r.record.Resolve(ctx, rec.ID)
	if err != nil || !won {
		return nil, err
	}

	out := &Outcome{Event: r.Name(), ID: rec.ID, Payouts: map[string]int64{}}
	if len(rec.Data.Entries) == 0 {
		out.Result = OutcomeNoEntry
		out.Text = "🎟️ Nobody entered the raffle."
		announce(ctx, r.deps, out)
		return out, nil
	}

	winner := DrawWinner(r.deps.Rand, rec.Data.Entries)
	tier := DrawTier(r.deps.Rand, r.cfg.Tiers)
	prize := int64(rng.Range(r.deps.Rand, int(tier.Min), int(tier.Max)))
	if _, err := r.deps.Pay(ctx, r.Name(), winner, prize); err != nil {
		return nil, err
	}
	display := rec.Data.Displays[winner]
	if display == "" {
		display = winner
	}
	out.Result = OutcomeSuccess
	out.Payouts[winner] = prize
	out.Text = fmt.Sprintf("🎉 %s wins the raffle and takes %d tazos (%s prize)!", display, prize, tier.Name)
	announce(ctx, r.deps, out)
	return out, nil
}

// DrawWinner picks uniformly from entries, so a user with k of n tickets wins with probability k/n.
func DrawWinner(src rng.Source, entries []string) string {
	return entries[src.Intn(len(entries))]
}

// DrawTier picks a prize tier by its percentage chance.
func DrawTier(src rng.Source, tiers []gameconfig.PrizeTier) gameconfig.PrizeTier {
	roll := src.Intn(100)
	for _, t := range tiers {
		if roll < t.Chance {
			return t
		}
		roll -= t.Chance
	}
	return tiers[len(tiers)-1]
}
