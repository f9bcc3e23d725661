package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/rng"
)

const attackFamily = "boss_attack"

type BossData struct {
	Name       string            `json:"name"`
	MaxHP      int               `json:"maxHp"`
	HP         int               `json:"hp"`
	Weakness   string            `json:"weakness"`
	Resistance string            `json:"resistance"`
	Damage     map[string]int    `json:"damage"`
	Displays   map[string]string `json:"displays"`
}

// Boss is a shared-HP fight driven by attack words in chat.
type Boss struct {
	deps    *game.Deps
	cfg     gameconfig.BossConfig
	record  *Singleton[BossData]
	recent  *recentList
	attacks map[string]string
}

func NewBoss(deps *game.Deps) *Boss {
	cfg := deps.Config.Boss
	attacks := make(map[string]string)
	for category, ws := range cfg.AttackWords {
		for _, w := range ws {
			attacks[strings.ToLower(w)] = category
		}
	}
	return &Boss{
		deps:    deps,
		cfg:     cfg,
		record:  NewSingleton[BossData](deps.Store, gameconfig.FeatureBoss, deps.Clock),
		recent:  newRecentList(deps.Store, gameconfig.FeatureBoss, cfg.RecentMemory),
		attacks: attacks,
	}
}

func (b *Boss) Name() string { return gameconfig.FeatureBoss }

// ComputeDamage applies typing to a base roll: double on weakness, half
// (rounded up, at least 1) on resistance.
func ComputeDamage(base int, category, weakness, resistance string) int {
	switch category {
	case weakness:
		return base * 2
	case resistance:
		d := (base + 1) / 2
		if d < 1 {
			return 1
		}
		return d
	}
	return base
}

// SplitRewards shares pool by damage. Every attacker gets floor first and
// the rest of the pool is split proportionally, so the total stays within
// the pool whenever the floors alone fit in it.
func SplitRewards(pool, floor int64, damage map[string]int) map[string]int64 {
	out := make(map[string]int64, len(damage))
	var total int64
	for u, d := range damage {
		if d > 0 {
			total += int64(d)
			out[u] = floor
		}
	}
	if total == 0 {
		return out
	}
	rest := pool - floor*int64(len(out))
	if rest <= 0 {
		return out
	}
	for u := range out {
		out[u] += rest * int64(damage[u]) / total
	}
	return out
}

// classify returns the category of the first attack word in message.
func (b *Boss) classify(message string) (string, string, bool) {
	for _, w := range words(message) {
		if c, ok := b.attacks[w]; ok {
			return w, c, true
		}
	}
	return "", "", false
}

func (b *Boss) Start(ctx context.Context) (game.Reply, error) {
	if !b.deps.Enabled(ctx, b.Name()) {
		return game.Disabled(b.Name()), nil
	}
	if _, err := b.ResolveIfExpired(ctx); err != nil {
		return game.Reply{}, err
	}
	ok, wait, err := b.record.ShouldStart(ctx, b.cfg.MinGap)
	if err != nil {
		return game.Reply{}, err
	}
	if !ok {
		return game.Rejected("No boss can appear for another %ds.", cooldown.Seconds(wait)), nil
	}

	roster := make([]string, len(b.cfg.Roster))
	byName := make(map[string]gameconfig.BossDef, len(b.cfg.Roster))
	for i, def := range b.cfg.Roster {
		roster[i] = def.Name
		byName[def.Name] = def
	}
	name, err := b.recent.pick(ctx, b.deps.Rand, roster)
	if err != nil {
		return game.Reply{}, err
	}
	def := byName[name]

	rec, created, err := b.record.Create(ctx, b.cfg.Window, BossData{
		Name:       def.Name,
		MaxHP:      def.MaxHP,
		HP:         def.MaxHP,
		Weakness:   def.Weakness,
		Resistance: def.Resistance,
		Damage:     map[string]int{},
		Displays:   map[string]string{},
	})
	if err != nil {
		return game.Reply{}, err
	}
	if !created {
		return game.Rejected("A boss is already here!"), nil
	}
	announceStart(ctx, b.deps, b.Name(), rec.ID, map[string]interface{}{"boss": def.Name, "hp": def.MaxHP})
	return game.OK("👹 %s appears with %d HP! Weak to %s, resists %s. Attack in chat within %ds!",
		def.Name, def.MaxHP, def.Weakness, def.Resistance, cooldown.Seconds(b.cfg.Window)), nil
}

// Attack applies damage when message contains an attack word. Non-attacks
// and attacks during the user's cooldown return nil.
func (b *Boss) Attack(ctx context.Context, user, message string) (*game.Reply, error) {
	word, category, ok := b.classify(message)
	if !ok {
		return nil, nil
	}
	rec, err := b.record.Get(ctx)
	if err != nil || rec == nil || rec.Closed(b.deps.Clock()) || rec.Data.HP <= 0 {
		return nil, err
	}
	if _, ok, err := b.deps.Cooldowns.Acquire(ctx, user, attackFamily, b.cfg.AttackCooldown); err != nil || !ok {
		return nil, err
	}

	base := rng.Range(b.deps.Rand, b.cfg.MinDamage, b.cfg.MaxDamage)
	damage := ComputeDamage(base, category, rec.Data.Weakness, rec.Data.Resistance)
	display := b.deps.Display(ctx, user)

	applied := 0
	updated, err := b.record.Update(ctx, func(r *Record[BossData]) error {
		if r.Closed(b.deps.Clock()) || r.Data.HP <= 0 {
			return ErrNoEvent
		}
		applied = damage
		if applied > r.Data.HP {
			applied = r.Data.HP
		}
		r.Data.HP -= applied
		if r.Data.Damage == nil {
			r.Data.Damage = map[string]int{}
		}
		if r.Data.Displays == nil {
			r.Data.Displays = map[string]string{}
		}
		r.Data.Damage[user] += applied
		r.Data.Displays[user] = display
		return nil
	})
	if errors.Is(err, ErrNoEvent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tag := ""
	switch category {
	case updated.Data.Weakness:
		tag = " Super effective!"
	case updated.Data.Resistance:
		tag = " Resisted."
	}
	reply := game.OK("⚔️ %s hits %s with %s for %d!%s (%d/%d HP)",
		display, updated.Data.Name, word, applied, tag, updated.Data.HP, updated.Data.MaxHP)

	if updated.Data.HP <= 0 {
		out, err := b.resolve(ctx, updated)
		if err != nil {
			logrus.Errorf("boss %s: failed to settle defeat: %v", updated.ID, err)
		} else if out != nil {
			reply.Text += " " + out.Text
		}
	}
	return &reply, nil
}

func (b *Boss) Status(ctx context.Context) (game.Reply, error) {
	rec, err := b.record.Get(ctx)
	if err != nil {
		return game.Reply{}, err
	}
	if rec == nil {
		return game.NotFound("No boss is around."), nil
	}
	return game.OK("👹 %s: %d/%d HP, weak to %s, resists %s. %d attackers, %ds left.",
		rec.Data.Name, rec.Data.HP, rec.Data.MaxHP, rec.Data.Weakness, rec.Data.Resistance,
		len(rec.Data.Damage), cooldown.Seconds(rec.Remaining(b.deps.Clock()))), nil
}

// ResolveIfExpired lets a surviving boss escape once its window closes.
func (b *Boss) ResolveIfExpired(ctx context.Context) (*Outcome, error) {
	rec, err := b.record.Get(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Data.HP > 0 && !rec.Closed(b.deps.Clock()) {
		return nil, nil
	}
	return b.resolve(ctx, rec)
}

func (b *Boss) resolve(ctx context.Context, rec *Record[BossData]) (*Outcome, error) {
	won, err := b.record.Resolve(ctx, rec.ID)
	if err != nil || !won {
		return nil, err
	}

	out := &Outcome{Event: b.Name(), ID: rec.ID, Payouts: map[string]int64{}}
	if rec.Data.HP > 0 {
		out.Result = OutcomeEscaped
		out.Text = fmt.Sprintf("💨 %s escaped with %d/%d HP. No rewards this time.", rec.Data.Name, rec.Data.HP, rec.Data.MaxHP)
		announce(ctx, b.deps, out)
		return out, nil
	}

	rewards := SplitRewards(b.cfg.RewardPool, b.cfg.MinReward, rec.Data.Damage)
	users := make([]string, 0, len(rewards))
	for u := range rewards {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return rec.Data.Damage[users[i]] > rec.Data.Damage[users[j]] })

	parts := make([]string, 0, len(users))
	for _, u := range users {
		amt := rewards[u]
		if _, err := b.deps.Pay(ctx, b.Name(), u, amt); err != nil {
			logrus.Errorf("boss %s: failed to pay %s: %v", rec.ID, u, err)
			continue
		}
		out.Payouts[u] = amt
		display := rec.Data.Displays[u]
		if display == "" {
			display = u
		}
		parts = append(parts, fmt.Sprintf("%s +%d", display, amt))
	}
	out.Result = OutcomeDefeated
	out.Text = fmt.Sprintf("🏆 %s is defeated! Rewards: %s", rec.Data.Name, strings.Join(parts, ", "))
	announce(ctx, b.deps, out)
	return out, nil
}
