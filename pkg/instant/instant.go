// Package instant implements single-request wagers resolved by one random draw.
package instant

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/streamkit/tazos-engine/pkg/cards"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/rng"
)

// Games hosts every instant-outcome game.
type Games struct {
	deps *game.Deps
}

func New(deps *game.Deps) *Games {
	return &Games{deps: deps}
}

// settle pays a gross amount (zero on a loss) and updates the win streak.
// A push returns the stake without touching the streak.
func (g *Games) settle(ctx context.Context, feature, user string, bet, payout int64) (int64, string, error) {
	bal, err := g.deps.Pay(ctx, feature, user, payout)
	if err != nil {
		return 0, "", err
	}
	if payout == bet {
		return bal, "", nil
	}
	return bal, g.deps.RecordOutcome(ctx, user, payout > bet), nil
}

// CoinFlip is double-or-nothing on heads or tails. An empty call means heads.
func (g *Games) CoinFlip(ctx context.Context, user string, requested int64, call string) (game.Reply, error) {
	call = strings.ToLower(strings.TrimSpace(call))
	switch call {
	case "", "h", "heads":
		call = "heads"
	case "t", "tails":
		call = "tails"
	default:
		return game.Rejected("@%s call heads or tails.", user), nil
	}

	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureCoinflip, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	side := "heads"
	if g.deps.Rand.Intn(2) == 1 {
		side = "tails"
	}

	var payout int64
	if side == call {
		payout = bet.Bet * 2
	}
	bal, suffix, err := g.settle(ctx, gameconfig.FeatureCoinflip, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	if payout > 0 {
		return game.OK("@%s 🪙 %s! You win %d tazos (balance: %d).%s", user, side, payout, bal, suffix), nil
	}
	return game.OK("@%s 🪙 %s. You lose %d tazos (balance: %d).", user, side, bet.Bet, bal), nil
}

// Roulette spins a 0-36 wheel. Numbers pay 36x, colors and parity pay 2x.
func (g *Games) Roulette(ctx context.Context, user string, requested int64, choice game.RouletteBet) (game.Reply, error) {
	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureRoulette, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	pocket := g.deps.Rand.Intn(37)
	var payout int64
	if choice.Wins(pocket) {
		payout = bet.Bet * choice.Multiplier()
	}
	bal, suffix, err := g.settle(ctx, gameconfig.FeatureRoulette, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	landed := fmt.Sprintf("%d %s", pocket, game.PocketColor(pocket))
	if payout > 0 {
		return game.OK("@%s 🎡 %s! Your %s bet wins %d tazos (balance: %d).%s", user, landed, choice, payout, bal, suffix), nil
	}
	return game.OK("@%s 🎡 %s. Your %s bet loses %d tazos (balance: %d).", user, landed, choice, bet.Bet, bal), nil
}

// Dice rolls one die: high wins on 4-6, low on 1-3.
func (g *Games) Dice(ctx context.Context, user string, requested int64, call string) (game.Reply, error) {
	var high bool
	switch strings.ToLower(strings.TrimSpace(call)) {
	case "high", "h", "hi":
		high = true
	case "low", "l", "lo":
	default:
		return game.Rejected("@%s call high or low.", user), nil
	}

	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureDice, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	roll := rng.Range(g.deps.Rand, 1, 6)
	var payout int64
	if (roll >= 4) == high {
		payout = bet.Bet * 2
	}
	bal, suffix, err := g.settle(ctx, gameconfig.FeatureDice, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	if payout > 0 {
		return game.OK("@%s 🎲 Rolled %d! You win %d tazos (balance: %d).%s", user, roll, payout, bal, suffix), nil
	}
	return game.OK("@%s 🎲 Rolled %d. You lose %d tazos (balance: %d).", user, roll, bet.Bet, bal), nil
}

// Slots spins three weighted reels. Three of a kind pays the symbol's
// multiplier; any pair pays half of the paired symbol's multiplier.
func (g *Games) Slots(ctx context.Context, user string, requested int64) (game.Reply, error) {
	symbols := g.deps.Config.Slots.Symbols
	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureSlots, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	reels := [3]gameconfig.SlotSymbol{}
	for i := range reels {
		reels[i] = pickSymbol(g.deps.Rand, symbols)
	}
	payout := slotPayout(reels, bet.Bet)

	bal, suffix, err := g.settle(ctx, gameconfig.FeatureSlots, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	line := fmt.Sprintf("[ %s | %s | %s ]", reels[0].Symbol, reels[1].Symbol, reels[2].Symbol)
	if payout > 0 {
		return game.OK("@%s 🎰 %s You win %d tazos (balance: %d).%s", user, line, payout, bal, suffix), nil
	}
	return game.OK("@%s 🎰 %s No match, you lose %d tazos (balance: %d).", user, line, bet.Bet, bal), nil
}

func slotPayout(reels [3]gameconfig.SlotSymbol, bet int64) int64 {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a.Symbol == b.Symbol && b.Symbol == c.Symbol:
		return bet * a.Multiplier
	case a.Symbol == b.Symbol || a.Symbol == c.Symbol:
		return bet * a.Multiplier / 2
	case b.Symbol == c.Symbol:
		return bet * b.Multiplier / 2
	}
	return 0
}

func pickSymbol(src rng.Source, symbols []gameconfig.SlotSymbol) gameconfig.SlotSymbol {
	total := 0
	for _, s := range symbols {
		total += s.Weight
	}
	n := src.Intn(total)
	for _, s := range symbols {
		if n < s.Weight {
			return s
		}
		n -= s.Weight
	}
	return symbols[len(symbols)-1]
}

// CrashPoint maps a uniform draw r in [0,1) to a heavy-tailed multiplier, floored at 1.0.
func CrashPoint(r float64) float64 {
	crash := math.Floor(100/(1-r*0.97)) / 100
	if crash < 1 {
		return 1
	}
	return crash
}

// Crash wins bet x target when the drawn crash point reaches the target.
// A zero target uses the configured default.
func (g *Games) Crash(ctx context.Context, user string, requested int64, target float64) (game.Reply, error) {
	cfg := g.deps.Config.Crash
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return game.Rejected("@%s cash-out target must be a number like 2x.", user), nil
	}
	if target == 0 {
		target = cfg.DefaultTarget
	}
	if target < cfg.MinTarget || (cfg.MaxTarget > 0 && target > cfg.MaxTarget) {
		return game.Rejected("@%s cash-out target must be between %.2fx and %.2fx.", user, cfg.MinTarget, cfg.MaxTarget), nil
	}

	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureCrash, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	crash := CrashPoint(g.deps.Rand.Float64())
	var payout int64
	if crash >= target {
		payout = int64(math.Floor(float64(bet.Bet) * target))
	}
	bal, suffix, err := g.settle(ctx, gameconfig.FeatureCrash, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	if payout > 0 {
		return game.OK("@%s 🚀 Crashed at %.2fx, you cashed out at %.2fx for %d tazos (balance: %d).%s",
			user, crash, target, payout, bal, suffix), nil
	}
	return game.OK("@%s 💥 Crashed at %.2fx before %.2fx. You lose %d tazos (balance: %d).",
		user, crash, target, bet.Bet, bal), nil
}

// HighCard draws one card each for the player and the house; ties push.
func (g *Games) HighCard(ctx context.Context, user string, requested int64) (game.Reply, error) {
	bet, reply, err := g.deps.StartBet(ctx, gameconfig.FeatureHighCard, user, requested)
	if err != nil || reply != nil {
		return deref(reply), err
	}

	deck := cards.NewDeck()
	i := g.deps.Rand.Intn(len(deck))
	player := deck[i]
	deck = append(deck[:i], deck[i+1:]...)
	house := deck[g.deps.Rand.Intn(len(deck))]

	var payout int64
	switch {
	case player.Order() > house.Order():
		payout = bet.Bet * 2
	case player.Order() == house.Order():
		payout = bet.Bet
	}
	bal, suffix, err := g.settle(ctx, gameconfig.FeatureHighCard, user, bet.Bet, payout)
	if err != nil {
		return game.Reply{}, err
	}
	switch {
	case payout > bet.Bet:
		return game.OK("@%s 🃏 %s vs %s. You win %d tazos (balance: %d).%s", user, player, house, payout, bal, suffix), nil
	case payout == bet.Bet:
		return game.OK("@%s 🃏 %s vs %s. Tie, your bet is returned (balance: %d).", user, player, house, bal), nil
	}
	return game.OK("@%s 🃏 %s vs %s. You lose %d tazos (balance: %d).", user, player, house, bet.Bet, bal), nil
}

func deref(r *game.Reply) game.Reply {
	if r == nil {
		return game.Reply{}
	}
	return *r
}
