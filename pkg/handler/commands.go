package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/streamkit/tazos-engine/pkg/common"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/leaderboard"
	"github.com/streamkit/tazos-engine/pkg/names"
)

const (
	defaultTop = 5
	maxTop     = 10
)

// starter is the moderator-triggered surface of keyword and boss events.
type starter interface {
	Start(ctx context.Context) (game.Reply, error)
	Status(ctx context.Context) (game.Reply, error)
}

func (d *Dispatcher) registerCommands() error {
	g := d.games
	cmds := []*Command{
		{Name: "balance", Aliases: []string{"bal", "tazos"}, Usage: "!balance [user]", Run: d.balance},
		{Name: "top", Aliases: []string{"leaderboard"}, Usage: "!top [n]", Run: d.top},
		{Name: "streak", Usage: "!streak", Run: d.streak},
		{Name: "help", Aliases: []string{"commands"}, Usage: "!help", Run: d.help},

		{Name: "bj", Aliases: []string{"blackjack"}, Usage: "!bj <amount>", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			return g.Blackjack.Deal(ctx, inv.User, amt)
		})},
		{Name: "hit", Usage: "!hit", Run: d.session(g.Blackjack.Hit)},
		{Name: "stand", Usage: "!stand", Run: d.session(g.Blackjack.Stand)},
		{Name: "double", Usage: "!double", Run: d.session(g.Blackjack.Double)},
		{Name: "split", Usage: "!split", Run: d.session(g.Blackjack.Split)},

		{Name: "flip", Aliases: []string{"coinflip"}, Usage: "!flip <amount> [heads|tails]", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			return g.Instant.CoinFlip(ctx, inv.User, amt, inv.Arg(1))
		})},
		{Name: "roulette", Usage: "!roulette <amount> <0-36|red|black|odd|even>", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			choice, err := game.ParseRouletteBet(inv.Arg(1))
			if err != nil {
				return game.Rejected("@%s bet on a number 0-36, red, black, odd or even.", inv.User), nil
			}
			return g.Instant.Roulette(ctx, inv.User, amt, choice)
		})},
		{Name: "dice", Usage: "!dice <amount> <high|low>", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			return g.Instant.Dice(ctx, inv.User, amt, inv.Arg(1))
		})},
		{Name: "slots", Usage: "!slots <amount>", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			return g.Instant.Slots(ctx, inv.User, amt)
		})},
		{Name: "crash", Usage: "!crash <amount> [target]", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			var target float64
			if arg := strings.TrimSuffix(strings.ToLower(inv.Arg(1)), "x"); arg != "" {
				t, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return game.Rejected("@%s %q isn't a valid cash-out target.", inv.User, inv.Arg(1)), nil
				}
				target = t
			}
			return g.Instant.Crash(ctx, inv.User, amt, target)
		})},
		{Name: "highcard", Usage: "!highcard <amount>", Run: d.bet(false, func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error) {
			return g.Instant.HighCard(ctx, inv.User, amt)
		})},

		{Name: "duel", Usage: "!duel <user> <amount>", Run: d.targeted(g.Duels.Challenge)},
		{Name: "accept", Usage: "!accept", Run: d.session(g.Duels.Accept)},
		{Name: "deny", Aliases: []string{"decline"}, Usage: "!deny", Run: d.session(g.Duels.Deny)},
		{Name: "gift", Aliases: []string{"give"}, Usage: "!gift <user> <amount>", Run: d.targeted(g.Transfers.Gift)},
		{Name: "request", Usage: "!request <user> <amount>", Run: d.targeted(g.Transfers.Request)},
		{Name: "acceptrequest", Usage: "!acceptrequest", Run: d.session(g.Transfers.AcceptRequest)},
		{Name: "denyrequest", Usage: "!denyrequest", Run: d.session(g.Transfers.DenyRequest)},

		{Name: "heist", Usage: "!heist [amount]", Run: d.heist},
		{Name: "raffle", Usage: "!raffle [start]", Run: d.event(g.Raffle)},
		{Name: "drop", Usage: "!drop [start]", Run: d.event(g.Drop)},
		{Name: "challenge", Usage: "!challenge [start]", Run: d.event(g.Challenge)},
		{Name: "boss", Usage: "!boss [start]", Run: d.event(g.Boss)},

		{Name: "feature", Usage: "!feature <name> <on|off>", ModOnly: true, Run: d.feature},
		{Name: "resetbalances", Usage: "!resetbalances", ModOnly: true, Run: d.resetBalances},
	}
	for _, c := range cmds {
		if err := d.commands.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// amount parses a wager argument. An empty argument means the minimum bet
// unless the command requires an explicit amount.
func (d *Dispatcher) amount(ctx context.Context, inv Invocation, arg string, required bool) (int64, *game.Reply, error) {
	if arg == "" {
		if required {
			r := game.Rejected("@%s how many tazos?", inv.User)
			return 0, &r, nil
		}
		return d.deps.Ledger.MinBet(), nil, nil
	}
	bal, err := d.deps.Ledger.GetBalance(ctx, inv.User)
	if err != nil {
		return 0, nil, err
	}
	amt, err := game.ParseAmount(arg, bal)
	if err != nil {
		r := game.Rejected("@%s %q isn't a valid amount.", inv.User, arg)
		return 0, &r, nil
	}
	return amt, nil, nil
}

func (d *Dispatcher) bet(required bool, fn func(ctx context.Context, inv Invocation, amt int64) (game.Reply, error)) RunFunc {
	return func(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
		amt, reply, err := d.amount(ctx, inv, inv.Arg(0), required)
		if err != nil || reply != nil {
			return derefReply(reply), err
		}
		return fn(ctx, inv, amt)
	}
}

func (d *Dispatcher) session(fn func(ctx context.Context, user string) (game.Reply, error)) RunFunc {
	return func(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
		return fn(ctx, inv.User)
	}
}

// targeted runs "<user> <amount>" commands.
func (d *Dispatcher) targeted(fn func(ctx context.Context, from, to string, amount int64) (game.Reply, error)) RunFunc {
	return func(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
		target := names.Normalize(inv.Arg(0))
		if target == "" {
			return game.Rejected("@%s who?", inv.User), nil
		}
		amt, reply, err := d.amount(ctx, inv, inv.Arg(1), true)
		if err != nil || reply != nil {
			return derefReply(reply), err
		}
		return fn(ctx, inv.User, target, amt)
	}
}

func (d *Dispatcher) event(e starter) RunFunc {
	return func(ctx context.Context, scope *common.Scope, inv Invocation) (game.Reply, error) {
		if !strings.EqualFold(inv.Arg(0), "start") {
			return e.Status(ctx)
		}
		if !inv.Moderator {
			return game.Rejected("@%s only moderators can start events.", inv.User), nil
		}
		scope.TraceEvent("event start requested")
		return e.Start(ctx)
	}
}

func (d *Dispatcher) heist(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	if inv.Arg(0) == "" {
		return d.games.Heist.Status(ctx)
	}
	amt, reply, err := d.amount(ctx, inv, inv.Arg(0), true)
	if err != nil || reply != nil {
		return derefReply(reply), err
	}
	return d.games.Heist.Join(ctx, inv.User, amt)
}

func (d *Dispatcher) balance(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	user := inv.User
	if arg := names.Normalize(inv.Arg(0)); arg != "" {
		user = arg
	}
	bal, err := d.deps.Ledger.GetBalance(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	return game.OK("💰 %s has %d tazos.", d.deps.Display(ctx, user), bal), nil
}

func (d *Dispatcher) top(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	n := defaultTop
	if v, err := strconv.Atoi(inv.Arg(0)); err == nil && v > 0 {
		n = v
	}
	if n > maxTop {
		n = maxTop
	}
	entries, err := d.board.Top(ctx, n, nil)
	if err != nil {
		return game.Reply{}, err
	}
	return game.OK("%s", leaderboard.Format(entries)), nil
}

func (d *Dispatcher) streak(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	if d.deps.Streaks == nil || !d.deps.Enabled(ctx, gameconfig.FeatureStreaks) {
		return game.Disabled(gameconfig.FeatureStreaks), nil
	}
	wins, err := d.deps.Streaks.WinStreak(ctx, inv.User)
	if err != nil {
		return game.Reply{}, err
	}
	daily, err := d.deps.Streaks.DailyStreak(ctx, inv.User)
	if err != nil {
		return game.Reply{}, err
	}
	return game.OK("🔥 @%s win streak: %d | 📅 daily streak: %d days", inv.Display, wins, daily.Count), nil
}

func (d *Dispatcher) help(_ context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	var usages []string
	for _, c := range d.commands.All() {
		if c.ModOnly && !inv.Moderator {
			continue
		}
		usages = append(usages, c.Usage)
	}
	return game.OK("Commands: %s", strings.Join(usages, " ")), nil
}

func (d *Dispatcher) feature(ctx context.Context, _ *common.Scope, inv Invocation) (game.Reply, error) {
	name := strings.ToLower(inv.Arg(0))
	var on bool
	switch strings.ToLower(inv.Arg(1)) {
	case "on", "enable", "true":
		on = true
	case "off", "disable", "false":
	default:
		return game.Rejected("Usage: !feature <name> <on|off>"), nil
	}
	if _, known := d.deps.Config.Features[name]; !known {
		return game.NotFound("Unknown feature %q.", name), nil
	}
	if d.deps.Settings == nil {
		return game.Rejected("Feature flags are read-only here."), nil
	}
	if err := d.deps.Settings.SetEnabled(ctx, name, on); err != nil {
		return game.Reply{}, err
	}
	state := "disabled"
	if on {
		state = "enabled"
	}
	return game.OK("%s is now %s.", name, state), nil
}

func (d *Dispatcher) resetBalances(ctx context.Context, _ *common.Scope, _ Invocation) (game.Reply, error) {
	if err := d.deps.Ledger.Reset(ctx); err != nil {
		return game.Reply{}, err
	}
	return game.OK("All tazo balances have been reset. Fresh start!"), nil
}

func derefReply(r *game.Reply) game.Reply {
	if r == nil {
		return game.Reply{}
	}
	return *r
}
