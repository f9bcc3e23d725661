// Package handler turns chat commands and chat messages into calls on the
// ledger, games and community events.
package handler

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/blackjack"
	"github.com/streamkit/tazos-engine/pkg/common"
	"github.com/streamkit/tazos-engine/pkg/event"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/instant"
	"github.com/streamkit/tazos-engine/pkg/leaderboard"
	"github.com/streamkit/tazos-engine/pkg/names"
	"github.com/streamkit/tazos-engine/pkg/wager"
)

const apologyText = "Something went wrong on our side, please try again in a moment."

// Games holds one instance of every game and event.
type Games struct {
	Blackjack *blackjack.Game
	Instant   *instant.Games
	Duels     *wager.Duels
	Transfers *wager.Transfers
	Heist     *event.Heist
	Raffle    *event.Raffle
	Drop      *event.Drop
	Challenge *event.Challenge
	Boss      *event.Boss
	Events    *event.Registry
}

// NewGames builds every game on deps and registers the community events.
func NewGames(deps *game.Deps) (*Games, error) {
	g := &Games{
		Blackjack: blackjack.New(deps),
		Instant:   instant.New(deps),
		Duels:     wager.NewDuels(deps),
		Transfers: wager.NewTransfers(deps),
		Heist:     event.NewHeist(deps),
		Raffle:    event.NewRaffle(deps),
		Drop:      event.NewDrop(deps),
		Challenge: event.NewChallenge(deps),
		Boss:      event.NewBoss(deps),
		Events:    event.NewRegistry(),
	}
	for _, e := range []event.Event{g.Heist, g.Raffle, g.Drop, g.Challenge, g.Boss} {
		if err := g.Events.Register(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Message is a plain chat line.
type Message struct {
	User      string
	Text      string
	Moderator bool
}

// Dispatcher routes commands to games.
type Dispatcher struct {
	deps     *game.Deps
	games    *Games
	board    *leaderboard.Board
	commands *Registry
}

func NewDispatcher(deps *game.Deps, games *Games, board *leaderboard.Board) (*Dispatcher, error) {
	d := &Dispatcher{deps: deps, games: games, board: board, commands: NewRegistry()}
	if err := d.registerCommands(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) Commands() *Registry { return d.commands }

// Execute runs one command for user. Store failures never reach the caller:
// they are logged, counted, and answered with an apology.
func (d *Dispatcher) Execute(ctx context.Context, user, command string, args []string, moderator bool) game.Reply {
	scope := common.NewScope(ctx, "Dispatcher.Execute")
	defer scope.Finish()

	command = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(command), "!"))
	cmd := d.commands.Get(command)
	if cmd == nil {
		return game.NotFound("Unknown command %q.", command)
	}
	inv, ok := d.invocation(scope, user, args, moderator)
	if !ok {
		return game.Rejected("Missing user.")
	}
	if cmd.ModOnly && !inv.Moderator {
		return game.Rejected("@%s only moderators can use !%s.", inv.Display, cmd.Name)
	}

	scope.Tag("command", cmd.Name)
	scope.Tag("user", inv.User)
	reply, err := cmd.Run(scope.Ctx, scope, inv)
	if err != nil {
		return d.apologize(scope, cmd.Name, err)
	}
	scope.Log.Debugf("%s by %s: %s", cmd.Name, inv.User, reply.Status)
	return reply
}

// ChatMessage feeds a chat line to the participation streak and any active
// keyword, challenge or boss event. Lines starting with "!" are run as commands.
// It returns the replies worth posting back to chat.
func (d *Dispatcher) ChatMessage(ctx context.Context, msg Message) []game.Reply {
	if name, args, ok := ParseCommand(msg.Text); ok {
		d.touch(ctx, names.Normalize(msg.User))
		return []game.Reply{d.Execute(ctx, msg.User, name, args, msg.Moderator)}
	}

	scope := common.NewScope(ctx, "Dispatcher.ChatMessage")
	defer scope.Finish()
	ctx = scope.Ctx

	inv, ok := d.invocation(scope, msg.User, nil, msg.Moderator)
	if !ok {
		return nil
	}
	var replies []game.Reply
	if r := d.touch(ctx, inv.User); r != nil {
		replies = append(replies, *r)
	}

	if _, err := d.games.Raffle.Enter(ctx, inv.User, msg.Text); err != nil {
		d.apologize(scope, "raffle_enter", err)
	}
	if _, err := d.games.Challenge.Count(ctx, inv.User, msg.Text); err != nil {
		d.apologize(scope, "challenge_count", err)
	}
	if r, err := d.games.Drop.Claim(ctx, inv.User, msg.Text); err != nil {
		d.apologize(scope, "drop_claim", err)
	} else if r != nil {
		replies = append(replies, *r)
	}
	if r, err := d.games.Boss.Attack(ctx, inv.User, msg.Text); err != nil {
		d.apologize(scope, "boss_attack", err)
	} else if r != nil {
		replies = append(replies, *r)
	}
	return replies
}

// ParseCommand splits "!name arg1 arg2" into its parts.
func ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, "!"))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (d *Dispatcher) invocation(scope *common.Scope, user string, args []string, moderator bool) (Invocation, bool) {
	display := strings.TrimPrefix(strings.TrimSpace(user), "@")
	inv := Invocation{User: names.Normalize(display), Display: display, Args: args, Moderator: moderator}
	if inv.User == "" {
		return inv, false
	}
	if d.deps.Names != nil {
		if err := d.deps.Names.Remember(scope.Ctx, display); err != nil {
			scope.Log.Warnf("%v", err)
		}
	}
	return inv, true
}

// touch credits daily participation and returns a reply when a milestone pays.
func (d *Dispatcher) touch(ctx context.Context, user string) *game.Reply {
	if d.deps.Streaks == nil || user == "" || !d.deps.Enabled(ctx, gameconfig.FeatureStreaks) {
		return nil
	}
	res, err := d.deps.Streaks.Touch(ctx, user)
	if err != nil {
		logrus.Errorf("failed to record participation for %s: %v", user, err)
		d.deps.Metrics.StoreError("streak_touch")
		return nil
	}
	if res.Bonus <= 0 {
		return nil
	}
	r := game.OK("📅 @%s is on a %d day streak! +%d tazos", d.deps.Display(ctx, user), res.Count, res.Bonus)
	return &r
}

func (d *Dispatcher) apologize(scope *common.Scope, op string, err error) game.Reply {
	scope.TraceError(err)
	scope.Log.Errorf("%s failed: %v", op, err)
	d.deps.Metrics.StoreError(op)
	return game.Rejected(apologyText)
}
