// Package blackjack runs per-user card-game sessions: deal, hit, stand,
// double and split against a dealer who draws to 17.
package blackjack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/streamkit/tazos-engine/pkg/cards"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

const (
	feature         = gameconfig.FeatureBlackjack
	dealerThreshold = 17
)

// Game is the blackjack table.
type Game struct {
	deps    *game.Deps
	timeout time.Duration
	shuffle func() []cards.Card
}

func New(deps *game.Deps) *Game {
	g := &Game{deps: deps, timeout: deps.Config.Blackjack.SessionTimeout}
	if g.timeout <= 0 {
		g.timeout = 90 * time.Second
	}
	g.shuffle = func() []cards.Card { return cards.NewShuffledDeck(deps.Rand) }
	return g
}

// Deal starts a hand. A natural 21 resolves immediately without a session.
func (g *Game) Deal(ctx context.Context, user string, requested int64) (game.Reply, error) {
	if !g.deps.Enabled(ctx, feature) {
		return game.Disabled(feature), nil
	}
	existing, err := g.load(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	if existing != nil {
		return game.Rejected("@%s you already have a hand in play: %s. Hit or stand first.", user, existing.activeHand()), nil
	}

	bet, reply, err := g.deps.StartBet(ctx, feature, user, requested)
	if err != nil {
		return game.Reply{}, err
	}
	if reply != nil {
		return *reply, nil
	}

	s := &Session{
		Shoe:      g.shuffle(),
		Bet:       bet.Bet,
		Status:    StatusPlaying,
		CreatedAt: g.deps.Clock().UnixMilli(),
	}
	s.Player = append(s.Player, s.draw(g))
	s.Dealer = append(s.Dealer, s.draw(g))
	s.Player = append(s.Player, s.draw(g))
	s.Dealer = append(s.Dealer, s.draw(g))

	if s.Player.IsNatural() {
		s.Status = StatusBlackjack
		if s.Dealer.IsNatural() {
			if _, err := g.deps.Pay(ctx, feature, user, s.Bet); err != nil {
				return game.Reply{}, err
			}
			return game.OK("@%s 🃏 %s Blackjack! Dealer also has %s. Push, your %d tazos are returned.",
				user, s.Player, s.Dealer, s.Bet), nil
		}
		payout := s.Bet * 5 / 2
		bal, err := g.deps.Pay(ctx, feature, user, payout)
		if err != nil {
			return game.Reply{}, err
		}
		suffix := g.deps.RecordOutcome(ctx, user, true)
		return game.OK("@%s 🃏 %s BLACKJACK! You win %d tazos (balance: %d).%s",
			user, s.Player, payout, bal, suffix), nil
	}

	if err := g.save(ctx, user, s); err != nil {
		return game.Reply{}, err
	}
	return game.OK("@%s 🃏 Bet %d. Your hand: %s | Dealer shows %s. !hit, !stand, !double or !split.",
		user, s.Bet, s.Player, s.Dealer[0]), nil
}

// Hit draws one card into the active hand.
func (g *Game) Hit(ctx context.Context, user string) (game.Reply, error) {
	s, err := g.load(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	if s == nil {
		return noSession(user), nil
	}

	hand := s.activeHand()
	*hand = append(*hand, s.draw(g))

	if !hand.IsBust() {
		if err := g.save(ctx, user, s); err != nil {
			return game.Reply{}, err
		}
		return game.OK("@%s 🃏 %s%s | Dealer shows %s.", user, handLabel(s), *hand, s.Dealer[0]), nil
	}

	switch {
	case s.IsSplit && !s.Hand1Done:
		s.Hand1Done = true
		if err := g.save(ctx, user, s); err != nil {
			return game.Reply{}, err
		}
		return game.OK("@%s 🃏 Hand 1 busts with %s. Now playing hand 2: %s.", user, s.Player, s.SplitHand), nil
	case s.IsSplit && !s.Player.IsBust():
		return g.finish(ctx, user, s)
	default:
		s.Status = StatusBust
		if err := g.discard(ctx, user); err != nil {
			return game.Reply{}, err
		}
		suffix := g.deps.RecordOutcome(ctx, user, false)
		return game.OK("@%s 💥 Bust with %s! You lose %d tazos.%s", user, *hand, s.totalStake(), suffix), nil
	}
}

// Stand ends the active hand; with a split pending it moves play to hand 2.
func (g *Game) Stand(ctx context.Context, user string) (game.Reply, error) {
	s, err := g.load(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	if s == nil {
		return noSession(user), nil
	}
	if s.IsSplit && !s.Hand1Done {
		s.Hand1Done = true
		if err := g.save(ctx, user, s); err != nil {
			return game.Reply{}, err
		}
		return game.OK("@%s 🃏 Hand 1 stands on %s. Now playing hand 2: %s.", user, s.Player, s.SplitHand), nil
	}
	s.Status = StatusStand
	return g.finish(ctx, user, s)
}

// Double doubles the bet, draws exactly one card and stands.
func (g *Game) Double(ctx context.Context, user string) (game.Reply, error) {
	s, err := g.load(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	if s == nil {
		return noSession(user), nil
	}
	if s.IsSplit || len(s.Player) != 2 {
		return game.Rejected("@%s you can only double down on your first two cards.", user), nil
	}

	res, err := g.deps.Ledger.Deduct(ctx, user, s.Bet)
	if err != nil {
		return game.Reply{}, err
	}
	if !res.OK {
		return game.Insufficient("@%s you need %d more tazos to double (balance: %d).", user, s.Bet, res.Balance), nil
	}
	g.deps.Metrics.Bet(feature, s.Bet)

	s.Bet *= 2
	s.Player = append(s.Player, s.draw(g))
	s.Status = StatusStand
	return g.finish(ctx, user, s)
}

// Split turns a pair into two hands with independent bets.
func (g *Game) Split(ctx context.Context, user string) (game.Reply, error) {
	s, err := g.load(ctx, user)
	if err != nil {
		return game.Reply{}, err
	}
	if s == nil {
		return noSession(user), nil
	}
	if s.IsSplit || len(s.Player) != 2 || s.Player[0].Rank != s.Player[1].Rank {
		return game.Rejected("@%s you can only split a pair on your first two cards.", user), nil
	}

	res, err := g.deps.Ledger.Deduct(ctx, user, s.Bet)
	if err != nil {
		return game.Reply{}, err
	}
	if !res.OK {
		return game.Insufficient("@%s you need %d more tazos to split (balance: %d).", user, s.Bet, res.Balance), nil
	}
	g.deps.Metrics.Bet(feature, s.Bet)

	s.IsSplit = true
	s.SplitBet = s.Bet
	s.SplitHand = cards.Hand{s.Player[1]}
	s.Player = cards.Hand{s.Player[0]}
	s.Player = append(s.Player, s.draw(g))
	s.SplitHand = append(s.SplitHand, s.draw(g))

	if err := g.save(ctx, user, s); err != nil {
		return game.Reply{}, err
	}
	return game.OK("@%s ✂️ Split! Hand 1: %s | Hand 2: %s | Dealer shows %s. Playing hand 1.",
		user, s.Player, s.SplitHand, s.Dealer[0]), nil
}

// Current returns the user's live session, if any.
func (g *Game) Current(ctx context.Context, user string) (*Session, error) {
	return g.load(ctx, user)
}

// finish plays the dealer, settles every hand and ends the session.
func (g *Game) finish(ctx context.Context, user string, s *Session) (game.Reply, error) {
	s.Status = StatusDealerTurn

	type played struct {
		hand cards.Hand
		bet  int64
	}
	hands := []played{{s.Player, s.Bet}}
	if s.IsSplit {
		hands = append(hands, played{s.SplitHand, s.SplitBet})
	}

	anyLive := false
	for _, h := range hands {
		if !h.hand.IsBust() {
			anyLive = true
		}
	}
	if anyLive {
		for s.Dealer.Total() < dealerThreshold {
			s.Dealer = append(s.Dealer, s.draw(g))
		}
	}

	dealer := s.Dealer.Total()
	var payout int64
	results := make([]string, 0, len(hands))
	for i, h := range hands {
		label := ""
		if s.IsSplit {
			label = fmt.Sprintf("Hand %d ", i+1)
		}
		player := h.hand.Total()
		switch {
		case h.hand.IsBust():
			results = append(results, fmt.Sprintf("%s%s bust", label, h.hand))
		case s.Dealer.IsBust() || player > dealer:
			payout += h.bet * 2
			results = append(results, fmt.Sprintf("%s%s wins %d", label, h.hand, h.bet*2))
		case player < dealer:
			results = append(results, fmt.Sprintf("%s%s loses", label, h.hand))
		default:
			payout += h.bet
			results = append(results, fmt.Sprintf("%s%s push", label, h.hand))
		}
	}

	if err := g.discard(ctx, user); err != nil {
		return game.Reply{}, err
	}
	bal, err := g.deps.Pay(ctx, feature, user, payout)
	if err != nil {
		return game.Reply{}, err
	}

	stake := s.totalStake()
	suffix := ""
	switch {
	case payout > stake:
		suffix = g.deps.RecordOutcome(ctx, user, true)
	case payout < stake:
		suffix = g.deps.RecordOutcome(ctx, user, false)
	}

	dealerText := s.Dealer.String()
	if s.Dealer.IsBust() {
		dealerText += " bust"
	}
	return game.OK("@%s 🃏 Dealer %s. %s. Balance: %d.%s",
		user, dealerText, strings.Join(results, ", "), bal, suffix), nil
}

func handLabel(s *Session) string {
	if !s.IsSplit {
		return ""
	}
	if s.onSecondHand() {
		return "Hand 2: "
	}
	return "Hand 1: "
}

func noSession(user string) game.Reply {
	return game.NotFound("@%s you have no blackjack hand in play. Start one with !bj <amount>.", user)
}
