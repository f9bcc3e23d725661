package blackjack

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cards"
	"github.com/streamkit/tazos-engine/pkg/store"
)

// Status is the session state.
type Status string

const (
	StatusPlaying    Status = "playing"
	StatusStand      Status = "stand"
	StatusBust       Status = "bust"
	StatusBlackjack  Status = "blackjack"
	StatusDealerTurn Status = "dealer_turn"
)

const ttlSlack = 10 * time.Second

func sessionKey(user string) string { return store.Key("blackjack", user) }

// Session is one user's hand in progress.
type Session struct {
	Player    cards.Hand   `json:"player"`
	SplitHand cards.Hand   `json:"splitHand,omitempty"`
	Dealer    cards.Hand   `json:"dealer"`
	Shoe      []cards.Card `json:"shoe"`
	Bet       int64        `json:"bet"`
	SplitBet  int64        `json:"splitBet,omitempty"`
	Status    Status       `json:"status"`
	IsSplit   bool         `json:"isSplit"`
	Hand1Done bool         `json:"hand1Done"`
	CreatedAt int64        `json:"createdAt"`
}

// activeHand returns the hand hits go to.
func (s *Session) activeHand() *cards.Hand {
	if s.IsSplit && s.Hand1Done {
		return &s.SplitHand
	}
	return &s.Player
}

// onSecondHand reports whether play has moved to the split hand.
func (s *Session) onSecondHand() bool { return s.IsSplit && s.Hand1Done }

func (s *Session) draw(g *Game) cards.Card {
	if len(s.Shoe) == 0 {
		s.Shoe = g.shuffle()
	}
	c := s.Shoe[0]
	s.Shoe = s.Shoe[1:]
	return c
}

func (s *Session) totalStake() int64 { return s.Bet + s.SplitBet }

// load returns the user's live session, deleting one past the abandonment timeout.
func (g *Game) load(ctx context.Context, user string) (*Session, error) {
	var s Session
	found, err := store.GetJSON(ctx, g.deps.Store, sessionKey(user), &s)
	if err != nil || !found {
		return nil, err
	}
	age := g.deps.Clock().Sub(time.UnixMilli(s.CreatedAt))
	if age > g.timeout {
		logrus.Infof("blackjack: discarding abandoned session for %s (age %s)", user, age)
		if err := store.Delete(ctx, g.deps.Store, sessionKey(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &s, nil
}

func (g *Game) save(ctx context.Context, user string, s *Session) error {
	remaining := g.timeout - g.deps.Clock().Sub(time.UnixMilli(s.CreatedAt))
	if remaining <= 0 {
		remaining = time.Second
	}
	return store.SetJSON(ctx, g.deps.Store, sessionKey(user), s, remaining+ttlSlack)
}

func (g *Game) discard(ctx context.Context, user string) error {
	return store.Delete(ctx, g.deps.Store, sessionKey(user))
}
