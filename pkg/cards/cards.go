// Package cards models a standard 52-card deck and blackjack hand values.
package cards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/streamkit/tazos-engine/pkg/rng"
)

var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suits = []string{"♠", "♥", "♦", "♣"}

// Card is a rank and suit, serialized compactly in session records.
type Card struct {
	Rank string `json:"r"`
	Suit string `json:"s"`
}

func (c Card) String() string { return c.Rank + c.Suit }

// Value is the card's blackjack value with aces counted as 11.
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J":
		return 10
	}
	n, _ := strconv.Atoi(c.Rank)
	return n
}

// Order ranks cards for high-card comparisons, aces high.
func (c Card) Order() int {
	for i, r := range ranks {
		if r == c.Rank {
			if i == 0 {
				return 14
			}
			return i + 1
		}
	}
	return 0
}

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, len(ranks)*len(suits))
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// NewShuffledDeck returns a freshly shuffled deck.
func NewShuffledDeck(src rng.Source) []Card {
	deck := NewDeck()
	rng.Shuffle(src, len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// Hand is an ordered set of cards.
type Hand []Card

// Total counts aces as 11 unless that busts, then as 1 for as many as needed.
func (h Hand) Total() int {
	total, aces := 0, 0
	for _, c := range h {
		total += c.Value()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func (h Hand) IsNatural() bool { return len(h) == 2 && h.Total() == 21 }

// IsBust reports a total over 21.
func (h Hand) IsBust() bool { return h.Total() > 21 }

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return fmt.Sprintf("[%s] (%d)", strings.Join(parts, " "), h.Total())
}
