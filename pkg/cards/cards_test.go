package cards

import (
	"testing"

	"github.com/streamkit/tazos-engine/pkg/rng"
)

func h(ranks ...string) Hand {
	out := make(Hand, len(ranks))
	for i, r := range ranks {
		out[i] = Card{Rank: r, Suit: "♠"}
	}
	return out
}

func TestHand_Total(t *testing.T) {
	tests := []struct {
		name     string
		hand     Hand
		expected int
	}{
		{"empty", h(), 0},
		{"numbers", h("2", "9"), 11},
		{"faces", h("K", "Q"), 20},
		{"soft ace", h("A", "6"), 17},
		{"ace recounted", h("A", "6", "9"), 16},
		{"two aces", h("A", "A"), 12},
		{"three aces and nine", h("A", "A", "A", "9"), 12},
		{"natural", h("A", "K"), 21},
		{"bust", h("K", "Q", "5"), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.Total(); got != tt.expected {
				t.Errorf("Total() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestHand_Flags(t *testing.T) {
	if !h("A", "J").IsNatural() {
		t.Error("A+J should be natural")
	}
	if h("7", "7", "7").IsNatural() {
		t.Error("three-card 21 is not natural")
	}
	if !h("K", "Q", "2").IsBust() {
		t.Error("22 should bust")
	}
}

func TestCard_ValueAndOrder(t *testing.T) {
	if (Card{Rank: "10"}).Value() != 10 || (Card{Rank: "7"}).Value() != 7 {
		t.Error("unexpected number card value")
	}
	if (Card{Rank: "A"}).Order() != 14 || (Card{Rank: "K"}).Order() != 13 || (Card{Rank: "2"}).Order() != 2 {
		t.Error("unexpected card order")
	}
}

func TestNewShuffledDeck_IsFullDeck(t *testing.T) {
	deck := NewShuffledDeck(rng.New(42))
	if len(deck) != 52 {
		t.Fatalf("len(deck) = %d, expected 52", len(deck))
	}
	seen := make(map[Card]bool)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
}
