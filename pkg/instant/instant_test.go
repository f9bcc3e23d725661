package instant

import (
	"context"
	"math"
	"testing"

	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/game/gametest"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

func setup(t *testing.T) (*Games, *gametest.Harness) {
	t.Helper()
	h := gametest.New(t)
	return New(h.Deps), h
}

func check(t *testing.T, r game.Reply, err error, status game.Status) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != status {
		t.Fatalf("status = %s, expected %s (%q)", r.Status, status, r.Text)
	}
}

func TestCoinFlip(t *testing.T) {
	tests := []struct {
		name     string
		call     string
		draw     int
		expected int64
	}{
		{"heads wins", "heads", 0, 120},
		{"heads loses", "heads", 1, 80},
		{"tails wins", "t", 1, 120},
		{"default call is heads", "", 0, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			h.Rand.Push(tt.draw)

			r, err := g.CoinFlip(context.Background(), "alice", 20, tt.call)
			check(t, r, err, game.StatusOK)
			if bal := h.Balance(t, "alice"); bal != tt.expected {
				t.Errorf("balance = %d, expected %d", bal, tt.expected)
			}
		})
	}
}

func TestCoinFlip_BadCallTakesNoBet(t *testing.T) {
	g, h := setup(t)
	r, err := g.CoinFlip(context.Background(), "alice", 20, "edge")
	check(t, r, err, game.StatusRejected)
	if bal := h.Balance(t, "alice"); bal != 100 {
		t.Errorf("balance = %d, expected 100", bal)
	}
}

func TestRoulette(t *testing.T) {
	tests := []struct {
		name     string
		bet      string
		pocket   int
		expected int64
	}{
		{"red on red", "red", 1, 110},
		{"red on black", "red", 2, 90},
		{"red on zero", "red", 0, 90},
		{"even on zero", "even", 0, 90},
		{"straight number", "17", 17, 450},
		{"zero number", "0", 0, 450},
		{"missed number", "17", 18, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			choice, err := game.ParseRouletteBet(tt.bet)
			if err != nil {
				t.Fatalf("ParseRouletteBet error = %v", err)
			}
			h.Rand.Push(tt.pocket)

			r, err := g.Roulette(context.Background(), "bob", 10, choice)
			check(t, r, err, game.StatusOK)
			if bal := h.Balance(t, "bob"); bal != tt.expected {
				t.Errorf("balance = %d, expected %d (%q)", bal, tt.expected, r.Text)
			}
		})
	}
}

func TestDice(t *testing.T) {
	tests := []struct {
		call     string
		draw     int // roll = draw + 1
		expected int64
	}{
		{"high", 5, 110},
		{"high", 3, 110},
		{"high", 2, 90},
		{"low", 0, 110},
		{"low", 3, 90},
	}
	for _, tt := range tests {
		g, h := setup(t)
		h.Rand.Push(tt.draw)

		r, err := g.Dice(context.Background(), "carol", 10, tt.call)
		check(t, r, err, game.StatusOK)
		if bal := h.Balance(t, "carol"); bal != tt.expected {
			t.Errorf("%s roll %d: balance = %d, expected %d", tt.call, tt.draw+1, bal, tt.expected)
		}
	}
}

func TestSlots(t *testing.T) {
	// Default weights: cherry 0-29 (3x), lemon 30-54 (4x), grape 55-74 (5x),
	// bell 75-86 (8x), star 87-94 (12x), diamond 95-99 (25x).
	tests := []struct {
		name     string
		draws    []int
		expected int64
	}{
		{"three cherries", []int{0, 10, 29}, 80 + 60},
		{"three diamonds", []int{95, 99, 97}, 80 + 500},
		{"pair of lemons", []int{30, 40, 0}, 80 + 40},
		{"pair on last two reels", []int{0, 55, 60}, 80 + 50},
		{"no match", []int{0, 30, 55}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			h.Rand.Push(tt.draws...)

			r, err := g.Slots(context.Background(), "dave", 20)
			check(t, r, err, game.StatusOK)
			if bal := h.Balance(t, "dave"); bal != tt.expected {
				t.Errorf("balance = %d, expected %d (%q)", bal, tt.expected, r.Text)
			}
		})
	}
}

func TestCrashPoint(t *testing.T) {
	tests := []struct {
		r        float64
		expected float64
	}{
		{0, 1.0},
		{0.5, 1.94},
		{0.6, 2.39},
		{0.99, 25.18},
	}
	for _, tt := range tests {
		if got := CrashPoint(tt.r); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("CrashPoint(%v) = %v, expected %v", tt.r, got, tt.expected)
		}
	}
}

func TestCrash(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		r        float64
		expected int64
	}{
		{"default target reached", 0, 0.6, 80 + 40},
		{"default target missed", 0, 0.5, 80},
		{"low target reached", 1.5, 0.5, 80 + 30},
		{"exact boundary pays", 1.94, 0.5, 80 + 38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			h.Rand.PushFloats(tt.r)

			r, err := g.Crash(context.Background(), "erin", 20, tt.target)
			check(t, r, err, game.StatusOK)
			if bal := h.Balance(t, "erin"); bal != tt.expected {
				t.Errorf("balance = %d, expected %d (%q)", bal, tt.expected, r.Text)
			}
		})
	}
}

func TestCrash_InvalidTargetKeepsStake(t *testing.T) {
	tests := []struct {
		name   string
		target float64
	}{
		{"below minimum", 1.05},
		{"not a number", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"negative", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			h.Rand.PushFloats(0.99)

			r, err := g.Crash(context.Background(), "erin", 20, tt.target)
			check(t, r, err, game.StatusRejected)
			if bal := h.Balance(t, "erin"); bal != 100 {
				t.Errorf("balance = %d, expected 100", bal)
			}
		})
	}
}

func TestHighCard(t *testing.T) {
	// Ordered deck: index 0 = A♠, 1 = 2♠, ..., 12 = K♠, 13 = A♥.
	tests := []struct {
		name     string
		draws    []int
		expected int64
	}{
		{"ace beats two", []int{0, 0}, 120},
		{"two loses to three", []int{1, 1}, 80},
		{"tie pushes", []int{0, 12}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h := setup(t)
			h.Rand.Push(tt.draws...)

			r, err := g.HighCard(context.Background(), "frank", 20)
			check(t, r, err, game.StatusOK)
			if bal := h.Balance(t, "frank"); bal != tt.expected {
				t.Errorf("balance = %d, expected %d (%q)", bal, tt.expected, r.Text)
			}
		})
	}
}

func TestInstant_CooldownAndDisabled(t *testing.T) {
	g, h := setup(t)
	ctx := context.Background()

	r, err := g.Dice(ctx, "gina", 10, "high")
	check(t, r, err, game.StatusOK)
	r, err = g.Dice(ctx, "gina", 10, "high")
	check(t, r, err, game.StatusCooldown)

	if err := h.Deps.Settings.SetEnabled(ctx, gameconfig.FeatureSlots, false); err != nil {
		t.Fatalf("SetEnabled error = %v", err)
	}
	r, err = g.Slots(ctx, "gina", 10)
	check(t, r, err, game.StatusDisabled)
}

func TestInstant_WinStreakTracked(t *testing.T) {
	g, h := setup(t)
	ctx := context.Background()

	h.Rand.Push(0)
	r, err := g.CoinFlip(ctx, "hank", 10, "heads")
	check(t, r, err, game.StatusOK)

	n, err := h.Deps.Streaks.WinStreak(ctx, "hank")
	if err != nil || n != 1 {
		t.Errorf("WinStreak = %d err=%v, expected 1", n, err)
	}
}
