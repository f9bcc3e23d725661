package game

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		arg      string
		balance  int64
		expected int64
		wantErr  bool
	}{
		{"50", 100, 50, false},
		{" 75 ", 100, 75, false},
		{"1k", 5000, 1000, false},
		{"1.5K", 5000, 1500, false},
		{"all", 340, 340, false},
		{"MAX", 12, 12, false},
		{"half", 341, 170, false},
		{"0", 100, 0, true},
		{"-5", 100, 0, true},
		{"abc", 100, 0, true},
		{"", 100, 0, true},
		{"NaN", 100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseAmount(tt.arg, tt.balance)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, expected ErrInvalidAmount", tt.arg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", tt.arg, err)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q) = %d, expected %d", tt.arg, got, tt.expected)
			}
		})
	}
}

func TestParseRouletteBet(t *testing.T) {
	tests := []struct {
		arg     string
		kind    BetKind
		number  int
		wantErr bool
	}{
		{"red", BetRed, 0, false},
		{"Black", BetBlack, 0, false},
		{"odd", BetOdd, 0, false},
		{"even", BetEven, 0, false},
		{"0", BetNumber, 0, false},
		{"17", BetNumber, 17, false},
		{"36", BetNumber, 36, false},
		{"37", 0, 0, true},
		{"-1", 0, 0, true},
		{"green", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseRouletteBet(tt.arg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBet) {
					t.Errorf("expected ErrInvalidBet, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRouletteBet(%q) error = %v", tt.arg, err)
			}
			if got.Kind != tt.kind || got.Number != tt.number {
				t.Errorf("ParseRouletteBet(%q) = %+v", tt.arg, got)
			}
		})
	}
}

func TestRouletteBet_Wins(t *testing.T) {
	tests := []struct {
		bet      RouletteBet
		pocket   int
		expected bool
	}{
		{RouletteBet{Kind: BetRed}, 1, true},
		{RouletteBet{Kind: BetRed}, 2, false},
		{RouletteBet{Kind: BetBlack}, 2, true},
		{RouletteBet{Kind: BetRed}, 0, false},
		{RouletteBet{Kind: BetBlack}, 0, false},
		{RouletteBet{Kind: BetEven}, 0, false},
		{RouletteBet{Kind: BetOdd}, 35, true},
		{RouletteBet{Kind: BetNumber, Number: 0}, 0, true},
		{RouletteBet{Kind: BetNumber, Number: 7}, 8, false},
	}
	for _, tt := range tests {
		if got := tt.bet.Wins(tt.pocket); got != tt.expected {
			t.Errorf("%s on %d: Wins = %v, expected %v", tt.bet, tt.pocket, got, tt.expected)
		}
	}
	if (RouletteBet{Kind: BetNumber, Number: 5}).Multiplier() != 36 {
		t.Error("number bets should pay 36x")
	}
	if (RouletteBet{Kind: BetRed}).Multiplier() != 2 {
		t.Error("color bets should pay 2x")
	}
}

func TestPocketColor(t *testing.T) {
	if PocketColor(0) != "green" || PocketColor(1) != "red" || PocketColor(2) != "black" {
		t.Error("unexpected pocket colors")
	}
	reds := 0
	for n := 1; n <= 36; n++ {
		if IsRed(n) {
			reds++
		}
	}
	if reds != 18 {
		t.Errorf("red pockets = %d, expected 18", reds)
	}
}
