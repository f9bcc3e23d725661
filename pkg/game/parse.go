package game

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidBet    = errors.New("invalid roulette bet")
)

// ParseAmount reads a user-supplied amount: plain integers, a "k" suffix
// ("1.5k"), "all"/"max" for the full balance, or "half".
func ParseAmount(arg string, balance int64) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(arg))
	switch s {
	case "":
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	case "all", "max", "allin":
		return balance, nil
	case "half":
		return balance / 2, nil
	}

	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, arg)
	}
	v := math.Floor(f * mult)
	if v <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if v > math.MaxInt64/2 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return int64(v), nil
}

// BetKind is the typed form of a roulette choice.
type BetKind int

const (
	BetNumber BetKind = iota + 1
	BetRed
	BetBlack
	BetOdd
	BetEven
)

func (k BetKind) String() string {
	switch k {
	case BetNumber:
		return "number"
	case BetRed:
		return "red"
	case BetBlack:
		return "black"
	case BetOdd:
		return "odd"
	case BetEven:
		return "even"
	default:
		return "unknown"
	}
}

// RouletteBet is a parsed roulette choice. Number is set only for BetNumber.
type RouletteBet struct {
	Kind   BetKind
	Number int
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// IsRed reports whether a wheel pocket is red. Zero is neither red nor black.
func IsRed(n int) bool { return redNumbers[n] }

// PocketColor names a wheel pocket's color.
func PocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case IsRed(n):
		return "red"
	default:
		return "black"
	}
}

// ParseRouletteBet reads "red", "black", "odd", "even" or a number 0-36.
func ParseRouletteBet(arg string) (RouletteBet, error) {
	s := strings.ToLower(strings.TrimSpace(arg))
	switch s {
	case "red", "r":
		return RouletteBet{Kind: BetRed}, nil
	case "black", "b":
		return RouletteBet{Kind: BetBlack}, nil
	case "odd":
		return RouletteBet{Kind: BetOdd}, nil
	case "even":
		return RouletteBet{Kind: BetEven}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 36 {
		return RouletteBet{}, fmt.Errorf("%w: %q", ErrInvalidBet, arg)
	}
	return RouletteBet{Kind: BetNumber, Number: n}, nil
}

// Wins reports whether the bet wins on the given pocket.
func (b RouletteBet) Wins(pocket int) bool {
	switch b.Kind {
	case BetNumber:
		return pocket == b.Number
	case BetRed:
		return pocket != 0 && IsRed(pocket)
	case BetBlack:
		return pocket != 0 && !IsRed(pocket)
	case BetOdd:
		return pocket != 0 && pocket%2 == 1
	case BetEven:
		return pocket != 0 && pocket%2 == 0
	}
	return false
}

// Multiplier is the gross payout multiple on a win.
func (b RouletteBet) Multiplier() int64 {
	if b.Kind == BetNumber {
		return 36
	}
	return 2
}

func (b RouletteBet) String() string {
	if b.Kind == BetNumber {
		return strconv.Itoa(b.Number)
	}
	return b.Kind.String()
}
