package ledger

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/store"
)

const (
	DefaultStartingBalance = 100
	DefaultMinBet          = 10
)

var rankKey = store.Key("leaderboard")

func balanceKey(user string) string {
	return store.Key("balance", user)
}

// Every script creates the account lazily and mirrors the new balance into the
// rank ZSET, so a balance and its leaderboard score always move together.

var ensureScript = redis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then
  bal = tonumber(ARGV[1])
  redis.call('SET', KEYS[1], bal)
  redis.call('ZADD', KEYS[2], bal, ARGV[2])
end
return tonumber(bal)
`)

var deductScript = redis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then bal = tonumber(ARGV[2]) else bal = tonumber(bal) end
local amt = tonumber(ARGV[1])
if amt > bal then
  redis.call('SET', KEYS[1], bal)
  redis.call('ZADD', KEYS[2], bal, ARGV[3])
  return {0, bal}
end
bal = bal - amt
redis.call('SET', KEYS[1], bal)
redis.call('ZADD', KEYS[2], bal, ARGV[3])
return {1, bal}
`)

var placeBetScript = redis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then bal = tonumber(ARGV[3]) else bal = tonumber(bal) end
local min = tonumber(ARGV[2])
if bal < min or bal <= 0 then
  redis.call('SET', KEYS[1], bal)
  redis.call('ZADD', KEYS[2], bal, ARGV[4])
  return {0, 0, bal}
end
local bet = tonumber(ARGV[1])
if bet < min then bet = min end
if bet > bal then bet = bal end
bal = bal - bet
redis.call('SET', KEYS[1], bal)
redis.call('ZADD', KEYS[2], bal, ARGV[4])
return {1, bet, bal}
`)

var creditScript = redis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then bal = tonumber(ARGV[2]) else bal = tonumber(bal) end
bal = bal + tonumber(ARGV[1])
redis.call('SET', KEYS[1], bal)
redis.call('ZADD', KEYS[2], bal, ARGV[3])
return bal
`)

// Config holds the account defaults.
type Config struct {
	StartingBalance int64
	MinBet          int64
}

// Result is the outcome of a deduction.
type Result struct {
	OK      bool
	Balance int64
}

// BetResult is the outcome of PlaceBet. Bet is the clamped amount actually taken.
type BetResult struct {
	OK      bool
	Bet     int64
	Balance int64
}

// Ledger owns per-user tazo balances.
type Ledger struct {
	client redis.UniversalClient
	cfg    Config
}

// New creates a Redis-backed ledger.
func New(client redis.UniversalClient, cfg Config) *Ledger {
	if cfg.StartingBalance < 0 {
		cfg.StartingBalance = 0
	}
	if cfg.MinBet <= 0 {
		cfg.MinBet = 1
	}
	return &Ledger{client: client, cfg: cfg}
}

// MinBet returns the configured minimum bet.
func (l *Ledger) MinBet() int64 {
	return l.cfg.MinBet
}

// GetBalance returns the user's balance, opening the account with the starting balance if needed.
func (l *Ledger) GetBalance(ctx context.Context, user string) (int64, error) {
	bal, err := ensureScript.Run(ctx, l.client,
		[]string{balanceKey(user), rankKey}, l.cfg.StartingBalance, user).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", user, err)
	}
	return bal, nil
}

// Deduct removes amount from the user's balance. It fails, leaving the balance
// unchanged, when amount exceeds the balance or is negative.
func (l *Ledger) Deduct(ctx context.Context, user string, amount int64) (Result, error) {
	if amount < 0 {
		bal, err := l.GetBalance(ctx, user)
		return Result{OK: false, Balance: bal}, err
	}
	vals, err := runInts(ctx, deductScript, l.client,
		[]string{balanceKey(user), rankKey}, amount, l.cfg.StartingBalance, user)
	if err != nil {
		return Result{}, fmt.Errorf("failed to deduct %d from %s: %w", amount, user, err)
	}
	res := Result{OK: vals[0] == 1, Balance: vals[1]}
	logrus.Debugf("deduct %d from %s: ok=%v balance=%d", amount, user, res.OK, res.Balance)
	return res, nil
}

// PlaceBet takes a wager. The requested amount is clamped up to the minimum bet
// and down to the balance; it fails only when the balance is below the minimum.
func (l *Ledger) PlaceBet(ctx context.Context, user string, requested int64) (BetResult, error) {
	vals, err := runInts(ctx, placeBetScript, l.client,
		[]string{balanceKey(user), rankKey}, requested, l.cfg.MinBet, l.cfg.StartingBalance, user)
	if err != nil {
		return BetResult{}, fmt.Errorf("failed to place bet for %s: %w", user, err)
	}
	res := BetResult{OK: vals[0] == 1, Bet: vals[1], Balance: vals[2]}
	logrus.Debugf("bet by %s: requested=%d ok=%v bet=%d balance=%d", user, requested, res.OK, res.Bet, res.Balance)
	return res, nil
}

// Credit adds amount to the user's balance and returns the new balance.
// Non-positive amounts leave the balance unchanged.
func (l *Ledger) Credit(ctx context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return l.GetBalance(ctx, user)
	}
	bal, err := creditScript.Run(ctx, l.client,
		[]string{balanceKey(user), rankKey}, amount, l.cfg.StartingBalance, user).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d to %s: %w", amount, user, err)
	}
	logrus.Debugf("credit %d to %s: balance=%d", amount, user, bal)
	return bal, nil
}

// Ranked returns balances in descending order for rank positions [start, stop].
func (l *Ledger) Ranked(ctx context.Context, start, stop int64) ([]redis.Z, error) {
	zs, err := l.client.ZRevRangeWithScores(ctx, rankKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}
	return zs, nil
}

// Reset wipes every balance and the ranking, as at the start of a new stream session.
func (l *Ledger) Reset(ctx context.Context) error {
	keys, err := store.ScanKeys(ctx, l.client, store.Key("balance", "*"))
	if err != nil {
		return err
	}
	keys = append(keys, rankKey)
	if err := store.Delete(ctx, l.client, keys...); err != nil {
		return err
	}
	logrus.Infof("ledger reset: removed %d accounts", len(keys)-1)
	return nil
}

func runInts(ctx context.Context, s *redis.Script, c redis.Scripter, keys []string, args ...interface{}) ([]int64, error) {
	raw, err := s.Run(ctx, c, keys, args...).Slice()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(raw))
	for i, v := range raw {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected script reply element %T", v)
		}
		out[i] = n
	}
	return out, nil
}
