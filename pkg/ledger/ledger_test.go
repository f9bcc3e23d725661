package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/streamkit/tazos-engine/pkg/rng"
)

func setupTestLedger(t *testing.T) (*Ledger, *redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, Config{StartingBalance: 100, MinBet: 10}), client, mr
}

func TestGetBalance_NewAccount(t *testing.T) {
	l, client, _ := setupTestLedger(t)
	ctx := context.Background()

	bal, err := l.GetBalance(ctx, "alice")
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if bal != 100 {
		t.Errorf("GetBalance() = %d, expected starting balance 100", bal)
	}

	score, err := client.ZScore(ctx, rankKey, "alice").Result()
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	if score != 100 {
		t.Errorf("rank score = %v, expected 100", score)
	}
}

func TestDeduct(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		expectOK    bool
		expectAfter int64
	}{
		{"within balance", 40, true, 60},
		{"entire balance", 100, true, 0},
		{"over balance", 101, false, 100},
		{"negative amount", -5, false, 100},
		{"zero", 0, true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := setupTestLedger(t)
			res, err := l.Deduct(context.Background(), "bob", tt.amount)
			if err != nil {
				t.Fatalf("Deduct() error = %v", err)
			}
			if res.OK != tt.expectOK {
				t.Errorf("Deduct() ok = %v, expected %v", res.OK, tt.expectOK)
			}
			if res.Balance != tt.expectAfter {
				t.Errorf("Deduct() balance = %d, expected %d", res.Balance, tt.expectAfter)
			}
		})
	}
}

func TestPlaceBet(t *testing.T) {
	tests := []struct {
		name      string
		balance   int64
		requested int64
		expectOK  bool
		expectBet int64
		expectBal int64
	}{
		{"normal bet", 100, 30, true, 30, 70},
		{"clamped down to balance", 100, 1000, true, 100, 0},
		{"clamped up to minimum", 100, 2, true, 10, 90},
		{"balance below minimum", 5, 5, false, 0, 5},
		{"zero balance", 0, 10, false, 0, 0},
		{"balance exactly minimum", 10, 50, true, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, client, _ := setupTestLedger(t)
			ctx := context.Background()
			client.Set(ctx, balanceKey("carol"), tt.balance, 0)

			res, err := l.PlaceBet(ctx, "carol", tt.requested)
			if err != nil {
				t.Fatalf("PlaceBet() error = %v", err)
			}
			if res.OK != tt.expectOK || res.Bet != tt.expectBet || res.Balance != tt.expectBal {
				t.Errorf("PlaceBet() = %+v, expected ok=%v bet=%d balance=%d",
					res, tt.expectOK, tt.expectBet, tt.expectBal)
			}
			if res.Bet > tt.balance {
				t.Errorf("bet %d exceeds pre-call balance %d", res.Bet, tt.balance)
			}
		})
	}
}

func TestCredit(t *testing.T) {
	l, _, _ := setupTestLedger(t)
	ctx := context.Background()

	bal, err := l.Credit(ctx, "dave", 50)
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if bal != 150 {
		t.Errorf("Credit() = %d, expected 150", bal)
	}

	bal, _ = l.Credit(ctx, "dave", -20)
	if bal != 150 {
		t.Errorf("negative Credit() changed balance to %d", bal)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	l, _, _ := setupTestLedger(t)
	ctx := context.Background()
	src := rng.New(99)

	for i := 0; i < 500; i++ {
		amount := int64(src.Intn(80))
		var bal int64
		switch src.Intn(3) {
		case 0:
			res, err := l.Deduct(ctx, "erin", amount)
			if err != nil {
				t.Fatalf("Deduct() error = %v", err)
			}
			bal = res.Balance
		case 1:
			res, err := l.PlaceBet(ctx, "erin", amount)
			if err != nil {
				t.Fatalf("PlaceBet() error = %v", err)
			}
			bal = res.Balance
		default:
			var err error
			bal, err = l.Credit(ctx, "erin", amount/4)
			if err != nil {
				t.Fatalf("Credit() error = %v", err)
			}
		}
		if bal < 0 {
			t.Fatalf("balance went negative (%d) at step %d", bal, i)
		}
	}
}

func TestRankedAndReset(t *testing.T) {
	l, client, _ := setupTestLedger(t)
	ctx := context.Background()

	l.Credit(ctx, "rich", 900)
	l.Deduct(ctx, "poor", 90)
	l.GetBalance(ctx, "mid")

	zs, err := l.Ranked(ctx, 0, -1)
	if err != nil {
		t.Fatalf("Ranked() error = %v", err)
	}
	if len(zs) != 3 || zs[0].Member != "rich" || zs[2].Member != "poor" {
		t.Errorf("Ranked() = %v, expected rich, mid, poor", zs)
	}

	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if n, _ := client.Exists(ctx, balanceKey("rich"), rankKey).Result(); n != 0 {
		t.Errorf("Reset() left %d keys behind", n)
	}
	if bal, _ := l.GetBalance(ctx, "rich"); bal != 100 {
		t.Errorf("balance after reset = %d, expected starting balance", bal)
	}
}
