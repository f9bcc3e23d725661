package game_test

import (
	"context"
	"testing"

	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/game/gametest"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
)

func TestStartBet_ClampsAndSetsCooldown(t *testing.T) {
	h := gametest.New(t)
	ctx := context.Background()

	bet, reply, err := h.Deps.StartBet(ctx, gameconfig.FeatureSlots, "alice", 1000)
	if err != nil {
		t.Fatalf("StartBet() error = %v", err)
	}
	if reply != nil {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
	if bet.Bet != 100 || bet.Balance != 0 {
		t.Errorf("bet = %+v, expected bet 100 balance 0", bet)
	}

	_, reply, _ = h.Deps.StartBet(ctx, gameconfig.FeatureSlots, "alice", 10)
	if reply == nil || reply.Status != game.StatusCooldown {
		t.Fatalf("expected cooldown reply, got %+v", reply)
	}
}

func TestStartBet_InsufficientReleasesCooldown(t *testing.T) {
	h := gametest.New(t)
	ctx := context.Background()
	h.SetBalance(t, "bob", 5)

	_, reply, err := h.Deps.StartBet(ctx, gameconfig.FeatureDice, "bob", 10)
	if err != nil {
		t.Fatalf("StartBet() error = %v", err)
	}
	if reply == nil || reply.Status != game.StatusInsufficientFunds {
		t.Fatalf("expected insufficient reply, got %+v", reply)
	}

	h.SetBalance(t, "bob", 50)
	_, reply, _ = h.Deps.StartBet(ctx, gameconfig.FeatureDice, "bob", 10)
	if reply != nil {
		t.Errorf("expected bet to go through after top-up, got %q", reply.Text)
	}
}

func TestStartBet_Disabled(t *testing.T) {
	h := gametest.New(t)
	ctx := context.Background()
	if err := h.Deps.Settings.SetEnabled(ctx, gameconfig.FeatureCrash, false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}

	_, reply, _ := h.Deps.StartBet(ctx, gameconfig.FeatureCrash, "carol", 10)
	if reply == nil || reply.Status != game.StatusDisabled {
		t.Fatalf("expected disabled reply, got %+v", reply)
	}
	if bal := h.Balance(t, "carol"); bal != 100 {
		t.Errorf("balance = %d, expected untouched 100", bal)
	}
}

func TestPay_PublishesPayout(t *testing.T) {
	h := gametest.New(t)
	ctx := context.Background()

	bal, err := h.Deps.Pay(ctx, "coinflip", "dave", 40)
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if bal != 140 {
		t.Errorf("balance = %d, expected 140", bal)
	}
	payouts := h.Events.OfKind(eventbus.KindPayout)
	if len(payouts) != 1 || payouts[0].Amount != 40 || payouts[0].User != "dave" {
		t.Errorf("unexpected payouts %+v", payouts)
	}
}

func TestRecordOutcome_Milestone(t *testing.T) {
	h := gametest.New(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if s := h.Deps.RecordOutcome(ctx, "erin", true); s != "" {
			t.Errorf("unexpected suffix %q before any milestone", s)
		}
	}
	if s := h.Deps.RecordOutcome(ctx, "erin", false); s != "" {
		t.Errorf("loss should not produce a suffix, got %q", s)
	}
	n, _ := h.Deps.Streaks.WinStreak(ctx, "erin")
	if n != 0 {
		t.Errorf("WinStreak after loss = %d, expected 0", n)
	}
}
