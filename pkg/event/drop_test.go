package event

import (
	"context"
	"testing"
	"time"

	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/game/gametest"
)

func TestDrop_FirstNWinAndEndEarly(t *testing.T) {
	hs := gametest.New(t)
	drop := NewDrop(hs.Deps)
	ctx := context.Background()

	hs.Rand.Push(0) // "grab"
	r, err := drop.Start(ctx)
	check(t, r, err, game.StatusOK)

	claims := []struct {
		user string
		msg  string
		paid bool
	}{
		{"alice", "GRAB", true},
		{"alice", "grab grab", false},
		{"bob", "i grab it", true},
		{"carol", "nope", false},
		{"carol", "grab!", true},
		{"dave", "grab", false},
	}
	for _, c := range claims {
		reply, err := drop.Claim(ctx, c.user, c.msg)
		if err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
		if (reply != nil) != c.paid {
			t.Errorf("Claim(%s, %q) paid = %v, expected %v", c.user, c.msg, reply != nil, c.paid)
		}
	}

	for _, u := range []string{"alice", "bob", "carol"} {
		if bal := hs.Balance(t, u); bal != 150 {
			t.Errorf("%s balance = %d, expected 150", u, bal)
		}
	}
	if bal := hs.Balance(t, "dave"); bal != 100 {
		t.Errorf("dave balance = %d, expected 100", bal)
	}

	if rec, _ := drop.record.Get(ctx); rec != nil {
		t.Error("drop must end once all slots are claimed")
	}
	if _, found, _ := drop.record.LastResolved(ctx); !found {
		t.Error("early end must stamp the last-resolved marker")
	}
}

func TestDrop_ExpiresWithoutClaims(t *testing.T) {
	hs := gametest.New(t)
	drop := NewDrop(hs.Deps)
	ctx := context.Background()

	_, _ = drop.Start(ctx)
	hs.Clock.Advance(61 * time.Second)

	reply, err := drop.Claim(ctx, "alice", "grab")
	if err != nil || reply != nil {
		t.Errorf("late Claim() = %v, %v; expected nothing", reply, err)
	}
	out, err := drop.ResolveIfExpired(ctx)
	if err != nil || out == nil || out.Result != OutcomeNoEntry {
		t.Fatalf("ResolveIfExpired() = %+v, %v", out, err)
	}
}

func TestDrop_UnpaidClaimIsReleased(t *testing.T) {
	hs := gametest.New(t)
	drop := NewDrop(hs.Deps)
	ctx := context.Background()

	hs.Rand.Push(0) // "grab"
	r, err := drop.Start(ctx)
	check(t, r, err, game.StatusOK)

	// A non-integer balance key makes the credit script fail for alice only.
	hs.MR.HSet("tazos:balance:alice", "broken", "1")
	if reply, err := drop.Claim(ctx, "alice", "grab"); err == nil || reply != nil {
		t.Fatalf("Claim() = %v, %v; expected the payout error", reply, err)
	}
	rec, _ := drop.record.Get(ctx)
	if rec == nil || len(rec.Data.Winners) != 0 || len(rec.Data.Displays) != 0 {
		t.Fatalf("record = %+v, expected the unpaid claim to be released", rec)
	}

	if reply, err := drop.Claim(ctx, "bob", "grab"); err != nil || reply == nil {
		t.Fatalf("Claim() = %v, %v", reply, err)
	}

	hs.Clock.Advance(hs.Config.Drop.Window + time.Second)
	out, err := drop.ResolveIfExpired(ctx)
	if err != nil || out == nil {
		t.Fatalf("ResolveIfExpired() = %+v, %v", out, err)
	}
	if _, listed := out.Payouts["alice"]; listed || out.Payouts["bob"] != hs.Config.Drop.Prize {
		t.Errorf("payouts = %v, expected only bob", out.Payouts)
	}
}
