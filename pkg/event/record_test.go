package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streamkit/tazos-engine/pkg/game/gametest"
)

type counter struct {
	N int `json:"n"`
}

func TestSingleton_CreateIsSetIfAbsent(t *testing.T) {
	h := gametest.New(t)
	s := NewSingleton[counter](h.Client, "test", h.Clock.Now)
	ctx := context.Background()

	first, created, err := s.Create(ctx, time.Minute, counter{N: 1})
	if err != nil || !created {
		t.Fatalf("first Create() = %v, %v", created, err)
	}
	second, created, err := s.Create(ctx, time.Minute, counter{N: 2})
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if created {
		t.Error("second Create() must not replace the active record")
	}
	if second.ID != first.ID || second.Data.N != 1 {
		t.Errorf("second Create() returned %+v, expected the original record", second)
	}
}

func TestSingleton_Update(t *testing.T) {
	h := gametest.New(t)
	s := NewSingleton[counter](h.Client, "test", h.Clock.Now)
	ctx := context.Background()

	if _, err := s.Update(ctx, func(r *Record[counter]) error { return nil }); !errors.Is(err, ErrNoEvent) {
		t.Errorf("Update() without record error = %v, expected ErrNoEvent", err)
	}

	_, _, _ = s.Create(ctx, time.Minute, counter{})
	for i := 0; i < 3; i++ {
		if _, err := s.Update(ctx, func(r *Record[counter]) error {
			r.Data.N++
			return nil
		}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	rec, err := s.Update(ctx, func(r *Record[counter]) error {
		r.Data.N = 100
		return ErrNoChange
	})
	if err != nil {
		t.Fatalf("Update() with ErrNoChange error = %v", err)
	}
	if rec.Data.N != 100 {
		t.Errorf("returned record N = %d, expected callback view 100", rec.Data.N)
	}

	stored, _ := s.Get(ctx)
	if stored.Data.N != 3 {
		t.Errorf("stored N = %d, expected 3", stored.Data.N)
	}
}

func TestSingleton_ResolveIsCompareAndDelete(t *testing.T) {
	h := gametest.New(t)
	s := NewSingleton[counter](h.Client, "test", h.Clock.Now)
	ctx := context.Background()

	rec, _, _ := s.Create(ctx, time.Minute, counter{})

	ok, err := s.Resolve(ctx, "some-other-id")
	if err != nil || ok {
		t.Errorf("Resolve(wrong id) = %v, %v; expected false", ok, err)
	}
	if active, _ := s.Get(ctx); active == nil {
		t.Fatal("record must survive a resolve with the wrong id")
	}

	ok, err = s.Resolve(ctx, rec.ID)
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v; expected true", ok, err)
	}
	ok, _ = s.Resolve(ctx, rec.ID)
	if ok {
		t.Error("second Resolve() must report false")
	}

	last, found, err := s.LastResolved(ctx)
	if err != nil || !found || !last.Equal(time.UnixMilli(h.Clock.Now().UnixMilli())) {
		t.Errorf("LastResolved() = %v, %v, %v", last, found, err)
	}
}

func TestSingleton_ShouldStart(t *testing.T) {
	h := gametest.New(t)
	s := NewSingleton[counter](h.Client, "test", h.Clock.Now)
	ctx := context.Background()
	gap := 10 * time.Minute

	ok, _, err := s.ShouldStart(ctx, gap)
	if err != nil || !ok {
		t.Fatalf("ShouldStart() with no history = %v, %v", ok, err)
	}

	rec, _, _ := s.Create(ctx, time.Minute, counter{})
	if ok, _, _ := s.ShouldStart(ctx, gap); ok {
		t.Error("ShouldStart() must be false while an instance is active")
	}

	_, _ = s.Resolve(ctx, rec.ID)
	h.Clock.Advance(4 * time.Minute)
	ok, wait, _ := s.ShouldStart(ctx, gap)
	if ok || wait != 6*time.Minute {
		t.Errorf("ShouldStart() = %v wait %v, expected false with 6m left", ok, wait)
	}

	h.Clock.Advance(6 * time.Minute)
	if ok, _, _ := s.ShouldStart(ctx, gap); !ok {
		t.Error("ShouldStart() must be true after the gap")
	}
}

func TestRecord_Closed(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Record[counter]{StartedAt: start.UnixMilli(), EndsAt: start.Add(time.Minute).UnixMilli()}

	if r.Closed(start.Add(time.Minute)) {
		t.Error("window is still open at exactly its end")
	}
	if !r.Closed(start.Add(time.Minute + time.Millisecond)) {
		t.Error("window must be closed after its end")
	}
	if r.Remaining(start.Add(2*time.Minute)) != 0 {
		t.Error("Remaining() must not go negative")
	}
}

func TestRegistry(t *testing.T) {
	h := gametest.New(t)
	r := NewRegistry()

	if err := r.Register(NewRaffle(h.Deps)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(NewBoss(h.Deps)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(NewRaffle(h.Deps)); err == nil {
		t.Error("expected duplicate registration error")
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, expected 2", r.Count())
	}
	all := r.All()
	if all[0].Name() != "boss" || all[1].Name() != "raffle" {
		t.Errorf("All() not sorted: %s, %s", all[0].Name(), all[1].Name())
	}
	if r.Get("heist") != nil {
		t.Error("Get() of unregistered event must be nil")
	}
}
