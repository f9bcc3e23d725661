package names

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Bob ", "bob"},
		{"@StreamerGuy", "streamerguy"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistry_RememberAndLookup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRegistry(client)
	ctx := context.Background()

	if err := r.Remember(ctx, "@CoolCat"); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	got, err := r.Lookup(ctx, "coolcat", "stranger")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got["coolcat"] != "CoolCat" {
		t.Errorf("coolcat = %q, expected CoolCat", got["coolcat"])
	}
	if got["stranger"] != "stranger" {
		t.Errorf("stranger = %q, expected fallback to stranger", got["stranger"])
	}
	if d := r.Display(ctx, "coolcat"); d != "CoolCat" {
		t.Errorf("Display() = %q, expected CoolCat", d)
	}
}
