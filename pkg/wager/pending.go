// Package wager implements two-party protocols: duels with held stakes and
// direct or requested tazo transfers.
package wager

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/streamkit/tazos-engine/pkg/store"
)

// Pending is an offer waiting on its target. One per target; a new offer replaces the old.
type Pending struct {
	From        string `json:"from"`
	FromDisplay string `json:"fromDisplay"`
	To          string `json:"to"`
	Amount      int64  `json:"amount"`
	CreatedAt   int64  `json:"createdAt"`
}

// Expired reports whether the offer is older than window.
func (p Pending) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(time.UnixMilli(p.CreatedAt)) > window
}

// The store TTL only collects records nobody swept; refunds happen on lazy or sweeper expiry.
const backstopFactor = 5

type pendingStore struct {
	client redis.UniversalClient
	family string
	window time.Duration
}

func (s pendingStore) key(target string) string {
	return store.Key(s.family, target)
}

func (s pendingStore) get(ctx context.Context, target string) (*Pending, error) {
	var p Pending
	found, err := store.GetJSON(ctx, s.client, s.key(target), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// put stores p and returns the offer it displaced, if any.
func (s pendingStore) put(ctx context.Context, p Pending) (*Pending, error) {
	old, err := s.claim(ctx, p.To)
	if err != nil {
		return nil, err
	}
	if err := store.SetJSON(ctx, s.client, s.key(p.To), p, s.window*backstopFactor); err != nil {
		return old, err
	}
	return old, nil
}

// claim removes and returns the target's offer. Only one caller can win a claim.
func (s pendingStore) claim(ctx context.Context, target string) (*Pending, error) {
	var p Pending
	found, err := store.ClaimJSON(ctx, s.client, s.key(target), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// restore puts back an offer claimed by mistake, unless a newer one took its place.
func (s pendingStore) restore(ctx context.Context, p Pending) error {
	_, err := store.SetJSONIfAbsent(ctx, s.client, s.key(p.To), p, s.window*backstopFactor)
	return err
}

// sweep claims every expired offer and hands it to fn.
func (s pendingStore) sweep(ctx context.Context, now time.Time, fn func(Pending) error) (int, error) {
	keys, err := store.ScanKeys(ctx, s.client, store.Key(s.family, "*"))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, key := range keys {
		var p Pending
		found, err := store.GetJSON(ctx, s.client, key, &p)
		if err != nil {
			return n, err
		}
		if !found || !p.Expired(now, s.window) {
			continue
		}
		claimed, err := s.claim(ctx, p.To)
		if err != nil {
			return n, err
		}
		if claimed == nil {
			continue
		}
		if !claimed.Expired(now, s.window) {
			if err := s.restore(ctx, *claimed); err != nil {
				return n, err
			}
			continue
		}
		if err := fn(*claimed); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
