package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/streamkit/tazos-engine/pkg/store"
)

var (
	// ErrNoEvent is returned by Update when no instance is active.
	ErrNoEvent = errors.New("no active event")
	// ErrNoChange lets an Update callback finish without writing. Update
	// then returns the record as read and a nil error.
	ErrNoChange = errors.New("no change")
)

const (
	maxUpdateAttempts = 5
	recordSlack       = 5 * time.Minute
)

// Record is one instance of a singleton community event. ID changes with
// every instance so a stale resolver cannot delete its successor.
type Record[T any] struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	StartedAt int64  `json:"startedAt"`
	EndsAt    int64  `json:"endsAt"`
	Data      T      `json:"data"`
}

// Closed reports whether the join window has passed.
func (r *Record[T]) Closed(now time.Time) bool {
	return now.UnixMilli() > r.EndsAt
}

// Remaining is the time left in the window.
func (r *Record[T]) Remaining(now time.Time) time.Duration {
	d := time.UnixMilli(r.EndsAt).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Singleton persists at most one Record per event type.
type Singleton[T any] struct {
	client redis.UniversalClient
	kind   string
	now    func() time.Time
}

func NewSingleton[T any](client redis.UniversalClient, kind string, now func() time.Time) *Singleton[T] {
	return &Singleton[T]{client: client, kind: kind, now: now}
}

func (s *Singleton[T]) key() string       { return store.Key("event", s.kind) }
func (s *Singleton[T]) markerKey() string { return store.Key("event", s.kind, "last_resolved") }

func (s *Singleton[T]) ttl(r *Record[T]) time.Duration {
	return time.UnixMilli(r.EndsAt).Sub(s.now()) + recordSlack
}

// Get returns the active record, or nil.
func (s *Singleton[T]) Get(ctx context.Context) (*Record[T], error) {
	var r Record[T]
	found, err := store.GetJSON(ctx, s.client, s.key(), &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

// Create starts a new instance if none is active. created is false when
// another instance already exists; that instance is returned instead.
func (s *Singleton[T]) Create(ctx context.Context, window time.Duration, data T) (rec *Record[T], created bool, err error) {
	now := s.now()
	r := &Record[T]{
		ID:        uuid.New().String(),
		Type:      s.kind,
		StartedAt: now.UnixMilli(),
		EndsAt:    now.Add(window).UnixMilli(),
		Data:      data,
	}
	ok, err := store.SetJSONIfAbsent(ctx, s.client, s.key(), r, s.ttl(r))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		existing, err := s.Get(ctx)
		return existing, false, err
	}
	return r, true, nil
}

// Update applies fn to the active record under optimistic locking,
// retrying when another writer got there first.
func (s *Singleton[T]) Update(ctx context.Context, fn func(*Record[T]) error) (*Record[T], error) {
	key := s.key()
	var out *Record[T]

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNoEvent
		}
		if err != nil {
			return err
		}
		var r Record[T]
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("failed to unmarshal %s event: %w", s.kind, err)
		}
		if err := fn(&r); err != nil {
			if errors.Is(err, ErrNoChange) {
				out = &r
				return nil
			}
			return err
		}
		data, err := json.Marshal(&r)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", s.kind, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl(&r))
			return nil
		})
		if err == nil {
			out = &r
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return out, err
	}
	return nil, fmt.Errorf("failed to update %s event: too much contention", s.kind)
}

// Resolve deletes the record if it is still instance id and stamps the
// last-resolved marker. It reports false when someone else resolved it first.
func (s *Singleton[T]) Resolve(ctx context.Context, id string) (bool, error) {
	key := s.key()
	resolved := false

	txf := func(tx *redis.Tx) error {
		var r Record[T]
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("failed to unmarshal %s event: %w", s.kind, err)
		}
		if r.ID != id {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Set(ctx, s.markerKey(), s.now().UnixMilli(), 0)
			return nil
		})
		if err == nil {
			resolved = true
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return resolved, err
	}
	return false, fmt.Errorf("failed to resolve %s event: too much contention", s.kind)
}

// LastResolved returns when the previous instance was resolved.
func (s *Singleton[T]) LastResolved(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.markerKey()).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read %s marker: %w", s.kind, err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed %s marker %q: %w", s.kind, raw, err)
	}
	return time.UnixMilli(ms), true, nil
}

// ShouldStart reports whether a new instance may begin: none is active and
// at least minGap has passed since the last resolution. wait is the time left otherwise.
func (s *Singleton[T]) ShouldStart(ctx context.Context, minGap time.Duration) (ok bool, wait time.Duration, err error) {
	active, err := s.Get(ctx)
	if err != nil {
		return false, 0, err
	}
	if active != nil {
		return false, active.Remaining(s.now()), nil
	}
	last, found, err := s.LastResolved(ctx)
	if err != nil || !found {
		return err == nil, 0, err
	}
	if elapsed := s.now().Sub(last); elapsed < minGap {
		return false, minGap - elapsed, nil
	}
	return true, 0, nil
}
