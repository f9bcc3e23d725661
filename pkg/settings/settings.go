// Package settings serves runtime feature flags and the stream timezone.
// Flags live in a Redis hash so operators can flip them while the service
// runs; reads go through a short in-process cache.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/store"
)

const flagsCacheKey = "flags"

// DefaultCacheTTL is how long flag reads are served from memory.
const DefaultCacheTTL = 30 * time.Second

var flagsKey = store.Key("settings", "flags")

// Store resolves feature flags, overlaying Redis overrides on configured defaults.
type Store struct {
	client   redis.UniversalClient
	defaults map[string]bool
	cache    *cache.Cache

	mu  sync.RWMutex
	loc *time.Location
}

// New creates a settings store. A nil or unknown timezone falls back to UTC.
func New(client redis.UniversalClient, defaults map[string]bool, timezone string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	copied := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}
	s := &Store{
		client:   client,
		defaults: copied,
		cache:    cache.New(ttl, 2*ttl),
		loc:      time.UTC,
	}
	if timezone != "" {
		if err := s.SetTimezone(timezone); err != nil {
			logrus.Warnf("settings: %v, using UTC", err)
		}
	}
	return s
}

// Enabled reports whether a feature is on. Features without a default or
// override are enabled. Redis failures fall back to the defaults.
func (s *Store) Enabled(ctx context.Context, feature string) bool {
	flags, err := s.flags(ctx)
	if err != nil {
		logrus.Errorf("settings: failed to load flags: %v", err)
		flags = s.defaults
	}
	on, ok := flags[feature]
	if !ok {
		return true
	}
	return on
}

// SetEnabled persists an override for a feature.
func (s *Store) SetEnabled(ctx context.Context, feature string, on bool) error {
	if err := s.client.HSet(ctx, flagsKey, feature, strconv.FormatBool(on)).Err(); err != nil {
		return fmt.Errorf("failed to set flag %s: %w", feature, err)
	}
	s.Invalidate()
	return nil
}

// Invalidate drops cached flags so the next read hits Redis.
func (s *Store) Invalidate() {
	s.cache.Delete(flagsCacheKey)
}

// Location returns the timezone used for calendar-day logic.
func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// SetTimezone changes the calendar timezone.
func (s *Store) SetTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
	return nil
}

func (s *Store) flags(ctx context.Context) (map[string]bool, error) {
	if cached, ok := s.cache.Get(flagsCacheKey); ok {
		return cached.(map[string]bool), nil
	}

	overrides, err := s.client.HGetAll(ctx, flagsKey).Result()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]bool, len(s.defaults)+len(overrides))
	for k, v := range s.defaults {
		merged[k] = v
	}
	for k, raw := range overrides {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			logrus.Warnf("settings: ignoring malformed flag %s=%q", k, raw)
			continue
		}
		merged[k] = on
	}

	s.cache.SetDefault(flagsCacheKey, merged)
	return merged, nil
}
