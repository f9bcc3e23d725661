package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/store"
)

// ttlSlack keeps a mark alive a little past its window so it cleans itself up.
const ttlSlack = 5 * time.Second

func markKey(user, family string) string {
	return store.Key("cooldown", family, user)
}

// Gate throttles repeated actions of the same family by the same user.
type Gate struct {
	client redis.UniversalClient
	now    func() time.Time
}

// New creates a gate. now may be nil to use the wall clock.
func New(client redis.UniversalClient, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{client: client, now: now}
}

// Check reports the time left on the user's cooldown for family.
// active is false when no cooldown applies.
func (g *Gate) Check(ctx context.Context, user, family string, window time.Duration) (remaining time.Duration, active bool, err error) {
	v, err := g.client.Get(ctx, markKey(user, family)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cooldown %s/%s: %w", family, user, err)
	}
	last, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	remaining = window - g.now().Sub(time.UnixMilli(last))
	if remaining <= 0 {
		return 0, false, nil
	}
	return remaining, true, nil
}

// Mark records now as the last time the user fired family.
func (g *Gate) Mark(ctx context.Context, user, family string, window time.Duration) error {
	ts := strconv.FormatInt(g.now().UnixMilli(), 10)
	if err := g.client.Set(ctx, markKey(user, family), ts, window+ttlSlack).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown %s/%s: %w", family, user, err)
	}
	return nil
}

// Acquire is the check-then-set every wager-initiating action performs.
// It sets the mark with SET NX so two simultaneous calls cannot both pass.
// When the user is still cooling down it returns ok == false and the time left.
func (g *Gate) Acquire(ctx context.Context, user, family string, window time.Duration) (remaining time.Duration, ok bool, err error) {
	if window <= 0 {
		return 0, true, nil
	}
	key := markKey(user, family)
	ts := strconv.FormatInt(g.now().UnixMilli(), 10)

	set, err := g.client.SetNX(ctx, key, ts, window+ttlSlack).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to acquire cooldown %s/%s: %w", family, user, err)
	}
	if set {
		return 0, true, nil
	}

	remaining, active, err := g.Check(ctx, user, family, window)
	if err != nil {
		return 0, false, err
	}
	if active {
		logrus.Debugf("cooldown %s active for %s: %v left", family, user, remaining)
		return remaining, false, nil
	}
	// The mark is stale but not yet expired by TTL.
	if err := g.Mark(ctx, user, family, window); err != nil {
		return 0, false, err
	}
	return 0, true, nil
}

// Release clears the mark, used when the action it guarded did not go through.
func (g *Gate) Release(ctx context.Context, user, family string) error {
	return store.Delete(ctx, g.client, markKey(user, family))
}

// Seconds rounds a remaining duration up to whole seconds for display.
func Seconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
