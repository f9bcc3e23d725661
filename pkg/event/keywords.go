package event

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/streamkit/tazos-engine/pkg/rng"
	"github.com/streamkit/tazos-engine/pkg/store"
)

// recentList remembers the last few picks so the next pick can avoid them.
type recentList struct {
	client redis.UniversalClient
	key    string
	size   int
}

func newRecentList(client redis.UniversalClient, kind string, size int) *recentList {
	return &recentList{client: client, key: store.Key("event", kind, "recent"), size: size}
}

func (l *recentList) items(ctx context.Context) ([]string, error) {
	if l.size <= 0 {
		return nil, nil
	}
	out, err := l.client.LRange(ctx, l.key, 0, int64(l.size-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.key, err)
	}
	return out, nil
}

func (l *recentList) push(ctx context.Context, item string) error {
	if l.size <= 0 {
		return nil
	}
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, l.key, item)
		pipe.LTrim(ctx, l.key, 0, int64(l.size-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", l.key, err)
	}
	return nil
}

// pickFresh draws uniformly from pool, skipping anything in recent unless
// that would leave nothing to draw.
func pickFresh(src rng.Source, pool []string, recent []string) string {
	skip := make(map[string]bool, len(recent))
	for _, r := range recent {
		skip[r] = true
	}
	var fresh []string
	for _, p := range pool {
		if !skip[p] {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}
	return fresh[src.Intn(len(fresh))]
}

// pick chooses a fresh item and remembers it.
func (l *recentList) pick(ctx context.Context, src rng.Source, pool []string) (string, error) {
	recent, err := l.items(ctx)
	if err != nil {
		return "", err
	}
	choice := pickFresh(src, pool, recent)
	if err := l.push(ctx, choice); err != nil {
		return "", err
	}
	return choice, nil
}
