package names

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"golang.org/x/text/cases"

	"github.com/streamkit/tazos-engine/pkg/store"
)

var displayNamesKey = store.Key("display_names")

// Normalize turns a chat handle into the key every store uses:
// trimmed, without a leading "@", case-folded.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return cases.Fold().String(s)
}

// Registry remembers the original casing of usernames for display.
type Registry struct {
	client redis.UniversalClient
}

func NewRegistry(client redis.UniversalClient) *Registry {
	return &Registry{client: client}
}

// Remember stores display under its normalized key.
func (r *Registry) Remember(ctx context.Context, display string) error {
	display = strings.TrimPrefix(strings.TrimSpace(display), "@")
	user := Normalize(display)
	if user == "" {
		return nil
	}
	if err := r.client.HSet(ctx, displayNamesKey, user, display).Err(); err != nil {
		return fmt.Errorf("failed to remember display name for %s: %w", user, err)
	}
	return nil
}

// Lookup maps normalized usernames to their display names.
// Users never seen map to themselves.
func (r *Registry) Lookup(ctx context.Context, users ...string) (map[string]string, error) {
	out := make(map[string]string, len(users))
	if len(users) == 0 {
		return out, nil
	}
	vals, err := r.client.HMGet(ctx, displayNamesKey, users...).Result()
	if err != nil {
		for _, u := range users {
			out[u] = u
		}
		return out, fmt.Errorf("failed to look up display names: %w", err)
	}
	for i, u := range users {
		if s, ok := vals[i].(string); ok && s != "" {
			out[u] = s
		} else {
			out[u] = u
		}
	}
	return out, nil
}

// Display returns one display name, falling back to user.
func (r *Registry) Display(ctx context.Context, user string) string {
	m, _ := r.Lookup(ctx, user)
	return m[user]
}
