// Package leaderboard projects ledger balances into a ranked top-N view.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/ledger"
	"github.com/streamkit/tazos-engine/pkg/names"
)

// Entry is one ranked row.
type Entry struct {
	Rank    int
	User    string
	Display string
	Balance int64
}

// Board reads the ledger ranking.
type Board struct {
	ledger   *ledger.Ledger
	names    *names.Registry
	excluded map[string]bool
}

// New creates a leaderboard. excluded holds normalized usernames (bots,
// the broadcaster) that never appear.
func New(l *ledger.Ledger, reg *names.Registry, excluded []string) *Board {
	ex := make(map[string]bool, len(excluded))
	for _, u := range excluded {
		ex[names.Normalize(u)] = true
	}
	return &Board{ledger: l, names: reg, excluded: ex}
}

// Top returns the n richest users. A non-nil exclude set replaces the
// configured one, letting callers pass a pre-fetched list.
func (b *Board) Top(ctx context.Context, n int, exclude map[string]bool) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	if exclude == nil {
		exclude = b.excluded
	}

	var out []Entry
	page := int64(n + len(exclude))
	for start := int64(0); len(out) < n; start += page {
		zs, err := b.ledger.Ranked(ctx, start, start+page-1)
		if err != nil {
			return nil, err
		}
		for _, z := range zs {
			user, _ := z.Member.(string)
			if user == "" || exclude[user] {
				continue
			}
			out = append(out, Entry{Rank: len(out) + 1, User: user, Balance: int64(z.Score)})
			if len(out) == n {
				break
			}
		}
		if int64(len(zs)) < page {
			break
		}
	}

	b.fillNames(ctx, out)
	return out, nil
}

func (b *Board) fillNames(ctx context.Context, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	users := make([]string, len(entries))
	for i, e := range entries {
		users[i] = e.User
		entries[i].Display = e.User
	}
	if b.names == nil {
		return
	}
	display, err := b.names.Lookup(ctx, users...)
	if err != nil {
		logrus.Warnf("leaderboard: display names unavailable: %v", err)
		return
	}
	for i := range entries {
		if d, ok := display[entries[i].User]; ok {
			entries[i].Display = d
		}
	}
}

// Format renders entries as a single chat line.
func Format(entries []Entry) string {
	if len(entries) == 0 {
		return "No tazos on the board yet."
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%d. %s (%d)", e.Rank, e.Display, e.Balance)
	}
	return "🏆 " + strings.Join(parts, " | ")
}
