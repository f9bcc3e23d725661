// Package streak tracks consecutive wins and daily participation, paying
// one-time ledger bonuses when a streak lands exactly on a milestone.
package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/ledger"
	"github.com/streamkit/tazos-engine/pkg/store"
)

const dateLayout = "2006-01-02"

func winKey(user string) string   { return store.Key("streak", "win", user) }
func dailyKey(user string) string { return store.Key("streak", "daily", user) }
func dailyMarkKey(user, date string) string {
	return store.Key("streak", "daily", "mark", user, date)
}

// Milestones maps an exact streak length to its bonus.
type Milestones map[int]int64

// Result describes a streak after an update.
type Result struct {
	Count int
	Bonus int64
}

// Daily is the participation streak record.
type Daily struct {
	Count    int    `json:"count"`
	LastDate string `json:"lastDate"`
}

// DailyResult describes a participation update.
type DailyResult struct {
	Credited bool
	Count    int
	Bonus    int64
}

// Tracker owns win and participation streaks.
type Tracker struct {
	client   redis.UniversalClient
	ledger   *ledger.Ledger
	win      Milestones
	daily    Milestones
	location func() *time.Location
	now      func() time.Time
	pub      eventbus.Publisher
}

// Options configures a Tracker.
type Options struct {
	WinMilestones   Milestones
	DailyMilestones Milestones
	// Location returns the reference timezone for calendar days. Defaults to UTC.
	Location  func() *time.Location
	Now       func() time.Time
	Publisher eventbus.Publisher
}

func New(client redis.UniversalClient, l *ledger.Ledger, opts Options) *Tracker {
	t := &Tracker{
		client:   client,
		ledger:   l,
		win:      opts.WinMilestones,
		daily:    opts.DailyMilestones,
		location: opts.Location,
		now:      opts.Now,
		pub:      opts.Publisher,
	}
	if t.location == nil {
		t.location = func() *time.Location { return time.UTC }
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.pub == nil {
		t.pub = eventbus.Noop{}
	}
	return t
}

// RecordWin increments the win streak and pays a milestone bonus on an exact match.
func (t *Tracker) RecordWin(ctx context.Context, user string) (Result, error) {
	n, err := t.client.Incr(ctx, winKey(user)).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment win streak for %s: %w", user, err)
	}
	res := Result{Count: int(n)}
	if bonus, ok := t.win[res.Count]; ok && bonus > 0 {
		res.Bonus = t.payBonus(ctx, user, "win", res.Count, bonus)
	}
	return res, nil
}

// RecordLoss resets the win streak.
func (t *Tracker) RecordLoss(ctx context.Context, user string) error {
	if err := t.client.Set(ctx, winKey(user), 0, 0).Err(); err != nil {
		return fmt.Errorf("failed to reset win streak for %s: %w", user, err)
	}
	return nil
}

// WinStreak returns the current win streak.
func (t *Tracker) WinStreak(ctx context.Context, user string) (int, error) {
	n, err := t.client.Get(ctx, winKey(user)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read win streak for %s: %w", user, err)
	}
	return n, nil
}

// Touch credits today's participation once per calendar day.
func (t *Tracker) Touch(ctx context.Context, user string) (DailyResult, error) {
	today := t.now().In(t.location())
	todayStr := today.Format(dateLayout)

	first, err := t.client.SetNX(ctx, dailyMarkKey(user, todayStr), 1, 48*time.Hour).Result()
	if err != nil {
		return DailyResult{}, fmt.Errorf("failed to mark participation for %s: %w", user, err)
	}
	if !first {
		rec, err := t.DailyStreak(ctx, user)
		return DailyResult{Count: rec.Count}, err
	}

	var rec Daily
	if _, err := store.GetJSON(ctx, t.client, dailyKey(user), &rec); err != nil {
		return DailyResult{}, err
	}
	if rec.LastDate == todayStr {
		return DailyResult{Count: rec.Count}, nil
	}

	yesterday := time.Date(today.Year(), today.Month(), today.Day()-1, 12, 0, 0, 0, today.Location()).Format(dateLayout)
	if rec.LastDate == yesterday {
		rec.Count++
	} else {
		rec.Count = 1
	}
	rec.LastDate = todayStr

	if err := store.SetJSON(ctx, t.client, dailyKey(user), rec, 0); err != nil {
		return DailyResult{}, err
	}

	res := DailyResult{Credited: true, Count: rec.Count}
	if bonus, ok := t.daily[rec.Count]; ok && bonus > 0 {
		res.Bonus = t.payBonus(ctx, user, "daily", rec.Count, bonus)
	}
	return res, nil
}

// DailyStreak returns the stored participation record.
func (t *Tracker) DailyStreak(ctx context.Context, user string) (Daily, error) {
	var rec Daily
	_, err := store.GetJSON(ctx, t.client, dailyKey(user), &rec)
	return rec, err
}

// payBonus credits a milestone bonus. Failures are logged and reported as zero.
func (t *Tracker) payBonus(ctx context.Context, user, kind string, count int, bonus int64) int64 {
	if _, err := t.ledger.Credit(ctx, user, bonus); err != nil {
		logrus.WithFields(logrus.Fields{
			"user":   user,
			"streak": kind,
			"count":  count,
		}).Errorf("failed to pay streak bonus: %v", err)
		return 0
	}
	if err := t.pub.Publish(ctx, eventbus.Event{
		Kind:   eventbus.KindMilestone,
		Source: kind,
		User:   user,
		Amount: bonus,
		Data:   map[string]interface{}{"count": count},
	}); err != nil {
		logrus.Warnf("failed to publish milestone for %s: %v", user, err)
	}
	return bonus
}
