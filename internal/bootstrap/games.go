// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/cooldown"
	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/ledger"
	"github.com/streamkit/tazos-engine/pkg/metrics"
	"github.com/streamkit/tazos-engine/pkg/names"
	"github.com/streamkit/tazos-engine/pkg/rng"
	"github.com/streamkit/tazos-engine/pkg/settings"
	"github.com/streamkit/tazos-engine/pkg/streak"
)

// LoadGameConfig reads the game tuning file. A missing file falls back to
// the built-in defaults; a malformed one is an error.
func LoadGameConfig(path string) (*gameconfig.Config, error) {
	cfg, err := gameconfig.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("game config %s not found, using built-in defaults", path)
		return gameconfig.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	logrus.Infof("loaded game configuration from %s", path)
	return cfg, nil
}

// InitPublisher connects to NATS when url is set. The returned close
// function is never nil.
func InitPublisher(url string) (eventbus.Publisher, func(), error) {
	if url == "" {
		logrus.Info("NATS_URL not set, event broadcast disabled")
		return eventbus.Noop{}, func() {}, nil
	}
	nc, err := eventbus.Connect(url)
	if err != nil {
		return nil, nil, err
	}
	return eventbus.NewNATSPublisher(nc), func() {
		if err := nc.Drain(); err != nil {
			logrus.Errorf("NATS drain error: %v", err)
		}
	}, nil
}

// InitDeps assembles the collaborators every game shares.
func InitDeps(
	client redis.UniversalClient,
	cfg *gameconfig.Config,
	pub eventbus.Publisher,
	m *metrics.Metrics,
	settingsTTL time.Duration,
	seed int64,
) *game.Deps {
	st := settings.New(client, cfg.Features, cfg.Timezone, settingsTTL)

	var src rng.Source
	if seed != 0 {
		src = rng.New(seed)
		logrus.Warnf("game RNG seeded with fixed seed %d", seed)
	} else {
		src = rng.NewFromTime()
	}

	l := ledger.New(client, ledger.Config{
		StartingBalance: cfg.Ledger.StartingBalance,
		MinBet:          cfg.Ledger.MinBet,
	})
	tracker := streak.New(client, l, streak.Options{
		WinMilestones:   cfg.Streaks.WinMilestones,
		DailyMilestones: cfg.Streaks.DailyMilestones,
		Location:        st.Location,
		Publisher:       pub,
	})

	logrus.Infof("initialized ledger (start %d, min bet %d) and streaks in %s",
		cfg.Ledger.StartingBalance, cfg.Ledger.MinBet, st.Location())

	return &game.Deps{
		Store:     client,
		Config:    cfg,
		Ledger:    l,
		Cooldowns: cooldown.New(client, time.Now),
		Streaks:   tracker,
		Names:     names.NewRegistry(client),
		Settings:  st,
		Rand:      src,
		Now:       time.Now,
		Publisher: pub,
		Metrics:   m,
	}
}
