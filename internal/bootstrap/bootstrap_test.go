// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/streamkit/tazos-engine/pkg/eventbus"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/gameconfig"
	"github.com/streamkit/tazos-engine/pkg/metrics"
)

func TestLoadGameConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadGameConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}
	if cfg.Ledger.StartingBalance != gameconfig.Default().Ledger.StartingBalance {
		t.Errorf("starting balance = %d", cfg.Ledger.StartingBalance)
	}
}

func TestLoadGameConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	if err := os.WriteFile(path, []byte("ledger: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGameConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestInitPublisher_NoURL(t *testing.T) {
	pub, closeFn, err := InitPublisher("")
	if err != nil {
		t.Fatalf("InitPublisher() error = %v", err)
	}
	defer closeFn()
	if _, ok := pub.(eventbus.Noop); !ok {
		t.Errorf("publisher = %T, expected Noop", pub)
	}
}

func TestInitHandlers_WiresEverything(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	deps := InitDeps(client, gameconfig.Default(), eventbus.Noop{}, metrics.New(), time.Minute, 1)
	h, err := InitHandlers(deps)
	if err != nil {
		t.Fatalf("InitHandlers() error = %v", err)
	}
	if h.Games.Events.Count() != 5 {
		t.Errorf("events = %d, expected 5", h.Games.Events.Count())
	}

	reply := h.Dispatcher.Execute(context.Background(), "alice", "balance", nil, false)
	if reply.Status != game.StatusOK {
		t.Errorf("balance reply = %+v", reply)
	}

	res := InitSweeper(h.Games, time.Second).Sweep(context.Background())
	if len(res.Resolved) != 0 || res.Expired != 0 {
		t.Errorf("sweep on an idle store = %+v", res)
	}
}
