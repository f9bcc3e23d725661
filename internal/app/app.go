// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/internal/bootstrap"
	"github.com/streamkit/tazos-engine/internal/config"
	"github.com/streamkit/tazos-engine/internal/server"
	"github.com/streamkit/tazos-engine/pkg/metrics"
	"github.com/streamkit/tazos-engine/pkg/store"
	"github.com/streamkit/tazos-engine/pkg/sweeper"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	sweeper           *sweeper.Sweeper
	closePublisher    func()
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
// Redis, game config, event broadcast, games and commands, servers, telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// Step 1: Redis
	client, err := store.InitRedisClient(ctx, store.Options{
		Host:       cfg.RedisHost,
		Port:       cfg.RedisPort,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		MaxRetries: cfg.RedisMaxRetries,
		RetryDelay: time.Duration(cfg.RedisRetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.redisClient = client

	// Step 2: game tuning
	gameCfg, err := bootstrap.LoadGameConfig(cfg.GamesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load game config from %s: %w", cfg.GamesConfigPath, err)
	}

	// Step 3: event broadcast
	pub, closePub, err := bootstrap.InitPublisher(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init event publisher: %w", err)
	}
	app.closePublisher = closePub

	// Step 4: games, commands, sweeper
	m := metrics.New()
	deps := bootstrap.InitDeps(client, gameCfg, pub, m, cfg.SettingsTTL, cfg.RandomSeed)
	handlers, err := bootstrap.InitHandlers(deps)
	if err != nil {
		return nil, err
	}
	app.sweeper = bootstrap.InitSweeper(handlers.Games, cfg.SweepInterval)

	// Step 5: servers
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, handlers.Service, store.NewHealthChecker(client))
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(m.Register); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// Step 6: telemetry
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelZipkinEndpoint, cfg.ServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}
