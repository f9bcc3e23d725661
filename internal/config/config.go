// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds the process configuration loaded from environment variables.
// Game tuning lives in the YAML file at GamesConfigPath.
type Config struct {
	// Server
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"TazosEngine"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// Event broadcast. Empty disables publishing.
	NATSURL string `env:"NATS_URL"`

	// Games
	GamesConfigPath string        `env:"GAMES_CONFIG_PATH" envDefault:"config/games.yaml"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"5s"`
	SettingsTTL     time.Duration `env:"SETTINGS_CACHE_TTL" envDefault:"30s"`
	// RandomSeed fixes the game RNG; 0 seeds from the clock.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`

	// Telemetry
	OtelEnabled        bool   `env:"OTEL_ENABLED" envDefault:"true"`
	OtelZipkinEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT"`
}
