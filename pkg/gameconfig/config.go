package gameconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Feature names double as cooldown families and feature-flag keys.
const (
	FeatureBlackjack = "blackjack"
	FeatureCoinflip  = "coinflip"
	FeatureRoulette  = "roulette"
	FeatureDice      = "dice"
	FeatureSlots     = "slots"
	FeatureCrash     = "crash"
	FeatureHighCard  = "highcard"
	FeatureDuel      = "duel"
	FeatureTransfer  = "transfer"
	FeatureHeist     = "heist"
	FeatureRaffle    = "raffle"
	FeatureDrop      = "drop"
	FeatureChallenge = "challenge"
	FeatureBoss      = "boss"
	FeatureStreaks   = "streaks"
)

// Config is the complete game tuning, loaded from YAML.
type Config struct {
	Ledger        LedgerConfig             `yaml:"ledger"`
	Timezone      string                   `yaml:"timezone"`
	ExcludedUsers []string                 `yaml:"excludedUsers"`
	Features      map[string]bool          `yaml:"features"`
	Cooldowns     map[string]time.Duration `yaml:"cooldowns"`
	Blackjack     BlackjackConfig          `yaml:"blackjack"`
	Slots         SlotsConfig              `yaml:"slots"`
	Crash         CrashConfig              `yaml:"crash"`
	Duel          WagerConfig              `yaml:"duel"`
	Request       WagerConfig              `yaml:"request"`
	Heist         HeistConfig              `yaml:"heist"`
	Raffle        RaffleConfig             `yaml:"raffle"`
	Drop          DropConfig               `yaml:"drop"`
	Challenge     ChallengeConfig          `yaml:"challenge"`
	Boss          BossConfig               `yaml:"boss"`
	Streaks       StreakConfig             `yaml:"streaks"`
}

type LedgerConfig struct {
	StartingBalance int64 `yaml:"startingBalance"`
	MinBet          int64 `yaml:"minBet"`
}

type BlackjackConfig struct {
	SessionTimeout time.Duration `yaml:"sessionTimeout"`
}

type SlotSymbol struct {
	Symbol     string `yaml:"symbol"`
	Multiplier int64  `yaml:"multiplier"`
	Weight     int    `yaml:"weight"`
}

type SlotsConfig struct {
	Symbols []SlotSymbol `yaml:"symbols"`
}

type CrashConfig struct {
	DefaultTarget float64 `yaml:"defaultTarget"`
	MinTarget     float64 `yaml:"minTarget"`
	MaxTarget     float64 `yaml:"maxTarget"`
}

type WagerConfig struct {
	Window time.Duration `yaml:"window"`
}

type HeistConfig struct {
	JoinWindow    time.Duration `yaml:"joinWindow"`
	MinGap        time.Duration `yaml:"minGap"`
	BasePct       int           `yaml:"basePct"`
	PerMemberPct  int           `yaml:"perMemberPct"`
	MaxPct        int           `yaml:"maxPct"`
	MinMultiplier float64       `yaml:"minMultiplier"`
	MaxMultiplier float64       `yaml:"maxMultiplier"`
}

type PrizeTier struct {
	Name   string `yaml:"name"`
	Chance int    `yaml:"chance"`
	Min    int64  `yaml:"min"`
	Max    int64  `yaml:"max"`
}

type RaffleConfig struct {
	EntryWindow  time.Duration `yaml:"entryWindow"`
	MinGap       time.Duration `yaml:"minGap"`
	Keywords     []string      `yaml:"keywords"`
	RecentMemory int           `yaml:"recentMemory"`
	Tiers        []PrizeTier   `yaml:"tiers"`
}

type DropConfig struct {
	Window       time.Duration `yaml:"window"`
	MinGap       time.Duration `yaml:"minGap"`
	Keywords     []string      `yaml:"keywords"`
	RecentMemory int           `yaml:"recentMemory"`
	MaxWinners   int           `yaml:"maxWinners"`
	Prize        int64         `yaml:"prize"`
}

type ChallengeConfig struct {
	Window     time.Duration `yaml:"window"`
	MinGap     time.Duration `yaml:"minGap"`
	Target     int           `yaml:"target"`
	PerUserCap int           `yaml:"perUserCap"`
	MinLength  int           `yaml:"minLength"`
	Prize      int64         `yaml:"prize"`
}

type BossDef struct {
	Name       string `yaml:"name"`
	MaxHP      int    `yaml:"maxHp"`
	Weakness   string `yaml:"weakness"`
	Resistance string `yaml:"resistance"`
}

type BossConfig struct {
	Window         time.Duration       `yaml:"window"`
	MinGap         time.Duration       `yaml:"minGap"`
	Roster         []BossDef           `yaml:"roster"`
	RecentMemory   int                 `yaml:"recentMemory"`
	AttackWords    map[string][]string `yaml:"attackWords"`
	AttackCooldown time.Duration       `yaml:"attackCooldown"`
	MinDamage      int                 `yaml:"minDamage"`
	MaxDamage      int                 `yaml:"maxDamage"`
	RewardPool     int64               `yaml:"rewardPool"`
	MinReward      int64               `yaml:"minReward"`
}

type StreakConfig struct {
	WinMilestones   map[int]int64 `yaml:"winMilestones"`
	DailyMilestones map[int]int64 `yaml:"dailyMilestones"`
}

// CooldownFor returns the configured window for an action family, or zero.
func (c *Config) CooldownFor(family string) time.Duration {
	return c.Cooldowns[family]
}

// LoadConfig loads game tuning from a YAML file on top of Default().
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("ledger.startingBalance must be non-negative")
	}
	if c.Ledger.MinBet < 1 {
		return fmt.Errorf("ledger.minBet must be at least 1")
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
		}
	}
	if len(c.Slots.Symbols) == 0 {
		return fmt.Errorf("slots.symbols must not be empty")
	}
	for _, s := range c.Slots.Symbols {
		if s.Weight <= 0 || s.Multiplier <= 0 {
			return fmt.Errorf("slot symbol %s needs positive weight and multiplier", s.Symbol)
		}
	}
	if c.Crash.MinTarget < 1 || c.Crash.DefaultTarget < c.Crash.MinTarget {
		return fmt.Errorf("crash targets must satisfy 1 <= minTarget <= defaultTarget")
	}
	if c.Heist.MinMultiplier > c.Heist.MaxMultiplier {
		return fmt.Errorf("heist.minMultiplier exceeds maxMultiplier")
	}
	if len(c.Raffle.Keywords) == 0 || len(c.Drop.Keywords) == 0 {
		return fmt.Errorf("raffle and drop need at least one keyword")
	}
	total := 0
	for _, tier := range c.Raffle.Tiers {
		if tier.Min > tier.Max {
			return fmt.Errorf("raffle tier %s has min > max", tier.Name)
		}
		total += tier.Chance
	}
	if total != 100 {
		return fmt.Errorf("raffle tier chances must sum to 100, got %d", total)
	}
	if c.Drop.MaxWinners < 1 {
		return fmt.Errorf("drop.maxWinners must be at least 1")
	}
	if c.Challenge.Target < 1 || c.Challenge.PerUserCap < 1 {
		return fmt.Errorf("challenge target and perUserCap must be positive")
	}
	if len(c.Boss.Roster) == 0 {
		return fmt.Errorf("boss.roster must not be empty")
	}
	for _, b := range c.Boss.Roster {
		if b.MaxHP < 1 {
			return fmt.Errorf("boss %s needs positive maxHp", b.Name)
		}
	}
	if c.Boss.MinDamage < 1 || c.Boss.MaxDamage < c.Boss.MinDamage {
		return fmt.Errorf("boss damage range is invalid")
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
