package gameconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	yamlContent := `
ledger:
  startingBalance: 250
cooldowns:
  slots: 45s
blackjack:
  sessionTimeout: 2m
streaks:
  winMilestones:
    4: 40
`
	cfg, err := Parse([]byte(yamlContent))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Ledger.StartingBalance != 250 {
		t.Errorf("StartingBalance = %d, expected 250", cfg.Ledger.StartingBalance)
	}
	if cfg.Ledger.MinBet != 10 {
		t.Errorf("MinBet = %d, expected default 10", cfg.Ledger.MinBet)
	}
	if got := cfg.CooldownFor(FeatureSlots); got != 45*time.Second {
		t.Errorf("CooldownFor(slots) = %v, expected 45s", got)
	}
	if got := cfg.CooldownFor(FeatureCrash); got != 15*time.Second {
		t.Errorf("CooldownFor(crash) = %v, expected default 15s", got)
	}
	if cfg.Blackjack.SessionTimeout != 2*time.Minute {
		t.Errorf("SessionTimeout = %v, expected 2m", cfg.Blackjack.SessionTimeout)
	}
	if cfg.Streaks.WinMilestones[4] != 40 {
		t.Errorf("WinMilestones[4] = %d, expected 40", cfg.Streaks.WinMilestones[4])
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TAZOS_TEST_MIN_BET", "25")

	cfg, err := Parse([]byte("ledger:\n  minBet: ${TAZOS_TEST_MIN_BET}\n  startingBalance: ${TAZOS_TEST_UNSET:300}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Ledger.MinBet != 25 {
		t.Errorf("MinBet = %d, expected 25 from env", cfg.Ledger.MinBet)
	}
	if cfg.Ledger.StartingBalance != 300 {
		t.Errorf("StartingBalance = %d, expected default 300", cfg.Ledger.StartingBalance)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad min bet", "ledger:\n  minBet: 0\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"tiers not summing to 100", "raffle:\n  tiers:\n    - {name: only, chance: 50, min: 1, max: 2}\n"},
		{"inverted crash targets", "crash:\n  minTarget: 3\n  defaultTarget: 2\n"},
		{"empty roster", "boss:\n  roster: []\n"},
		{"malformed yaml", "ledger: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	if err := os.WriteFile(path, []byte("timezone: UTC\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %s, expected UTC", cfg.Timezone)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() on missing file expected error")
	}
}

func TestLoadConfig_ShippedFileMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig("../../config/games.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	def := Default()
	if !reflect.DeepEqual(cfg.Slots, def.Slots) {
		t.Errorf("slots = %+v, expected defaults", cfg.Slots)
	}
	if !reflect.DeepEqual(cfg.Boss, def.Boss) {
		t.Errorf("boss = %+v, expected defaults", cfg.Boss)
	}
	if !reflect.DeepEqual(cfg.Cooldowns, def.Cooldowns) {
		t.Errorf("cooldowns = %v, expected %v", cfg.Cooldowns, def.Cooldowns)
	}
	if cfg.CooldownFor(FeatureHeist) <= 0 {
		t.Error("expected a heist join cooldown")
	}
	if !reflect.DeepEqual(cfg.Raffle, def.Raffle) || !reflect.DeepEqual(cfg.Streaks, def.Streaks) {
		t.Error("raffle or streak tuning drifted from defaults")
	}
	if len(cfg.ExcludedUsers) == 0 {
		t.Error("expected excluded users from the shipped file")
	}
}
