package gameconfig

import "time"

// Default returns the tuning the service ships with.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			StartingBalance: 100,
			MinBet:          10,
		},
		Timezone:      "America/New_York",
		ExcludedUsers: []string{},
		Features: map[string]bool{
			FeatureBlackjack: true,
			FeatureCoinflip:  true,
			FeatureRoulette:  true,
			FeatureDice:      true,
			FeatureSlots:     true,
			FeatureCrash:     true,
			FeatureHighCard:  true,
			FeatureDuel:      true,
			FeatureTransfer:  true,
			FeatureHeist:     true,
			FeatureRaffle:    true,
			FeatureDrop:      true,
			FeatureChallenge: true,
			FeatureBoss:      true,
			FeatureStreaks:   true,
		},
		Cooldowns: map[string]time.Duration{
			FeatureBlackjack: 10 * time.Second,
			FeatureCoinflip:  10 * time.Second,
			FeatureRoulette:  10 * time.Second,
			FeatureDice:      10 * time.Second,
			FeatureSlots:     10 * time.Second,
			FeatureCrash:     15 * time.Second,
			FeatureHighCard:  10 * time.Second,
			FeatureDuel:      30 * time.Second,
			FeatureTransfer:  10 * time.Second,
			FeatureHeist:     30 * time.Second,
		},
		Blackjack: BlackjackConfig{SessionTimeout: 90 * time.Second},
		Slots: SlotsConfig{Symbols: []SlotSymbol{
			{Symbol: "🍒", Multiplier: 3, Weight: 30},
			{Symbol: "🍋", Multiplier: 4, Weight: 25},
			{Symbol: "🍇", Multiplier: 5, Weight: 20},
			{Symbol: "🔔", Multiplier: 8, Weight: 12},
			{Symbol: "⭐", Multiplier: 12, Weight: 8},
			{Symbol: "💎", Multiplier: 25, Weight: 5},
		}},
		Crash:   CrashConfig{DefaultTarget: 2.0, MinTarget: 1.1, MaxTarget: 100},
		Duel:    WagerConfig{Window: 60 * time.Second},
		Request: WagerConfig{Window: 60 * time.Second},
		Heist: HeistConfig{
			JoinWindow:    90 * time.Second,
			MinGap:        10 * time.Minute,
			BasePct:       20,
			PerMemberPct:  10,
			MaxPct:        75,
			MinMultiplier: 1.5,
			MaxMultiplier: 2.5,
		},
		Raffle: RaffleConfig{
			EntryWindow:  60 * time.Second,
			MinGap:       15 * time.Minute,
			Keywords:     []string{"tazos", "jackpot", "lucky", "shiny", "golden", "fortune", "treasure"},
			RecentMemory: 3,
			Tiers: []PrizeTier{
				{Name: "small", Chance: 60, Min: 50, Max: 150},
				{Name: "mid", Chance: 30, Min: 150, Max: 400},
				{Name: "large", Chance: 10, Min: 400, Max: 1000},
			},
		},
		Drop: DropConfig{
			Window:       60 * time.Second,
			MinGap:       10 * time.Minute,
			Keywords:     []string{"grab", "catch", "snag", "loot", "yoink"},
			RecentMemory: 2,
			MaxWinners:   3,
			Prize:        50,
		},
		Challenge: ChallengeConfig{
			Window:     5 * time.Minute,
			MinGap:     20 * time.Minute,
			Target:     100,
			PerUserCap: 10,
			MinLength:  2,
			Prize:      100,
		},
		Boss: BossConfig{
			Window: 5 * time.Minute,
			MinGap: 20 * time.Minute,
			Roster: []BossDef{
				{Name: "Stone Golem", MaxHP: 500, Weakness: "magic", Resistance: "physical"},
				{Name: "Frost Wyrm", MaxHP: 600, Weakness: "fire", Resistance: "ice"},
				{Name: "Lava Titan", MaxHP: 650, Weakness: "ice", Resistance: "fire"},
				{Name: "Shadow Mage", MaxHP: 450, Weakness: "physical", Resistance: "magic"},
			},
			RecentMemory: 2,
			AttackWords: map[string][]string{
				"physical": {"punch", "kick", "slash", "smash", "stab"},
				"magic":    {"zap", "hex", "curse", "arcane", "spell"},
				"fire":     {"fireball", "burn", "flame", "ignite", "blaze"},
				"ice":      {"freeze", "frost", "blizzard", "chill", "icicle"},
			},
			AttackCooldown: 10 * time.Second,
			MinDamage:      5,
			MaxDamage:      25,
			RewardPool:     1000,
			MinReward:      10,
		},
		Streaks: StreakConfig{
			WinMilestones:   map[int]int64{3: 25, 5: 50, 10: 150, 15: 300},
			DailyMilestones: map[int]int64{3: 50, 7: 150, 14: 300, 30: 1000},
		},
	}
}
