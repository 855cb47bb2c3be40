package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// GameConfig holds the tunable game rules, loaded once per process from a
// JSON file shipped next to the module binary.
type GameConfig struct {
	TurnDurationSeconds int  `json:"turn_duration_seconds"`
	MaxStrikes          int  `json:"max_strikes"`
	MinPlayers          int  `json:"min_players"`
	ForbidDeadLetters   bool `json:"forbid_dead_letters"`

	BotsEnabled bool `json:"bots_enabled"`
	// BotLevel is "easy" or "smart".
	BotLevel           string `json:"bot_level"`
	BotMinDelaySeconds int    `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int    `json:"bot_max_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// TurnDuration returns the per-turn window, or the standard 30 seconds when
// no config was loaded or the value is unset.
func TurnDuration() time.Duration {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.TurnDurationSeconds) * time.Second
}

// StrikeLimit returns the strikes that eliminate a player. Defaults to 2.
func StrikeLimit() int {
	if cfg == nil || cfg.MaxStrikes <= 0 {
		return 2
	}
	return cfg.MaxStrikes
}

// MinPlayers returns the smallest lobby that may start a game. Defaults to 2.
func MinPlayers() int {
	if cfg == nil || cfg.MinPlayers <= 0 {
		return 2
	}
	return cfg.MinPlayers
}

// ForbidDeadLetters reports whether moves ending on a letter with no unused
// continuation are rejected. Off unless enabled in the config file.
func ForbidDeadLetters() bool {
	return cfg != nil && cfg.ForbidDeadLetters
}

// BotDelays returns the delay window bots wait before answering their turn.
func BotDelays() (time.Duration, time.Duration) {
	min, max := 2, 6
	if cfg != nil && cfg.BotMinDelaySeconds > 0 {
		min = cfg.BotMinDelaySeconds
	}
	if cfg != nil && cfg.BotMaxDelaySeconds >= min {
		max = cfg.BotMaxDelaySeconds
	}
	if max < min {
		max = min
	}
	return time.Duration(min) * time.Second, time.Duration(max) * time.Second
}
