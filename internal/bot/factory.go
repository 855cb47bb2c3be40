package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// BotLevel selects a strategy for a bot agent.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelSmart
)

// NewBrain creates a strategy for the given level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelEasy:
		return &EasyBot{rng: rng}, nil
	case BotLevelSmart:
		return &SmartBot{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// NewAgent creates the nth bot agent for a session.
func NewAgent(n int, level BotLevel, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	identity := GetBotIdentity(n)
	return &Agent{
		ID:       identity.UserID,
		Name:     identity.DisplayName,
		Strategy: brain,
	}, nil
}
