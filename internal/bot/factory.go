package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelGreedy
)

// LevelOf maps an identity difficulty to a level. Unknown difficulties play greedily.
func LevelOf(difficulty string) BotLevel {
	if strings.EqualFold(difficulty, "easy") {
		return BotLevelEasy
	}
	return BotLevelGreedy
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelGreedy:
		return &GreedyBot{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
