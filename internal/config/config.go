package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"colonos/internal/app"
	"colonos/internal/domain"
)

// GameConfig holds the tunable rules and bot settings of a deployment.
type GameConfig struct {
	BankTradeRatio     int `json:"bank_trade_ratio"`
	MaxPlayers         int `json:"max_players"`
	VictoryPointsToWin int `json:"victory_points_to_win"`
	// AutoRoll rolls the dice for a player as soon as their turn starts. Defaults to true.
	AutoRoll           *bool                   `json:"auto_roll,omitempty"`
	InitialSettlements []domain.VertexPosition `json:"initial_settlements"`
	Colours            []string                `json:"colours"`
	BotsEnabled        bool                    `json:"bots_enabled"`
	// BotMaxSteps bounds how many actions a bot may take in one turn.
	BotMaxSteps int `json:"bot_max_steps"`
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
		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ParseGameConfig decodes and checks a JSON game configuration.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *GameConfig) validate() error {
	if len(c.Colours) > 0 && len(c.InitialSettlements) != len(c.Colours) {
		return fmt.Errorf("game config: %d colours but %d initial settlements", len(c.Colours), len(c.InitialSettlements))
	}
	colours := len(c.Colours)
	if colours == 0 {
		colours = len(app.DefaultRules().Colours)
	}
	if c.MaxPlayers != 0 && (c.MaxPlayers < 2 || c.MaxPlayers > colours) {
		return fmt.Errorf("game config: max_players %d must be between 2 and %d", c.MaxPlayers, colours)
	}
	for _, v := range c.InitialSettlements {
		if !domain.ValidVertex(v) {
			return fmt.Errorf("game config: initial settlement %s: %w", v, domain.ErrPositionNotFound)
		}
	}
	return nil
}

// GetGameConfig returns the global game configuration, or the defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Default mirrors app.DefaultRules with bots disabled.
func Default() *GameConfig {
	r := app.DefaultRules()
	auto := true
	return &GameConfig{
		BankTradeRatio:     r.BankTradeRatio,
		MaxPlayers:         r.Seats(),
		VictoryPointsToWin: r.VictoryPointsToWin,
		AutoRoll:           &auto,
		InitialSettlements: r.InitialSettlements,
		Colours:            r.Colours,
		BotMaxSteps:        20,
	}
}

// Rules converts the configuration for the game service.
func (c *GameConfig) Rules() app.Rules {
	return app.Rules{
		BankTradeRatio:     c.BankTradeRatio,
		VictoryPointsToWin: c.VictoryPointsToWin,
		MaxPlayers:         c.MaxPlayers,
		ManualRoll:         c.AutoRoll != nil && !*c.AutoRoll,
		Colours:            c.Colours,
		InitialSettlements: c.InitialSettlements,
	}
}

// MaxBotSteps returns BotMaxSteps or its default.
func (c *GameConfig) MaxBotSteps() int {
	if c.BotMaxSteps <= 0 {
		return 20
	}
	return c.BotMaxSteps
}
