package app

import "colonos/internal/domain"

// Rules are the tunable parameters of a game.
type Rules struct {
	BankTradeRatio     int
	VictoryPointsToWin int
	// ManualRoll requires an explicit roll_dice action instead of rolling
	// when a turn starts.
	ManualRoll bool
	// MaxPlayers is the number of players a game seats. Zero seats one
	// player per colour.
	MaxPlayers int
	// Colours are assigned by seat, owner first, and InitialSettlements by
	// turn. There must be at least MaxPlayers of each.
	Colours            []string
	InitialSettlements []domain.VertexPosition
}

// DefaultRules returns the standard four player rules.
func DefaultRules() Rules {
	return Rules{
		BankTradeRatio:     4,
		VictoryPointsToWin: 10,
		Colours:            []string{"blue", "red", "yellow", "green"},
		InitialSettlements: []domain.VertexPosition{
			{Ring: 0, Index: 0},
			{Ring: 0, Index: 2},
			{Ring: 0, Index: 4},
			{Ring: 1, Index: 10},
		},
	}
}

// Seats is the number of players a game needs.
func (r Rules) Seats() int {
	if r.MaxPlayers > 0 && r.MaxPlayers <= len(r.Colours) {
		return r.MaxPlayers
	}
	return len(r.Colours)
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.BankTradeRatio <= 0 {
		r.BankTradeRatio = d.BankTradeRatio
	}
	if r.VictoryPointsToWin <= 0 {
		r.VictoryPointsToWin = d.VictoryPointsToWin
	}
	if len(r.Colours) == 0 || len(r.InitialSettlements) < len(r.Colours) {
		r.Colours = d.Colours
		r.InitialSettlements = d.InitialSettlements
	}
	if r.MaxPlayers < 2 || r.MaxPlayers > len(r.Colours) {
		r.MaxPlayers = len(r.Colours)
	}
	return r
}
