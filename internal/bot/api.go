package bot

import (
	"colonos/internal/app"
	"colonos/internal/domain"
)

// Turn is what a bot sees when asked to act: its options and its hand.
type Turn struct {
	Username string
	Legal    []app.LegalAction
	Hand     []domain.Terrain
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(turn Turn) (app.Action, error)
}
