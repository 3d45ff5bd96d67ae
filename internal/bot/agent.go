package bot

import (
	"context"

	"colonos/internal/app"
	"colonos/internal/domain"
)

// GameService is the part of the game service a bot plays through.
type GameService interface {
	GameInfo(ctx context.Context, gameID int64) (app.GameInfo, error)
	PlayerInfo(ctx context.Context, gameID int64, username string) (app.PlayerInfo, error)
	LegalActions(ctx context.Context, gameID int64, username string) ([]app.LegalAction, error)
	Perform(ctx context.Context, gameID int64, username string, a app.Action) ([]app.Event, error)
}

// Agent represents an autonomous bot player.
type Agent struct {
	Username string
	Strategy Brain
}

// Observe builds the agent's view of gameID. An empty Legal list means it is not the agent's turn.
func (a *Agent) Observe(ctx context.Context, svc GameService, gameID int64) (Turn, error) {
	legal, err := svc.LegalActions(ctx, gameID, a.Username)
	if err != nil {
		return Turn{}, err
	}
	info, err := svc.PlayerInfo(ctx, gameID, a.Username)
	if err != nil {
		return Turn{}, err
	}
	hand := make([]domain.Terrain, 0, len(info.Resources))
	for _, r := range info.Resources {
		hand = append(hand, domain.Terrain(r))
	}
	return Turn{Username: a.Username, Legal: legal, Hand: hand}, nil
}

// Play asks the agent to calculate its move for the given view.
func (a *Agent) Play(turn Turn) (app.Action, error) {
	if len(turn.Legal) == 0 {
		return app.Action{}, ErrNoLegalAction
	}
	return a.Strategy.CalculateMove(turn)
}
