package bot

import (
	"context"
	"errors"
	"fmt"

	"colonos/internal/app"
	"colonos/internal/domain"
)

var (
	ErrNoLegalAction = errors.New("bot: no legal action")
	ErrStepLimit     = errors.New("bot: step limit reached")
)

// RoomService is the part of the lobby FillRoom needs.
type RoomService interface {
	GetRoom(ctx context.Context, id int64) (domain.Room, error)
	JoinRoom(ctx context.Context, id int64, username string) (domain.Room, []app.Event, error)
}

// FillRoom seats bots in the free seats of roomID, in pool order.
func FillRoom(ctx context.Context, svc RoomService, roomID int64) (domain.Room, []app.Event, error) {
	room, err := svc.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, nil, err
	}
	if room.GameHasStarted {
		return room, nil, app.ErrRoomStarted
	}
	var events []app.Event
	for _, username := range Usernames() {
		if len(room.Seats()) >= room.MaxPlayers {
			break
		}
		if room.Has(username) {
			continue
		}
		var evs []app.Event
		room, evs, err = svc.JoinRoom(ctx, roomID, username)
		if err != nil {
			return domain.Room{}, events, fmt.Errorf("seat bot %s: %w", username, err)
		}
		events = append(events, evs...)
	}
	return room, events, nil
}

// Runner plays the turns of bot players until a human is in turn.
type Runner struct {
	svc      GameService
	maxSteps int
	maxTurns int
	isBot    func(username string) bool
	brainFor func(username string) (Brain, error)
}

// NewRunner returns a Runner letting each bot take at most maxSteps chosen
// actions per turn before its turn is closed for it.
func NewRunner(svc GameService, maxSteps int) *Runner {
	if maxSteps <= 0 {
		maxSteps = 20
	}
	return &Runner{svc: svc, maxSteps: maxSteps, maxTurns: 500, isBot: IsBot, brainFor: brainOf}
}

func brainOf(username string) (Brain, error) {
	identity, _ := GetBotConfig(username)
	return NewBrain(LevelOf(identity.Difficulty))
}

// Advance plays consecutive bot turns of gameID and returns the events they
// produced. It stops when the game is won or a human is in turn. A game with
// only bots left stops with ErrStepLimit after maxTurns turns.
func (r *Runner) Advance(ctx context.Context, gameID int64) ([]app.Event, error) {
	var events []app.Event
	steps, turns := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		info, err := r.svc.GameInfo(ctx, gameID)
		if err != nil {
			return events, err
		}
		username := info.CurrentTurn.User
		if info.Winner != "" || !r.isBot(username) {
			return events, nil
		}
		if turns >= r.maxTurns {
			return events, ErrStepLimit
		}

		var evs []app.Event
		var ended bool
		if steps < r.maxSteps {
			evs, ended, err = r.step(ctx, gameID, username)
		} else {
			evs, err = r.closeTurn(ctx, gameID, username)
			ended = err == nil
		}
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
		steps++
		if ended {
			steps = 0
			turns++
		}
	}
}

// step performs the action the bot's brain picks. When the brain has nothing
// to offer or its action is refused, the turn is closed instead.
func (r *Runner) step(ctx context.Context, gameID int64, username string) ([]app.Event, bool, error) {
	brain, err := r.brainFor(username)
	if err != nil {
		return nil, false, err
	}
	agent := &Agent{Username: username, Strategy: brain}
	turn, err := agent.Observe(ctx, r.svc, gameID)
	if err != nil {
		return nil, false, err
	}
	action, err := agent.Play(turn)
	if err == nil {
		evs, err := r.svc.Perform(ctx, gameID, username, action)
		if err == nil {
			return evs, action.Type == app.ActionEndTurn, nil
		}
	}
	evs, err := r.closeTurn(ctx, gameID, username)
	return evs, err == nil, err
}

// closeTurn ends the turn of username, rolling and moving the robber first
// when the stage demands it.
func (r *Runner) closeTurn(ctx context.Context, gameID int64, username string) ([]app.Event, error) {
	var events []app.Event
	for i := 0; i < 3; i++ {
		legal, err := r.svc.LegalActions(ctx, gameID, username)
		if err != nil {
			return events, err
		}
		action, ok := closing(legal)
		if !ok {
			return events, fmt.Errorf("bot %s: %w", username, ErrNoLegalAction)
		}
		evs, err := r.svc.Perform(ctx, gameID, username, action)
		if err != nil {
			return events, fmt.Errorf("bot %s: %s: %w", username, action.Type, err)
		}
		events = append(events, evs...)
		if action.Type == app.ActionEndTurn {
			return events, nil
		}
	}
	return events, fmt.Errorf("bot %s: turn did not close: %w", username, ErrNoLegalAction)
}

// closing picks the action that gets a turn closest to its end.
func closing(legal []app.LegalAction) (app.Action, bool) {
	byType := make(map[app.ActionType]app.LegalAction, len(legal))
	for _, la := range legal {
		byType[la.Type] = la
	}
	if _, ok := byType[app.ActionEndTurn]; ok {
		return app.Action{Type: app.ActionEndTurn}, true
	}
	if _, ok := byType[app.ActionRollDice]; ok {
		return app.Action{Type: app.ActionRollDice}, true
	}
	if la, ok := byType[app.ActionMoveRobber]; ok {
		targets, _ := la.Payload.([]app.RobberTarget)
		if len(targets) > 0 {
			a := app.Action{Type: app.ActionMoveRobber, Robber: app.RobberPayload{Position: targets[0].Position}}
			if len(targets[0].Players) > 0 {
				a.Robber.Player = targets[0].Players[0]
			}
			return a, true
		}
	}
	return app.Action{}, false
}
