package app

import (
	"context"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// ActionType is the request discriminator of a player action.
type ActionType string

const (
	ActionEndTurn         ActionType = "end_turn"
	ActionRollDice        ActionType = "roll_dice"
	ActionBankTrade       ActionType = "bank_trade"
	ActionBuildRoad       ActionType = "built_road"
	ActionBuildSettlement ActionType = "build_settlement"
	ActionUpgradeCity     ActionType = "upgrade_city"
	ActionBuyCard         ActionType = "buy_card"
	ActionPlayKnight      ActionType = "play_knight_card"
	ActionMoveRobber      ActionType = "move_robber"
)

// ActionTypes lists every recognized action type.
var ActionTypes = []ActionType{
	ActionEndTurn, ActionRollDice, ActionBankTrade, ActionBuildRoad, ActionBuildSettlement,
	ActionUpgradeCity, ActionBuyCard, ActionPlayKnight, ActionMoveRobber,
}

// Known reports whether t is a recognized action type.
func (t ActionType) Known() bool {
	for _, k := range ActionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// BankTradePayload exchanges BankTradeRatio cards of Give for one of Receive.
type BankTradePayload struct {
	Give    domain.Terrain `json:"give"`
	Receive domain.Terrain `json:"receive"`
}

// RoadPayload names the two endpoints of a road.
type RoadPayload struct {
	Level1 int `json:"level1"`
	Index1 int `json:"index1"`
	Level2 int `json:"level2"`
	Index2 int `json:"index2"`
}

// Endpoints returns the payload as vertex positions.
func (r RoadPayload) Endpoints() (domain.VertexPosition, domain.VertexPosition) {
	return domain.VertexPosition{Ring: r.Level1, Index: r.Index1},
		domain.VertexPosition{Ring: r.Level2, Index: r.Index2}
}

// RoadPayloadOf builds the payload for a road between a and b.
func RoadPayloadOf(a, b domain.VertexPosition) RoadPayload {
	return RoadPayload{Level1: a.Ring, Index1: a.Index, Level2: b.Ring, Index2: b.Index}
}

// RobberPayload moves the robber and optionally names the player to rob.
type RobberPayload struct {
	Position domain.TilePosition `json:"position"`
	Player   string              `json:"player,omitempty"`
}

// PayloadBinder fills the payload fields of an action once the game has
// accepted the request from its sender.
type PayloadBinder interface {
	Bind(a *Action) error
}

// Action is a player request. Only the payload field matching Type is read.
// When Binder is set the payload is bound after the turn checks.
type Action struct {
	Type   ActionType
	Trade  BankTradePayload
	Road   RoadPayload
	Vertex domain.VertexPosition
	Robber RobberPayload
	Binder PayloadBinder
}

// Perform validates and applies one action of username in gameID as a single
// unit of work. On error nothing is written.
func (s *Service) Perform(ctx context.Context, gameID int64, username string, a Action) ([]Event, error) {
	if username == "" {
		return nil, ErrUnauthenticated
	}
	var events []Event
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		p, err := load(tx, gameID, username)
		if err != nil {
			return err
		}
		if err := s.dispatch(p, a); err != nil {
			return err
		}
		if err := p.save(); err != nil {
			return err
		}
		events = p.events
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Service) dispatch(p *play, a Action) error {
	if p.game.Winner != "" {
		return ErrGameOver
	}
	if !p.inTurn() {
		return ErrNotInTurn
	}
	if !a.Type.Known() {
		return ErrInvalidAction
	}
	if a.Binder != nil {
		if err := a.Binder.Bind(&a); err != nil {
			return err
		}
	}
	if err := stageAllows(p.turn.Stage, a.Type); err != nil {
		return err
	}
	switch a.Type {
	case ActionRollDice:
		return s.roll(p)
	case ActionEndTurn:
		return s.endTurn(p)
	case ActionBankTrade:
		return s.bankTrade(p, a.Trade)
	case ActionBuildRoad:
		from, to := a.Road.Endpoints()
		return s.buildRoad(p, from, to)
	case ActionBuildSettlement:
		return s.buildSettlement(p, a.Vertex)
	case ActionUpgradeCity:
		return s.upgradeCity(p, a.Vertex)
	case ActionBuyCard:
		return s.buyCard(p)
	case ActionPlayKnight:
		return s.playKnight(p, a.Robber)
	case ActionMoveRobber:
		return s.moveRobber(p, a.Robber)
	}
	return ErrInvalidAction
}

// stageAllows gates action types on the turn stage.
func stageAllows(stage domain.Stage, t ActionType) error {
	switch t {
	case ActionPlayKnight:
		return nil
	case ActionMoveRobber:
		if stage != domain.StageHazardPending {
			return ErrNoHazard
		}
		return nil
	case ActionRollDice:
		switch stage {
		case domain.StageHazardPending:
			return ErrMoveThief
		case domain.StageFullPlay:
			return ErrAlreadyRolled
		}
		return nil
	}
	switch stage {
	case domain.StageHazardPending:
		return ErrMoveThief
	case domain.StageAwaitingRoll:
		return ErrRollFirst
	}
	return nil
}
