package app

import (
	"context"
	"sort"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// LegalAction is one option offered to the current player. Payload lists the
// accepted arguments when the action takes any.
type LegalAction struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload,omitempty"`
}

// RobberTarget is a tile the robber may move to, with the players who could be robbed there.
type RobberTarget struct {
	Position domain.TilePosition `json:"position"`
	Players  []string            `json:"players"`
}

// LegalActions lists what username may do now. Players not in turn get an empty list.
func (s *Service) LegalActions(ctx context.Context, gameID int64, username string) ([]LegalAction, error) {
	if username == "" {
		return nil, ErrUnauthenticated
	}
	out := []LegalAction{}
	err := s.store.View(ctx, func(tx ports.Tx) error {
		p, err := load(tx, gameID, username)
		if err != nil {
			return err
		}
		if p.game.Winner != "" || !p.inTurn() {
			return nil
		}
		out, err = s.legal(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) legal(p *play) ([]LegalAction, error) {
	out := []LegalAction{}
	buildings, err := p.buildings()
	if err != nil {
		return nil, err
	}
	switch p.turn.Stage {
	case domain.StageAwaitingRoll:
		out = append(out, LegalAction{Type: ActionRollDice})
	case domain.StageHazardPending:
		out = append(out, LegalAction{Type: ActionMoveRobber, Payload: robberTargets(p, buildings)})
	}
	knights, err := p.tx.Cards(ports.CardFilter{GameID: p.game.ID, OwnerID: p.me.ID, Kind: domain.Knight})
	if err != nil {
		return nil, err
	}
	if len(knights) > 0 {
		out = append(out, LegalAction{Type: ActionPlayKnight, Payload: robberTargets(p, buildings)})
	}
	if p.turn.Stage != domain.StageFullPlay {
		return out, nil
	}

	hand, err := p.hand(p.me.ID)
	if err != nil {
		return nil, err
	}
	roads, err := p.roads()
	if err != nil {
		return nil, err
	}
	if domain.CanAfford(hand, domain.RoadCost) {
		var options []RoadPayload
		for _, e := range domain.AllEdges() {
			if !domain.RoadOccupied(roads, e[0], e[1]) && domain.RoadConnected(p.me.ID, e[0], e[1], roads, buildings) {
				options = append(options, RoadPayloadOf(e[0], e[1]))
			}
		}
		if len(options) > 0 {
			out = append(out, LegalAction{Type: ActionBuildRoad, Payload: options})
		}
	}
	if domain.CanAfford(hand, domain.SettlementCost) {
		var options []domain.VertexPosition
		for _, v := range domain.AllVertexPositions() {
			if _, taken := domain.BuildingAt(buildings, v); taken {
				continue
			}
			if domain.SpacingOK(v, buildings) && domain.TouchesOwnRoad(p.me.ID, v, roads) {
				options = append(options, v)
			}
		}
		if len(options) > 0 {
			out = append(out, LegalAction{Type: ActionBuildSettlement, Payload: options})
		}
	}
	if domain.CanAfford(hand, domain.CityCost) {
		var options []domain.VertexPosition
		for _, b := range buildings {
			if b.OwnerID == p.me.ID && b.Kind == domain.Settlement {
				options = append(options, b.Position)
			}
		}
		sort.Slice(options, func(i, j int) bool { return options[i].Less(options[j]) })
		if len(options) > 0 {
			out = append(out, LegalAction{Type: ActionUpgradeCity, Payload: options})
		}
	}
	var trades []BankTradePayload
	for _, give := range domain.ResourceTerrains {
		if domain.CountTerrain(hand, give) < s.rules.BankTradeRatio {
			continue
		}
		for _, receive := range domain.ResourceTerrains {
			if receive != give {
				trades = append(trades, BankTradePayload{Give: give, Receive: receive})
			}
		}
	}
	if len(trades) > 0 {
		out = append(out, LegalAction{Type: ActionBankTrade, Payload: trades})
	}
	if domain.CanAfford(hand, domain.CardCost) {
		out = append(out, LegalAction{Type: ActionBuyCard})
	}
	return append(out, LegalAction{Type: ActionEndTurn}), nil
}

// robberTargets lists every board tile except the robber's, in ring/index order.
func robberTargets(p *play, buildings []domain.Building) []RobberTarget {
	var out []RobberTarget
	for _, pos := range domain.AllTilePositions() {
		if pos == p.game.Robber {
			continue
		}
		if _, ok := p.board.TileAt(pos); !ok {
			continue
		}
		players := []string{}
		for _, owner := range domain.OwnersAround(pos, buildings) {
			if owner == p.me.ID {
				continue
			}
			if pl, ok := p.byID(owner); ok {
				players = append(players, pl.Username)
			}
		}
		sort.Strings(players)
		out = append(out, RobberTarget{Position: pos, Players: players})
	}
	return out
}
