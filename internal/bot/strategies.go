package bot

import (
	"colonos/internal/app"
	"colonos/internal/domain"
)

// GreedyBot takes the best scored option each step.
type GreedyBot struct {
	Tuning Tuning
}

func (b *GreedyBot) CalculateMove(turn Turn) (app.Action, error) {
	var (
		best      app.Action
		bestScore float64
		found     bool
	)
	for _, la := range turn.Legal {
		a, score, ok := b.evaluate(la, turn.Hand)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = a, score, true
		}
	}
	if !found {
		return app.Action{}, ErrNoLegalAction
	}
	return best, nil
}

func (b *GreedyBot) evaluate(la app.LegalAction, hand []domain.Terrain) (app.Action, float64, bool) {
	w := b.Tuning
	switch la.Type {
	case app.ActionEndTurn:
		return app.Action{Type: app.ActionEndTurn}, 0, true
	case app.ActionRollDice:
		return app.Action{Type: app.ActionRollDice}, w.Roll, true
	case app.ActionMoveRobber:
		targets, _ := la.Payload.([]app.RobberTarget)
		target, ok := bestTarget(targets)
		if !ok {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionMoveRobber, Robber: target}, w.Robber, true
	case app.ActionPlayKnight:
		targets, _ := la.Payload.([]app.RobberTarget)
		target, ok := bestTarget(targets)
		if !ok || target.Player == "" {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionPlayKnight, Robber: target}, w.Knight * float64(opponentsAt(targets, target.Position)), true
	case app.ActionBuildSettlement:
		options, _ := la.Payload.([]domain.VertexPosition)
		if len(options) == 0 {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionBuildSettlement, Vertex: options[0]}, w.Settlement, true
	case app.ActionUpgradeCity:
		options, _ := la.Payload.([]domain.VertexPosition)
		if len(options) == 0 {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionUpgradeCity, Vertex: options[0]}, w.City, true
	case app.ActionBuildRoad:
		options, _ := la.Payload.([]app.RoadPayload)
		if len(options) == 0 {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionBuildRoad, Road: options[0]}, w.Road, true
	case app.ActionBuyCard:
		return app.Action{Type: app.ActionBuyCard}, w.Card, true
	case app.ActionBankTrade:
		options, _ := la.Payload.([]app.BankTradePayload)
		trade, ok := pickTrade(options, hand)
		if !ok {
			return app.Action{}, 0, false
		}
		return app.Action{Type: app.ActionBankTrade, Trade: trade}, w.Trade, true
	}
	return app.Action{}, 0, false
}

// EasyBot rolls, moves the robber when it must, settles when it can and otherwise ends its turn.
type EasyBot struct{}

func (b *EasyBot) CalculateMove(turn Turn) (app.Action, error) {
	byType := make(map[app.ActionType]app.LegalAction, len(turn.Legal))
	for _, la := range turn.Legal {
		byType[la.Type] = la
	}
	if _, ok := byType[app.ActionRollDice]; ok {
		return app.Action{Type: app.ActionRollDice}, nil
	}
	if la, ok := byType[app.ActionMoveRobber]; ok {
		targets, _ := la.Payload.([]app.RobberTarget)
		if target, ok := bestTarget(targets); ok {
			return app.Action{Type: app.ActionMoveRobber, Robber: target}, nil
		}
	}
	if la, ok := byType[app.ActionBuildSettlement]; ok {
		if options, _ := la.Payload.([]domain.VertexPosition); len(options) > 0 {
			return app.Action{Type: app.ActionBuildSettlement, Vertex: options[0]}, nil
		}
	}
	if _, ok := byType[app.ActionEndTurn]; ok {
		return app.Action{Type: app.ActionEndTurn}, nil
	}
	return app.Action{}, ErrNoLegalAction
}

// bestTarget picks the tile with the most opponents, the earliest on ties, and robs
// the first of them.
func bestTarget(targets []app.RobberTarget) (app.RobberPayload, bool) {
	best := -1
	for i, t := range targets {
		if best < 0 || len(t.Players) > len(targets[best].Players) {
			best = i
		}
	}
	if best < 0 {
		return app.RobberPayload{}, false
	}
	p := app.RobberPayload{Position: targets[best].Position}
	if len(targets[best].Players) > 0 {
		p.Player = targets[best].Players[0]
	}
	return p, true
}

func opponentsAt(targets []app.RobberTarget, pos domain.TilePosition) int {
	for _, t := range targets {
		if t.Position == pos {
			return len(t.Players)
		}
	}
	return 0
}

// pickTrade gives the most plentiful resource for one the hand lacks entirely.
func pickTrade(options []app.BankTradePayload, hand []domain.Terrain) (app.BankTradePayload, bool) {
	counts := make(map[domain.Terrain]int, len(hand))
	for _, t := range hand {
		counts[t]++
	}
	var (
		best  app.BankTradePayload
		found bool
	)
	for _, o := range options {
		if counts[o.Receive] > 0 {
			continue
		}
		if !found || counts[o.Give] > counts[best.Give] {
			best, found = o, true
		}
	}
	return best, found
}
