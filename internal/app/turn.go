package app

import (
	"colonos/internal/domain"
	"colonos/internal/ports"
)

// roll throws the dice for the current player. A hazard roll leaves the robber
// to be moved; any other sum distributes production.
func (s *Service) roll(p *play) error {
	d1, d2 := s.rollDice()
	p.turn.Dice = [2]int{d1, d2}
	if p.turn.Sum() == domain.HazardRoll {
		p.turn.Stage = domain.StageHazardPending
		p.emit(EventDiceRolled, DiceRolledPayload{Username: p.current().Username, Dice: p.turn.Dice, Stage: p.turn.Stage})
		return nil
	}
	p.turn.Stage = domain.StageFullPlay
	p.emit(EventDiceRolled, DiceRolledPayload{Username: p.current().Username, Dice: p.turn.Dice, Stage: p.turn.Stage})
	return s.produce(p)
}

// produce clears the previous step's last-gained marks and grants the new cards.
func (s *Service) produce(p *play) error {
	held, err := p.tx.Resources(ports.ResourceFilter{GameID: p.game.ID})
	if err != nil {
		return err
	}
	for _, r := range held {
		if !r.LastGained {
			continue
		}
		r.LastGained = false
		if err := p.tx.UpdateResource(r); err != nil {
			return err
		}
	}
	buildings, err := p.buildings()
	if err != nil {
		return err
	}
	grants := domain.Produce(p.board, p.game.Robber, buildings, p.turn.Sum())
	for _, g := range grants {
		r := domain.Resource{GameID: p.game.ID, OwnerID: g.OwnerID, Terrain: g.Terrain, LastGained: true}
		if err := p.tx.CreateResource(&r); err != nil {
			return err
		}
	}
	if len(grants) == 0 {
		return nil
	}
	gains := make(map[string][]domain.Terrain)
	for owner, terrains := range domain.GrantsByOwner(grants) {
		if pl, ok := p.byID(owner); ok {
			gains[pl.Username] = terrains
		}
	}
	p.emit(EventResourcesProduced, ResourcesProducedPayload{Gains: gains})
	return nil
}

// endTurn hands the turn to the next player by turn ordinal.
func (s *Service) endTurn(p *play) error {
	cur := p.current()
	next := nextPlayer(p.players, cur)
	p.turn.PlayerID = next.ID
	p.turn.Dice = [2]int{}
	p.turn.Stage = domain.StageAwaitingRoll
	p.emit(EventTurnEnded, TurnEndedPayload{Username: cur.Username, Next: next.Username})
	if s.rules.ManualRoll {
		return nil
	}
	return s.roll(p)
}

// nextPlayer returns the player after cur in cyclic turn order. players must be sorted by turn.
func nextPlayer(players []domain.Player, cur domain.Player) domain.Player {
	for i, pl := range players {
		if pl.ID == cur.ID {
			return players[(i+1)%len(players)]
		}
	}
	return players[0]
}
