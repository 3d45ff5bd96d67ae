package app

import (
	"colonos/internal/domain"
	"colonos/internal/ports"
)

// playKnight consumes one knight card and relocates the robber.
func (s *Service) playKnight(p *play, r RobberPayload) error {
	knights, err := p.tx.Cards(ports.CardFilter{GameID: p.game.ID, OwnerID: p.me.ID, Kind: domain.Knight})
	if err != nil {
		return err
	}
	if len(knights) == 0 {
		return ErrNoKnight
	}
	victim, err := s.checkRobberTarget(p, r)
	if err != nil {
		return err
	}
	if err := p.tx.DeleteCard(knights[0].ID); err != nil {
		return err
	}
	return s.relocate(p, EventKnightPlayed, r.Position, victim)
}

// moveRobber resolves a pending hazard roll.
func (s *Service) moveRobber(p *play, r RobberPayload) error {
	victim, err := s.checkRobberTarget(p, r)
	if err != nil {
		return err
	}
	return s.relocate(p, EventRobberMoved, r.Position, victim)
}

// checkRobberTarget validates the destination tile and the optional victim.
func (s *Service) checkRobberTarget(p *play, r RobberPayload) (domain.Player, error) {
	if !domain.ValidTile(r.Position) {
		return domain.Player{}, ErrNoHexe
	}
	if _, ok := p.board.TileAt(r.Position); !ok {
		return domain.Player{}, ErrNoHexe
	}
	if r.Position == p.game.Robber {
		return domain.Player{}, ErrSameHexe
	}
	if r.Player == "" {
		return domain.Player{}, nil
	}
	if r.Player == p.me.Username {
		return domain.Player{}, ErrChooseYourself
	}
	victim, ok := p.byUsername(r.Player)
	if !ok {
		return domain.Player{}, ErrTargetNoBuildings
	}
	buildings, err := p.buildings()
	if err != nil {
		return domain.Player{}, err
	}
	for _, owner := range domain.OwnersAround(r.Position, buildings) {
		if owner == victim.ID {
			return victim, nil
		}
	}
	return domain.Player{}, ErrTargetNoBuildings
}

// relocate moves the robber, ends a pending hazard and robs victim when set.
func (s *Service) relocate(p *play, kind EventKind, to domain.TilePosition, victim domain.Player) error {
	p.game.Robber = to
	if p.turn.Stage == domain.StageHazardPending {
		p.turn.Stage = domain.StageFullPlay
	}
	p.emit(kind, RobberMovedPayload{Username: p.me.Username, Position: to, Victim: victim.Username})
	if victim.ID == 0 {
		return nil
	}
	hand, err := p.hand(victim.ID)
	if err != nil {
		return err
	}
	if len(hand) == 0 {
		return nil
	}
	card := hand[s.intn(len(hand))]
	card.OwnerID = p.me.ID
	card.LastGained = false
	if err := p.tx.UpdateResource(card); err != nil {
		return err
	}
	p.emit(EventResourceStolen, ResourceStolenPayload{Thief: p.me.Username, Victim: victim.Username, Terrain: card.Terrain},
		p.me.Username, victim.Username)
	return nil
}
