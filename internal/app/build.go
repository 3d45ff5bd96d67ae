package app

import (
	"fmt"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

func checkVertex(v domain.VertexPosition) error {
	if !domain.ValidVertex(v) {
		return NotFound("Position not found.", fmt.Errorf("%s: %w", v, domain.ErrPositionNotFound))
	}
	return nil
}

func (s *Service) buildRoad(p *play, a, b domain.VertexPosition) error {
	if err := checkVertex(a); err != nil {
		return err
	}
	if err := checkVertex(b); err != nil {
		return err
	}
	if !domain.AreNeighbors(a, b) {
		return ErrInvalidPosition
	}
	roads, err := p.roads()
	if err != nil {
		return err
	}
	if domain.RoadOccupied(roads, a, b) {
		return ErrRoadReserved
	}
	hand, err := p.hand(p.me.ID)
	if err != nil {
		return err
	}
	if !domain.CanAfford(hand, domain.RoadCost) {
		return ErrNotEnoughResources
	}
	buildings, err := p.buildings()
	if err != nil {
		return err
	}
	if !domain.RoadConnected(p.me.ID, a, b, roads, buildings) {
		return ErrInvalidPosition
	}
	if err := p.pay(domain.RoadCost); err != nil {
		return err
	}
	road := domain.NewRoad(p.game.ID, p.me.ID, a, b)
	if err := p.tx.CreateRoad(&road); err != nil {
		return err
	}
	p.emit(EventRoadBuilt, RoadBuiltPayload{Username: p.me.Username, From: road.From, To: road.To})
	return nil
}

func (s *Service) buildSettlement(p *play, v domain.VertexPosition) error {
	if err := checkVertex(v); err != nil {
		return err
	}
	buildings, err := p.buildings()
	if err != nil {
		return err
	}
	if _, taken := domain.BuildingAt(buildings, v); taken {
		return ErrRoadReserved
	}
	if !domain.SpacingOK(v, buildings) {
		return ErrTooClose
	}
	hand, err := p.hand(p.me.ID)
	if err != nil {
		return err
	}
	if !domain.CanAfford(hand, domain.SettlementCost) {
		return ErrNotEnoughResources
	}
	roads, err := p.roads()
	if err != nil {
		return err
	}
	if !domain.TouchesOwnRoad(p.me.ID, v, roads) {
		return ErrInvalidPosition
	}
	if err := p.pay(domain.SettlementCost); err != nil {
		return err
	}
	b := domain.Building{GameID: p.game.ID, OwnerID: p.me.ID, Kind: domain.Settlement, Position: v}
	if err := p.tx.CreateBuilding(&b); err != nil {
		return err
	}
	p.emit(EventSettlementBuilt, BuildingPayload{Username: p.me.Username, Position: v})
	return s.score(p, p.me.ID)
}

func (s *Service) upgradeCity(p *play, v domain.VertexPosition) error {
	if err := checkVertex(v); err != nil {
		return err
	}
	mine, err := p.tx.Buildings(ports.BuildingFilter{GameID: p.game.ID, OwnerID: p.me.ID, Position: &v})
	if err != nil {
		return err
	}
	if len(mine) == 0 || mine[0].Kind != domain.Settlement {
		return ErrNoSettlement
	}
	if err := p.pay(domain.CityCost); err != nil {
		return err
	}
	b := mine[0]
	b.Kind = domain.City
	if err := p.tx.UpdateBuilding(b); err != nil {
		return err
	}
	p.emit(EventCityBuilt, BuildingPayload{Username: p.me.Username, Position: v})
	return s.score(p, p.me.ID)
}

func (s *Service) buyCard(p *play) error {
	if err := p.pay(domain.CardCost); err != nil {
		return err
	}
	deck := domain.DevelopmentDeck()
	card := domain.Card{GameID: p.game.ID, OwnerID: p.me.ID, Kind: deck[s.intn(len(deck))]}
	if err := p.tx.CreateCard(&card); err != nil {
		return err
	}
	p.emit(EventCardBought, CardBoughtPayload{Username: p.me.Username, Kind: card.Kind}, p.me.Username)
	return s.score(p, p.me.ID)
}

// score recomputes the victory points of owner and declares the first player
// to reach the goal the winner.
func (s *Service) score(p *play, owner int64) error {
	pl, ok := p.byID(owner)
	if !ok {
		return fmt.Errorf("score: player %d not in game %d", owner, p.game.ID)
	}
	buildings, err := p.tx.Buildings(ports.BuildingFilter{GameID: p.game.ID, OwnerID: owner})
	if err != nil {
		return err
	}
	cards, err := p.tx.Cards(ports.CardFilter{GameID: p.game.ID, OwnerID: owner})
	if err != nil {
		return err
	}
	pl.VictoryPoints = domain.VictoryPoints(owner, buildings, cards)
	if err := p.tx.UpdatePlayer(pl); err != nil {
		return err
	}
	for i := range p.players {
		if p.players[i].ID == owner {
			p.players[i] = pl
		}
	}
	if p.game.Winner == "" && pl.VictoryPoints >= s.rules.VictoryPointsToWin {
		p.game.Winner = pl.Username
		p.emit(EventGameWon, GameWonPayload{Username: pl.Username, VictoryPoints: pl.VictoryPoints})
	}
	return nil
}
