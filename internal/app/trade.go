package app

import (
	"colonos/internal/domain"
	"colonos/internal/ports"
)

func (s *Service) bankTrade(p *play, t BankTradePayload) error {
	if !t.Give.IsResource() || !t.Receive.IsResource() {
		return ErrUnknownResource
	}
	if t.Give == t.Receive {
		return ErrSameResource
	}
	give, err := p.tx.Resources(ports.ResourceFilter{GameID: p.game.ID, OwnerID: p.me.ID, Terrain: t.Give})
	if err != nil {
		return err
	}
	ratio := s.rules.BankTradeRatio
	if len(give) < ratio {
		return ErrCannotTrade
	}
	for _, r := range give[:ratio] {
		if err := p.tx.DeleteResource(r.ID); err != nil {
			return err
		}
	}
	got := domain.Resource{GameID: p.game.ID, OwnerID: p.me.ID, Terrain: t.Receive}
	if err := p.tx.CreateResource(&got); err != nil {
		return err
	}
	p.emit(EventBankTraded, BankTradedPayload{Username: p.me.Username, Give: t.Give, Given: ratio, Receive: t.Receive})
	return nil
}
