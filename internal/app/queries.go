package app

import (
	"context"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// TurnInfo is the public view of the current turn.
type TurnInfo struct {
	User  string       `json:"user"`
	Dice  [2]int       `json:"dices"`
	Stage domain.Stage `json:"stage"`
}

// PlayerSummary is the public view of one seat. Card counts are derived from card records.
type PlayerSummary struct {
	Username         string                     `json:"username"`
	Colour           string                     `json:"colour"`
	Turn             int                        `json:"turn"`
	VictoryPoints    int                        `json:"victory_points"`
	DevelopmentCards int                        `json:"development_cards"`
	ResourcesCards   int                        `json:"resources_cards"`
	Settlements      []domain.VertexPosition    `json:"settlements"`
	Cities           []domain.VertexPosition    `json:"cities"`
	Roads            [][2]domain.VertexPosition `json:"roads"`
	LastGained       []domain.Terrain           `json:"last_gained"`
}

// GameInfo is the public view of a game.
type GameInfo struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Robber      domain.TilePosition `json:"robber"`
	Winner      string              `json:"winner,omitempty"`
	CurrentTurn TurnInfo            `json:"current_turn"`
	Players     []PlayerSummary     `json:"players"`
}

// PlayerInfo is the private hand of one player.
type PlayerInfo struct {
	Resources []string `json:"resources"`
	Cards     []string `json:"cards"`
}

// GameSummary is one row of the game list.
type GameSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	InTurn string `json:"in_turn"`
	Winner string `json:"winner,omitempty"`
}

// BoardInfo lists the tiles of a game's board.
type BoardInfo struct {
	Hexes []domain.Tile `json:"hexes"`
}

// GameInfo returns the public state of gameID.
func (s *Service) GameInfo(ctx context.Context, gameID int64) (GameInfo, error) {
	var info GameInfo
	err := s.store.View(ctx, func(tx ports.Tx) error {
		p, err := load(tx, gameID, "")
		if err != nil {
			return err
		}
		buildings, err := p.buildings()
		if err != nil {
			return err
		}
		roads, err := p.roads()
		if err != nil {
			return err
		}
		resources, err := tx.Resources(ports.ResourceFilter{GameID: gameID})
		if err != nil {
			return err
		}
		cards, err := tx.Cards(ports.CardFilter{GameID: gameID})
		if err != nil {
			return err
		}
		info = GameInfo{
			ID:     p.game.ID,
			Name:   p.game.Name,
			Robber: p.game.Robber,
			Winner: p.game.Winner,
			CurrentTurn: TurnInfo{
				User:  p.current().Username,
				Dice:  p.turn.Dice,
				Stage: p.turn.Stage,
			},
			Players: make([]PlayerSummary, 0, len(p.players)),
		}
		for _, pl := range p.players {
			info.Players = append(info.Players, summarize(pl, buildings, roads, resources, cards))
		}
		return nil
	})
	return info, err
}

func summarize(pl domain.Player, buildings []domain.Building, roads []domain.Road, resources []domain.Resource, cards []domain.Card) PlayerSummary {
	sum := PlayerSummary{
		Username:      pl.Username,
		Colour:        pl.Colour,
		Turn:          pl.Turn,
		VictoryPoints: pl.VictoryPoints,
		Settlements:   []domain.VertexPosition{},
		Cities:        []domain.VertexPosition{},
		Roads:         [][2]domain.VertexPosition{},
		LastGained:    []domain.Terrain{},
	}
	for _, b := range buildings {
		if b.OwnerID != pl.ID {
			continue
		}
		if b.Kind == domain.City {
			sum.Cities = append(sum.Cities, b.Position)
		} else {
			sum.Settlements = append(sum.Settlements, b.Position)
		}
	}
	for _, r := range roads {
		if r.OwnerID == pl.ID {
			sum.Roads = append(sum.Roads, [2]domain.VertexPosition{r.From, r.To})
		}
	}
	for _, r := range resources {
		if r.OwnerID != pl.ID {
			continue
		}
		sum.ResourcesCards++
		if r.LastGained {
			sum.LastGained = append(sum.LastGained, r.Terrain)
		}
	}
	for _, c := range cards {
		if c.OwnerID == pl.ID {
			sum.DevelopmentCards++
		}
	}
	return sum
}

// PlayerInfo returns the hand of username in gameID.
func (s *Service) PlayerInfo(ctx context.Context, gameID int64, username string) (PlayerInfo, error) {
	if username == "" {
		return PlayerInfo{}, ErrUnauthenticated
	}
	var info PlayerInfo
	err := s.store.View(ctx, func(tx ports.Tx) error {
		if _, err := tx.Game(gameID); err != nil {
			return storeErr(err, "Game not found.")
		}
		me, err := tx.PlayerByUsername(gameID, username)
		if err != nil {
			return storeErr(err, ErrNotAPlayer.Detail)
		}
		resources, err := tx.Resources(ports.ResourceFilter{GameID: gameID, OwnerID: me.ID})
		if err != nil {
			return err
		}
		cards, err := tx.Cards(ports.CardFilter{GameID: gameID, OwnerID: me.ID})
		if err != nil {
			return err
		}
		info = PlayerInfo{Resources: domain.ResourceNames(resources), Cards: domain.CardNames(cards)}
		return nil
	})
	return info, err
}

// ListGames summarizes every game.
func (s *Service) ListGames(ctx context.Context) ([]GameSummary, error) {
	out := []GameSummary{}
	err := s.store.View(ctx, func(tx ports.Tx) error {
		games, err := tx.Games()
		if err != nil {
			return err
		}
		for _, g := range games {
			row := GameSummary{ID: g.ID, Name: g.Name, Winner: g.Winner}
			if turn, err := tx.CurrentTurn(g.ID); err == nil {
				if pl, err := tx.Player(turn.PlayerID); err == nil {
					row.InTurn = pl.Username
				}
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

// BoardInfo returns the tiles of the board gameID is played on.
func (s *Service) BoardInfo(ctx context.Context, gameID int64) (BoardInfo, error) {
	var info BoardInfo
	err := s.store.View(ctx, func(tx ports.Tx) error {
		g, err := tx.Game(gameID)
		if err != nil {
			return storeErr(err, "Game not found.")
		}
		b, err := tx.Board(g.BoardID)
		if err != nil {
			return storeErr(err, "Board not found.")
		}
		info = BoardInfo{Hexes: b.Tiles}
		return nil
	})
	return info, err
}
