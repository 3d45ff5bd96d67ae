// Package storetest checks that a ports.Store implementation behaves like the
// in-memory reference.
package storetest

import (
	"context"
	"errors"
	"testing"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// Run exercises open against the shared store contract. open must return an
// empty store.
func Run(t *testing.T, open func(t *testing.T) ports.Store) {
	t.Run("rollback on error", func(t *testing.T) { testRollback(t, open(t)) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("game records", func(t *testing.T) { testGameRecords(t, open(t)) })
	t.Run("filters", func(t *testing.T) { testFilters(t, open(t)) })
	t.Run("rooms", func(t *testing.T) { testRooms(t, open(t)) })
	t.Run("view is read only", func(t *testing.T) { testViewReadOnly(t, open(t)) })
	t.Run("duplicate road", func(t *testing.T) { testDuplicateRoad(t, open(t)) })
}

var errBoom = errors.New("boom")

func board() domain.Board {
	b := domain.Board{Name: "test"}
	for _, p := range domain.AllTilePositions() {
		b.Tiles = append(b.Tiles, domain.Tile{Position: p, Terrain: domain.Grain, Token: 6})
	}
	return b
}

// seed creates a board, a game and two players.
func seed(t *testing.T, s ports.Store) (domain.Game, domain.Player, domain.Player) {
	t.Helper()
	var g domain.Game
	var p1, p2 domain.Player
	err := s.Update(context.Background(), func(tx ports.Tx) error {
		b := board()
		if err := tx.CreateBoard(&b); err != nil {
			return err
		}
		g = domain.Game{Name: "g", BoardID: b.ID, Robber: domain.TilePosition{Ring: 0, Index: 0}}
		if err := tx.CreateGame(&g); err != nil {
			return err
		}
		p2 = domain.Player{GameID: g.ID, Username: "bob", Turn: 2, Colour: "red"}
		if err := tx.CreatePlayer(&p2); err != nil {
			return err
		}
		p1 = domain.Player{GameID: g.ID, Username: "alice", Turn: 1, Colour: "blue"}
		return tx.CreatePlayer(&p1)
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return g, p1, p2
}

func testRollback(t *testing.T, s ports.Store) {
	g, p1, _ := seed(t, s)
	err := s.Update(context.Background(), func(tx ports.Tx) error {
		if err := tx.CreateResource(&domain.Resource{GameID: g.ID, OwnerID: p1.ID, Terrain: domain.Brick}); err != nil {
			return err
		}
		g.Robber = domain.TilePosition{Ring: 1, Index: 3}
		if err := tx.UpdateGame(g); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Update err = %v, want errBoom", err)
	}
	_ = s.View(context.Background(), func(tx ports.Tx) error {
		res, err := tx.Resources(ports.ResourceFilter{GameID: g.ID})
		if err != nil {
			t.Fatalf("Resources: %v", err)
		}
		if len(res) != 0 {
			t.Fatalf("resources after rollback = %d, want 0", len(res))
		}
		got, err := tx.Game(g.ID)
		if err != nil {
			t.Fatalf("Game: %v", err)
		}
		if got.Robber != (domain.TilePosition{}) {
			t.Fatalf("robber after rollback = %v", got.Robber)
		}
		return nil
	})
}

func testNotFound(t *testing.T, s ports.Store) {
	_ = s.View(context.Background(), func(tx ports.Tx) error {
		if _, err := tx.Game(42); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("Game err = %v", err)
		}
		if _, err := tx.Room(42); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("Room err = %v", err)
		}
		if _, err := tx.CurrentTurn(42); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("CurrentTurn err = %v", err)
		}
		if _, err := tx.PlayerByUsername(42, "nobody"); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("PlayerByUsername err = %v", err)
		}
		return nil
	})
	err := s.Update(context.Background(), func(tx ports.Tx) error {
		return tx.DeleteCard(42)
	})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("DeleteCard err = %v", err)
	}
}

func testGameRecords(t *testing.T, s ports.Store) {
	g, p1, p2 := seed(t, s)
	ctx := context.Background()
	err := s.Update(ctx, func(tx ports.Tx) error {
		if err := tx.PutCurrentTurn(domain.CurrentTurn{GameID: g.ID, PlayerID: p1.ID, Dice: [2]int{3, 3}, Stage: domain.StageFullPlay}); err != nil {
			return err
		}
		return tx.PutCurrentTurn(domain.CurrentTurn{GameID: g.ID, PlayerID: p2.ID, Dice: [2]int{1, 2}, Stage: domain.StageAwaitingRoll})
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	_ = s.View(ctx, func(tx ports.Tx) error {
		players, err := tx.Players(g.ID)
		if err != nil {
			t.Fatalf("Players: %v", err)
		}
		if len(players) != 2 || players[0].Username != "alice" || players[1].Username != "bob" {
			t.Fatalf("players not ordered by turn: %+v", players)
		}
		ct, err := tx.CurrentTurn(g.ID)
		if err != nil {
			t.Fatalf("CurrentTurn: %v", err)
		}
		if ct.PlayerID != p2.ID || ct.Dice != [2]int{1, 2} || ct.Stage != domain.StageAwaitingRoll {
			t.Fatalf("current turn = %+v", ct)
		}
		b, err := tx.Board(g.BoardID)
		if err != nil {
			t.Fatalf("Board: %v", err)
		}
		if len(b.Tiles) != 19 {
			t.Fatalf("board tiles = %d", len(b.Tiles))
		}
		got, err := tx.PlayerByUsername(g.ID, "bob")
		if err != nil || got.ID != p2.ID {
			t.Fatalf("PlayerByUsername = %+v, %v", got, err)
		}
		return nil
	})
}

func testFilters(t *testing.T, s ports.Store) {
	g, p1, p2 := seed(t, s)
	ctx := context.Background()
	v := domain.VertexPosition{Ring: 0, Index: 1}
	err := s.Update(ctx, func(tx ports.Tx) error {
		for _, b := range []domain.Building{
			{GameID: g.ID, OwnerID: p1.ID, Kind: domain.Settlement, Position: domain.VertexPosition{Ring: 0, Index: 0}},
			{GameID: g.ID, OwnerID: p2.ID, Kind: domain.City, Position: domain.VertexPosition{Ring: 1, Index: 7}},
		} {
			b := b
			if err := tx.CreateBuilding(&b); err != nil {
				return err
			}
		}
		road := domain.NewRoad(g.ID, p1.ID, domain.VertexPosition{Ring: 0, Index: 2}, v)
		if err := tx.CreateRoad(&road); err != nil {
			return err
		}
		for _, r := range []domain.Terrain{domain.Brick, domain.Brick, domain.Wool} {
			if err := tx.CreateResource(&domain.Resource{GameID: g.ID, OwnerID: p1.ID, Terrain: r}); err != nil {
				return err
			}
		}
		if err := tx.CreateResource(&domain.Resource{GameID: g.ID, OwnerID: p2.ID, Terrain: domain.Brick}); err != nil {
			return err
		}
		return tx.CreateCard(&domain.Card{GameID: g.ID, OwnerID: p1.ID, Kind: domain.Knight})
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	_ = s.View(ctx, func(tx ports.Tx) error {
		pos := domain.VertexPosition{Ring: 1, Index: 7}
		bs, _ := tx.Buildings(ports.BuildingFilter{GameID: g.ID, Position: &pos})
		if len(bs) != 1 || bs[0].OwnerID != p2.ID || bs[0].Kind != domain.City {
			t.Fatalf("building at %s = %+v", pos, bs)
		}
		bs, _ = tx.Buildings(ports.BuildingFilter{GameID: g.ID, OwnerID: p1.ID})
		if len(bs) != 1 {
			t.Fatalf("p1 buildings = %d", len(bs))
		}
		roads, _ := tx.Roads(ports.RoadFilter{GameID: g.ID, Vertex: &v})
		if len(roads) != 1 || roads[0].From != v {
			t.Fatalf("roads at %s = %+v", v, roads)
		}
		res, _ := tx.Resources(ports.ResourceFilter{GameID: g.ID, OwnerID: p1.ID, Terrain: domain.Brick})
		if len(res) != 2 {
			t.Fatalf("p1 brick = %d, want 2", len(res))
		}
		cards, _ := tx.Cards(ports.CardFilter{GameID: g.ID, Kind: domain.Knight})
		if len(cards) != 1 || cards[0].OwnerID != p1.ID {
			t.Fatalf("knights = %+v", cards)
		}
		return nil
	})
}

func testRooms(t *testing.T, s ports.Store) {
	ctx := context.Background()
	var room domain.Room
	err := s.Update(ctx, func(tx ports.Tx) error {
		b := board()
		if err := tx.CreateBoard(&b); err != nil {
			return err
		}
		room = domain.Room{Name: "r", Owner: "alice", MaxPlayers: 4, BoardID: b.ID, Players: []string{"bob"}}
		return tx.CreateRoom(&room)
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	err = s.Update(ctx, func(tx ports.Tx) error {
		r, err := tx.Room(room.ID)
		if err != nil {
			return err
		}
		r.Players = append(r.Players, "carol", "dave")
		r.GameHasStarted = true
		return tx.UpdateRoom(r)
	})
	if err != nil {
		t.Fatalf("update room: %v", err)
	}
	_ = s.View(ctx, func(tx ports.Tx) error {
		rooms, err := tx.Rooms()
		if err != nil {
			t.Fatalf("Rooms: %v", err)
		}
		if len(rooms) != 1 {
			t.Fatalf("rooms = %d", len(rooms))
		}
		r := rooms[0]
		if !r.GameHasStarted || len(r.Players) != 3 || r.Players[2] != "dave" {
			t.Fatalf("room = %+v", r)
		}
		return nil
	})
	if err := s.Update(ctx, func(tx ports.Tx) error { return tx.DeleteRoom(room.ID) }); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	_ = s.View(ctx, func(tx ports.Tx) error {
		if _, err := tx.Room(room.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("deleted room err = %v", err)
		}
		return nil
	})
}

func testViewReadOnly(t *testing.T, s ports.Store) {
	err := s.View(context.Background(), func(tx ports.Tx) error {
		b := board()
		return tx.CreateBoard(&b)
	})
	if err == nil {
		t.Fatal("write inside View succeeded")
	}
}

func testDuplicateRoad(t *testing.T, s ports.Store) {
	g, p1, p2 := seed(t, s)
	a, b := domain.VertexPosition{Ring: 0, Index: 0}, domain.VertexPosition{Ring: 0, Index: 1}
	err := s.Update(context.Background(), func(tx ports.Tx) error {
		r := domain.NewRoad(g.ID, p1.ID, a, b)
		return tx.CreateRoad(&r)
	})
	if err != nil {
		t.Fatalf("first road: %v", err)
	}
	err = s.Update(context.Background(), func(tx ports.Tx) error {
		r := domain.Road{GameID: g.ID, OwnerID: p2.ID, From: b, To: a}
		return tx.CreateRoad(&r)
	})
	if err == nil {
		t.Fatal("second road on the same edge succeeded")
	}
}
