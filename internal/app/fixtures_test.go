package app

import (
	"context"
	"errors"
	"testing"

	"colonos/internal/domain"
	"colonos/internal/ports"
	"colonos/internal/ports/memory"
)

// scripted replays fixed values, then returns zeros.
type scripted struct {
	vals []int
}

func (s *scripted) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

// dice scripts a roll of (d1,d2).
func dice(d1, d2 int) []int {
	return []int{d1 - 1, d2 - 1}
}

var usernames = []string{"ana", "bob", "cid", "dee"}

// testBoard has a desert centre, token 6 on ring 1 and token 8 on ring 2, all grain.
func testBoard() domain.Board {
	b := domain.Board{Name: "test"}
	for _, p := range domain.AllTilePositions() {
		t := domain.Tile{Position: p, Terrain: domain.Grain, Token: 6}
		switch p.Ring {
		case 0:
			t.Terrain, t.Token = domain.Desert, 0
		case 2:
			t.Token = 8
		}
		b.Tiles = append(b.Tiles, t)
	}
	return b
}

type fixture struct {
	t       *testing.T
	store   *memory.Store
	src     *scripted
	svc     *Service
	gameID  int64
	players map[string]int64
}

// newFixture seeds a running game with ana, bob, cid and dee on turns 1..4,
// ana to play in stage.
func newFixture(t *testing.T, stage domain.Stage) *fixture {
	t.Helper()
	f := &fixture{t: t, store: memory.New(), src: &scripted{}, players: map[string]int64{}}
	rules := DefaultRules()
	rules.ManualRoll = true
	f.svc = NewService(f.store, rules, f.src)
	f.update(func(tx ports.Tx) error {
		b := testBoard()
		if err := tx.CreateBoard(&b); err != nil {
			return err
		}
		g := domain.Game{Name: "game", BoardID: b.ID, Robber: b.DesertPosition()}
		if err := tx.CreateGame(&g); err != nil {
			return err
		}
		f.gameID = g.ID
		for i, u := range usernames {
			pl := domain.Player{GameID: g.ID, Username: u, Turn: i + 1, Colour: rules.Colours[i]}
			if err := tx.CreatePlayer(&pl); err != nil {
				return err
			}
			f.players[u] = pl.ID
		}
		return tx.PutCurrentTurn(domain.CurrentTurn{
			GameID:   g.ID,
			PlayerID: f.players["ana"],
			Dice:     [2]int{3, 3},
			Stage:    stage,
		})
	})
	return f
}

func (f *fixture) update(fn func(tx ports.Tx) error) {
	f.t.Helper()
	if err := f.store.Update(context.Background(), fn); err != nil {
		f.t.Fatalf("seed: %v", err)
	}
}

func (f *fixture) view(fn func(tx ports.Tx) error) {
	f.t.Helper()
	if err := f.store.View(context.Background(), fn); err != nil {
		f.t.Fatalf("view: %v", err)
	}
}

func (f *fixture) give(user string, terrain domain.Terrain, n int) {
	f.t.Helper()
	f.update(func(tx ports.Tx) error {
		for i := 0; i < n; i++ {
			r := domain.Resource{GameID: f.gameID, OwnerID: f.players[user], Terrain: terrain}
			if err := tx.CreateResource(&r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *fixture) giveCost(user string, c domain.Cost) {
	f.t.Helper()
	for terrain, n := range c {
		f.give(user, terrain, n)
	}
}

func (f *fixture) giveCard(user string, kind domain.CardKind) {
	f.t.Helper()
	f.update(func(tx ports.Tx) error {
		return tx.CreateCard(&domain.Card{GameID: f.gameID, OwnerID: f.players[user], Kind: kind})
	})
}

func (f *fixture) build(user string, kind domain.BuildingKind, ring, index int) {
	f.t.Helper()
	f.update(func(tx ports.Tx) error {
		return tx.CreateBuilding(&domain.Building{
			GameID:   f.gameID,
			OwnerID:  f.players[user],
			Kind:     kind,
			Position: domain.VertexPosition{Ring: ring, Index: index},
		})
	})
}

func (f *fixture) road(user string, r1, i1, r2, i2 int) {
	f.t.Helper()
	f.update(func(tx ports.Tx) error {
		road := domain.NewRoad(f.gameID, f.players[user],
			domain.VertexPosition{Ring: r1, Index: i1}, domain.VertexPosition{Ring: r2, Index: i2})
		return tx.CreateRoad(&road)
	})
}

func (f *fixture) setStage(stage domain.Stage) {
	f.t.Helper()
	f.update(func(tx ports.Tx) error {
		turn, err := tx.CurrentTurn(f.gameID)
		if err != nil {
			return err
		}
		turn.Stage = stage
		return tx.PutCurrentTurn(turn)
	})
}

func (f *fixture) perform(user string, a Action) ([]Event, error) {
	return f.svc.Perform(context.Background(), f.gameID, user, a)
}

func (f *fixture) mustPerform(user string, a Action) []Event {
	f.t.Helper()
	evs, err := f.perform(user, a)
	if err != nil {
		f.t.Fatalf("%s %s: %v", user, a.Type, err)
	}
	return evs
}

func (f *fixture) hand(user string) []domain.Resource {
	f.t.Helper()
	var out []domain.Resource
	f.view(func(tx ports.Tx) error {
		var err error
		out, err = tx.Resources(ports.ResourceFilter{GameID: f.gameID, OwnerID: f.players[user]})
		return err
	})
	return out
}

func (f *fixture) cards(user string) []domain.Card {
	f.t.Helper()
	var out []domain.Card
	f.view(func(tx ports.Tx) error {
		var err error
		out, err = tx.Cards(ports.CardFilter{GameID: f.gameID, OwnerID: f.players[user]})
		return err
	})
	return out
}

func (f *fixture) turn() domain.CurrentTurn {
	f.t.Helper()
	var out domain.CurrentTurn
	f.view(func(tx ports.Tx) error {
		var err error
		out, err = tx.CurrentTurn(f.gameID)
		return err
	})
	return out
}

func (f *fixture) game() domain.Game {
	f.t.Helper()
	var out domain.Game
	f.view(func(tx ports.Tx) error {
		var err error
		out, err = tx.Game(f.gameID)
		return err
	})
	return out
}

func (f *fixture) player(user string) domain.Player {
	f.t.Helper()
	var out domain.Player
	f.view(func(tx ports.Tx) error {
		var err error
		out, err = tx.Player(f.players[user])
		return err
	})
	return out
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func eventKinds(evs []Event) []EventKind {
	out := make([]EventKind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func findEvent(evs []Event, kind EventKind) (Event, bool) {
	for _, ev := range evs {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}
