// Package memory is an in-process entity store. Each Update works on a copy of
// the state that replaces the live state only when the unit of work succeeds.
// A table is copied the first time an Update writes to it.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

var errReadOnly = errors.New("memory: write in read-only transaction")

type state struct {
	nextID    int64
	boards    map[int64]domain.Board
	games     map[int64]domain.Game
	players   map[int64]domain.Player
	buildings map[int64]domain.Building
	roads     map[int64]domain.Road
	resources map[int64]domain.Resource
	cards     map[int64]domain.Card
	turns     map[int64]domain.CurrentTurn
	rooms     map[int64]domain.Room
}

func newState() *state {
	return &state{
		boards:    map[int64]domain.Board{},
		games:     map[int64]domain.Game{},
		players:   map[int64]domain.Player{},
		buildings: map[int64]domain.Building{},
		roads:     map[int64]domain.Road{},
		resources: map[int64]domain.Resource{},
		cards:     map[int64]domain.Card{},
		turns:     map[int64]domain.CurrentTurn{},
		rooms:     map[int64]domain.Room{},
	}
}

type table uint16

const (
	tableBoards table = 1 << iota
	tableGames
	tablePlayers
	tableBuildings
	tableRoads
	tableResources
	tableCards
	tableTurns
	tableRooms
)

// own returns the table m for writing, copying it on the first write of tx.
// Slices inside records are never mutated in place.
func own[V any](t *tx, name table, m *map[int64]V) map[int64]V {
	if t.copied&name == 0 {
		*m = copyMap(*m)
		t.copied |= name
	}
	return *m
}

func copyMap[V any](in map[int64]V) map[int64]V {
	out := make(map[int64]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Store implements ports.Store in memory.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// Update runs fn against a private copy and publishes it when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := *s.st
	if err := fn(&tx{st: &work}); err != nil {
		return err
	}
	s.st = &work
	return nil
}

// View runs fn against the live state without allowing writes.
func (s *Store) View(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&tx{st: s.st, readOnly: true})
}

type tx struct {
	st       *state
	readOnly bool
	copied   table
}

func (t *tx) write() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) id() int64 {
	t.st.nextID++
	return t.st.nextID
}

func sortedByID[V any](in map[int64]V, keep func(V) bool) []V {
	ids := make([]int64, 0, len(in))
	for id, v := range in {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, in[id])
	}
	return out
}

func get[V any](in map[int64]V, id int64, what string) (V, error) {
	v, ok := in[id]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%s %d: %w", what, id, ports.ErrNotFound)
	}
	return v, nil
}

func cloneBoard(b domain.Board) domain.Board {
	b.Tiles = append([]domain.Tile(nil), b.Tiles...)
	return b
}

func cloneRoom(r domain.Room) domain.Room {
	r.Players = append([]string(nil), r.Players...)
	return r
}

func (t *tx) Board(id int64) (domain.Board, error) {
	b, err := get(t.st.boards, id, "board")
	return cloneBoard(b), err
}

func (t *tx) Boards() ([]domain.Board, error) {
	out := sortedByID(t.st.boards, nil)
	for i := range out {
		out[i] = cloneBoard(out[i])
	}
	return out, nil
}

func (t *tx) CreateBoard(b *domain.Board) error {
	if err := t.write(); err != nil {
		return err
	}
	b.ID = t.id()
	own(t, tableBoards, &t.st.boards)[b.ID] = cloneBoard(*b)
	return nil
}

func (t *tx) Game(id int64) (domain.Game, error) {
	return get(t.st.games, id, "game")
}

func (t *tx) Games() ([]domain.Game, error) {
	return sortedByID(t.st.games, nil), nil
}

func (t *tx) CreateGame(g *domain.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	g.ID = t.id()
	own(t, tableGames, &t.st.games)[g.ID] = *g
	return nil
}

func (t *tx) UpdateGame(g domain.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.games, g.ID, "game"); err != nil {
		return err
	}
	own(t, tableGames, &t.st.games)[g.ID] = g
	return nil
}

func (t *tx) Player(id int64) (domain.Player, error) {
	return get(t.st.players, id, "player")
}

func (t *tx) PlayerByUsername(gameID int64, username string) (domain.Player, error) {
	for _, p := range t.st.players {
		if p.GameID == gameID && p.Username == username {
			return p, nil
		}
	}
	return domain.Player{}, fmt.Errorf("player %q in game %d: %w", username, gameID, ports.ErrNotFound)
}

func (t *tx) Players(gameID int64) ([]domain.Player, error) {
	out := sortedByID(t.st.players, func(p domain.Player) bool { return p.GameID == gameID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Turn < out[j].Turn })
	return out, nil
}

func (t *tx) CreatePlayer(p *domain.Player) error {
	if err := t.write(); err != nil {
		return err
	}
	p.ID = t.id()
	own(t, tablePlayers, &t.st.players)[p.ID] = *p
	return nil
}

func (t *tx) UpdatePlayer(p domain.Player) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.players, p.ID, "player"); err != nil {
		return err
	}
	own(t, tablePlayers, &t.st.players)[p.ID] = p
	return nil
}

func (t *tx) Buildings(f ports.BuildingFilter) ([]domain.Building, error) {
	return sortedByID(t.st.buildings, func(b domain.Building) bool {
		return (f.GameID == 0 || b.GameID == f.GameID) &&
			(f.OwnerID == 0 || b.OwnerID == f.OwnerID) &&
			(f.Position == nil || b.Position == *f.Position)
	}), nil
}

func (t *tx) CreateBuilding(b *domain.Building) error {
	if err := t.write(); err != nil {
		return err
	}
	for _, other := range t.st.buildings {
		if other.GameID == b.GameID && other.Position == b.Position {
			return fmt.Errorf("memory: building at %s already exists", b.Position)
		}
	}
	b.ID = t.id()
	own(t, tableBuildings, &t.st.buildings)[b.ID] = *b
	return nil
}

func (t *tx) UpdateBuilding(b domain.Building) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.buildings, b.ID, "building"); err != nil {
		return err
	}
	own(t, tableBuildings, &t.st.buildings)[b.ID] = b
	return nil
}

func (t *tx) Roads(f ports.RoadFilter) ([]domain.Road, error) {
	return sortedByID(t.st.roads, func(r domain.Road) bool {
		return (f.GameID == 0 || r.GameID == f.GameID) &&
			(f.OwnerID == 0 || r.OwnerID == f.OwnerID) &&
			(f.Vertex == nil || r.Touches(*f.Vertex))
	}), nil
}

func (t *tx) CreateRoad(r *domain.Road) error {
	if err := t.write(); err != nil {
		return err
	}
	r.From, r.To = domain.NormalizeEdge(r.From, r.To)
	for _, other := range t.st.roads {
		if other.GameID == r.GameID && other.From == r.From && other.To == r.To {
			return fmt.Errorf("memory: road %s-%s already exists", r.From, r.To)
		}
	}
	r.ID = t.id()
	own(t, tableRoads, &t.st.roads)[r.ID] = *r
	return nil
}

func (t *tx) Resources(f ports.ResourceFilter) ([]domain.Resource, error) {
	return sortedByID(t.st.resources, func(r domain.Resource) bool {
		return (f.GameID == 0 || r.GameID == f.GameID) &&
			(f.OwnerID == 0 || r.OwnerID == f.OwnerID) &&
			(f.Terrain == "" || r.Terrain == f.Terrain)
	}), nil
}

func (t *tx) CreateResource(r *domain.Resource) error {
	if err := t.write(); err != nil {
		return err
	}
	r.ID = t.id()
	own(t, tableResources, &t.st.resources)[r.ID] = *r
	return nil
}

func (t *tx) UpdateResource(r domain.Resource) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.resources, r.ID, "resource"); err != nil {
		return err
	}
	own(t, tableResources, &t.st.resources)[r.ID] = r
	return nil
}

func (t *tx) DeleteResource(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.resources, id, "resource"); err != nil {
		return err
	}
	delete(own(t, tableResources, &t.st.resources), id)
	return nil
}

func (t *tx) Cards(f ports.CardFilter) ([]domain.Card, error) {
	return sortedByID(t.st.cards, func(c domain.Card) bool {
		return (f.GameID == 0 || c.GameID == f.GameID) &&
			(f.OwnerID == 0 || c.OwnerID == f.OwnerID) &&
			(f.Kind == "" || c.Kind == f.Kind)
	}), nil
}

func (t *tx) CreateCard(c *domain.Card) error {
	if err := t.write(); err != nil {
		return err
	}
	c.ID = t.id()
	own(t, tableCards, &t.st.cards)[c.ID] = *c
	return nil
}

func (t *tx) DeleteCard(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.cards, id, "card"); err != nil {
		return err
	}
	delete(own(t, tableCards, &t.st.cards), id)
	return nil
}

func (t *tx) CurrentTurn(gameID int64) (domain.CurrentTurn, error) {
	ct, ok := t.st.turns[gameID]
	if !ok {
		return domain.CurrentTurn{}, fmt.Errorf("current turn of game %d: %w", gameID, ports.ErrNotFound)
	}
	return ct, nil
}

func (t *tx) PutCurrentTurn(ct domain.CurrentTurn) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.games, ct.GameID, "game"); err != nil {
		return err
	}
	own(t, tableTurns, &t.st.turns)[ct.GameID] = ct
	return nil
}

func (t *tx) Room(id int64) (domain.Room, error) {
	r, err := get(t.st.rooms, id, "room")
	return cloneRoom(r), err
}

func (t *tx) Rooms() ([]domain.Room, error) {
	out := sortedByID(t.st.rooms, nil)
	for i := range out {
		out[i] = cloneRoom(out[i])
	}
	return out, nil
}

func (t *tx) CreateRoom(r *domain.Room) error {
	if err := t.write(); err != nil {
		return err
	}
	r.ID = t.id()
	own(t, tableRooms, &t.st.rooms)[r.ID] = cloneRoom(*r)
	return nil
}

func (t *tx) UpdateRoom(r domain.Room) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.rooms, r.ID, "room"); err != nil {
		return err
	}
	own(t, tableRooms, &t.st.rooms)[r.ID] = cloneRoom(r)
	return nil
}

func (t *tx) DeleteRoom(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := get(t.st.rooms, id, "room"); err != nil {
		return err
	}
	delete(own(t, tableRooms, &t.st.rooms), id)
	return nil
}

var _ ports.Store = (*Store)(nil)
var _ ports.Tx = (*tx)(nil)
