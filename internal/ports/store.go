package ports

import (
	"context"
	"errors"

	"colonos/internal/domain"
)

// ErrNotFound is returned by Tx getters when the record does not exist.
var ErrNotFound = errors.New("record not found")

// Store runs units of work against game state. Update serializes writers and
// commits all writes of fn or none of them; View is read-only.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// BuildingFilter selects buildings; zero fields match anything.
type BuildingFilter struct {
	GameID   int64
	OwnerID  int64
	Position *domain.VertexPosition
}

// RoadFilter selects roads; Vertex matches either endpoint.
type RoadFilter struct {
	GameID  int64
	OwnerID int64
	Vertex  *domain.VertexPosition
}

// ResourceFilter selects resource cards.
type ResourceFilter struct {
	GameID  int64
	OwnerID int64
	Terrain domain.Terrain
}

// CardFilter selects development cards.
type CardFilter struct {
	GameID  int64
	OwnerID int64
	Kind    domain.CardKind
}

// Tx is the entity store as seen inside one unit of work. List results are
// ordered by id; Players are ordered by turn.
type Tx interface {
	Board(id int64) (domain.Board, error)
	Boards() ([]domain.Board, error)
	CreateBoard(b *domain.Board) error

	Game(id int64) (domain.Game, error)
	Games() ([]domain.Game, error)
	CreateGame(g *domain.Game) error
	UpdateGame(g domain.Game) error

	Player(id int64) (domain.Player, error)
	PlayerByUsername(gameID int64, username string) (domain.Player, error)
	Players(gameID int64) ([]domain.Player, error)
	CreatePlayer(p *domain.Player) error
	UpdatePlayer(p domain.Player) error

	Buildings(f BuildingFilter) ([]domain.Building, error)
	CreateBuilding(b *domain.Building) error
	UpdateBuilding(b domain.Building) error

	Roads(f RoadFilter) ([]domain.Road, error)
	CreateRoad(r *domain.Road) error

	Resources(f ResourceFilter) ([]domain.Resource, error)
	CreateResource(r *domain.Resource) error
	UpdateResource(r domain.Resource) error
	DeleteResource(id int64) error

	Cards(f CardFilter) ([]domain.Card, error)
	CreateCard(c *domain.Card) error
	DeleteCard(id int64) error

	CurrentTurn(gameID int64) (domain.CurrentTurn, error)
	PutCurrentTurn(t domain.CurrentTurn) error

	Room(id int64) (domain.Room, error)
	Rooms() ([]domain.Room, error)
	CreateRoom(r *domain.Room) error
	UpdateRoom(r domain.Room) error
	DeleteRoom(id int64) error
}
