package domain

import "fmt"

// Terrain is the land type of a hex tile; every terrain except desert names a resource.
type Terrain string

const (
	Brick  Terrain = "brick"
	Wool   Terrain = "wool"
	Grain  Terrain = "grain"
	Ore    Terrain = "ore"
	Lumber Terrain = "lumber"
	Desert Terrain = "desert"
)

// ResourceTerrains lists the producible terrains in canonical order.
var ResourceTerrains = []Terrain{Brick, Wool, Grain, Ore, Lumber}

// IsResource reports whether t can be held as a resource card.
func (t Terrain) IsResource() bool {
	switch t {
	case Brick, Wool, Grain, Ore, Lumber:
		return true
	}
	return false
}

// IsTerrain reports whether t is a known tile terrain.
func (t Terrain) IsTerrain() bool {
	return t == Desert || t.IsResource()
}

// TilePosition addresses a hex cell on one of the three rings.
type TilePosition struct {
	Ring  int `json:"level"`
	Index int `json:"index"`
}

func (p TilePosition) String() string { return fmt.Sprintf("tile(%d,%d)", p.Ring, p.Index) }

// VertexPosition addresses a hex corner; buildings and road endpoints live here.
type VertexPosition struct {
	Ring  int `json:"level"`
	Index int `json:"index"`
}

func (p VertexPosition) String() string { return fmt.Sprintf("vertex(%d,%d)", p.Ring, p.Index) }

// Less orders vertices by ring then index.
func (p VertexPosition) Less(o VertexPosition) bool {
	if p.Ring != o.Ring {
		return p.Ring < o.Ring
	}
	return p.Index < o.Index
}

// Tile is one hex of a board template.
type Tile struct {
	Position TilePosition `json:"position"`
	Terrain  Terrain      `json:"terrain"`
	Token    int          `json:"token"`
}

// Board is a named template of tiles shared by every game played on it.
type Board struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Tiles []Tile `json:"tiles"`
}

// TileAt returns the board tile at p.
func (b Board) TileAt(p TilePosition) (Tile, bool) {
	for _, t := range b.Tiles {
		if t.Position == p {
			return t, true
		}
	}
	return Tile{}, false
}

// DesertPosition returns the first desert tile, or the centre when the board has none.
func (b Board) DesertPosition() TilePosition {
	for _, t := range b.Tiles {
		if t.Terrain == Desert {
			return t.Position
		}
	}
	return TilePosition{}
}

// Game is a single match on a board.
type Game struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	BoardID int64        `json:"board_id"`
	Robber  TilePosition `json:"robber"`
	Winner  string       `json:"winner,omitempty"` // username, empty while the game is running
}

// Player is a seat in a game.
type Player struct {
	ID            int64  `json:"id"`
	GameID        int64  `json:"game_id"`
	Username      string `json:"username"`
	Turn          int    `json:"turn"` // 1..4
	Colour        string `json:"colour"`
	VictoryPoints int    `json:"victory_points"`
}

// BuildingKind distinguishes settlements from cities.
type BuildingKind string

const (
	Settlement BuildingKind = "settlement"
	City       BuildingKind = "city"
)

// Building occupies one vertex of a game.
type Building struct {
	ID       int64          `json:"id"`
	GameID   int64          `json:"game_id"`
	OwnerID  int64          `json:"owner_id"`
	Kind     BuildingKind   `json:"name"`
	Position VertexPosition `json:"position"`
}

// Road joins two neighbouring vertices. From always sorts before To.
type Road struct {
	ID      int64          `json:"id"`
	GameID  int64          `json:"game_id"`
	OwnerID int64          `json:"owner_id"`
	From    VertexPosition `json:"from"`
	To      VertexPosition `json:"to"`
}

// NewRoad builds a road with normalized endpoints.
func NewRoad(gameID, ownerID int64, a, b VertexPosition) Road {
	from, to := NormalizeEdge(a, b)
	return Road{GameID: gameID, OwnerID: ownerID, From: from, To: to}
}

// NormalizeEdge orders an unordered endpoint pair.
func NormalizeEdge(a, b VertexPosition) (VertexPosition, VertexPosition) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

// Touches reports whether v is one of the road endpoints.
func (r Road) Touches(v VertexPosition) bool {
	return r.From == v || r.To == v
}

// Resource is a single resource card.
type Resource struct {
	ID         int64   `json:"id"`
	GameID     int64   `json:"game_id"`
	OwnerID    int64   `json:"owner_id"`
	Terrain    Terrain `json:"name"`
	LastGained bool    `json:"last_gained"`
}

// CardKind names a development card.
type CardKind string

const (
	Knight       CardKind = "knight"
	VictoryPoint CardKind = "victory_point"
	RoadBuilding CardKind = "road_building"
	Monopoly     CardKind = "monopoly"
	YearOfPlenty CardKind = "year_of_plenty"
)

// Card is a single development card.
type Card struct {
	ID      int64    `json:"id"`
	GameID  int64    `json:"game_id"`
	OwnerID int64    `json:"owner_id"`
	Kind    CardKind `json:"name"`
}

// Stage controls which actions the current player may take.
type Stage string

const (
	StageAwaitingRoll  Stage = "AWAITING_ROLL"
	StageHazardPending Stage = "HAZARD_PENDING"
	StageFullPlay      Stage = "FULL_PLAY"
)

// CurrentTurn is the single turn record of a game.
type CurrentTurn struct {
	GameID   int64  `json:"game_id"`
	PlayerID int64  `json:"player_id"`
	Dice     [2]int `json:"dices"`
	Stage    Stage  `json:"stage"`
}

// Sum returns the total of the last roll, or 0 before the first roll.
func (c CurrentTurn) Sum() int {
	return c.Dice[0] + c.Dice[1]
}

// Room is a pre-game lobby. Players excludes the owner.
type Room struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Owner          string   `json:"owner"`
	Players        []string `json:"players"`
	MaxPlayers     int      `json:"max_players"`
	BoardID        int64    `json:"board_id"`
	GameHasStarted bool     `json:"game_has_started"`
	GameID         int64    `json:"game_id,omitempty"`
}

// Seats returns owner followed by joined players.
func (r Room) Seats() []string {
	seats := make([]string, 0, len(r.Players)+1)
	seats = append(seats, r.Owner)
	return append(seats, r.Players...)
}

// Has reports whether username is the owner or a joined player.
func (r Room) Has(username string) bool {
	for _, u := range r.Seats() {
		if u == username {
			return true
		}
	}
	return false
}
