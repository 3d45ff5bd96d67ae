// Package sqlite stores game state in SQLite through sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

var errReadOnly = errors.New("sqlite: write in read-only transaction")

// Store implements ports.Store on a single SQLite connection.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and applies pending migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(db, migrationFS); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn in one SQL transaction, committed only when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx ports.Tx) error) error {
	return s.run(ctx, false, fn)
}

// View runs fn in a transaction that rejects writes and is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx ports.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx ports.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx, readOnly: readOnly}); err != nil {
		return err
	}
	if readOnly {
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type tx struct {
	tx       *sqlx.Tx
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func notFound(err error, what string, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, key, ports.ErrNotFound)
	}
	return fmt.Errorf("load %s %v: %w", what, key, err)
}

func requireRow(res sql.Result, what string, key any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, key, ports.ErrNotFound)
	}
	return nil
}

// where joins optional conditions into a WHERE clause.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Boards

type boardRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type tileRow struct {
	BoardID int64  `db:"board_id"`
	Ring    int    `db:"ring"`
	Index   int    `db:"idx"`
	Terrain string `db:"terrain"`
	Token   int    `db:"token"`
}

func (t *tx) tiles(boardID int64) ([]domain.Tile, error) {
	var rows []tileRow
	if err := t.tx.Select(&rows, `SELECT board_id, ring, idx, terrain, token FROM tiles WHERE board_id = ? ORDER BY ring, idx`, boardID); err != nil {
		return nil, fmt.Errorf("load tiles of board %d: %w", boardID, err)
	}
	out := make([]domain.Tile, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Tile{
			Position: domain.TilePosition{Ring: r.Ring, Index: r.Index},
			Terrain:  domain.Terrain(r.Terrain),
			Token:    r.Token,
		})
	}
	return out, nil
}

func (t *tx) Board(id int64) (domain.Board, error) {
	var row boardRow
	if err := t.tx.Get(&row, `SELECT id, name FROM boards WHERE id = ?`, id); err != nil {
		return domain.Board{}, notFound(err, "board", id)
	}
	tiles, err := t.tiles(id)
	if err != nil {
		return domain.Board{}, err
	}
	return domain.Board{ID: row.ID, Name: row.Name, Tiles: tiles}, nil
}

func (t *tx) Boards() ([]domain.Board, error) {
	var rows []boardRow
	if err := t.tx.Select(&rows, `SELECT id, name FROM boards ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	out := make([]domain.Board, 0, len(rows))
	for _, r := range rows {
		tiles, err := t.tiles(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Board{ID: r.ID, Name: r.Name, Tiles: tiles})
	}
	return out, nil
}

func (t *tx) CreateBoard(b *domain.Board) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.Exec(`INSERT INTO boards (name) VALUES (?)`, b.Name)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	for _, tile := range b.Tiles {
		row := tileRow{BoardID: b.ID, Ring: tile.Position.Ring, Index: tile.Position.Index, Terrain: string(tile.Terrain), Token: tile.Token}
		if _, err := t.tx.NamedExec(`INSERT INTO tiles (board_id, ring, idx, terrain, token) VALUES (:board_id, :ring, :idx, :terrain, :token)`, row); err != nil {
			return fmt.Errorf("insert tile %s: %w", tile.Position, err)
		}
	}
	return nil
}

// Games

type gameRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	BoardID     int64  `db:"board_id"`
	RobberRing  int    `db:"robber_ring"`
	RobberIndex int    `db:"robber_idx"`
	Winner      string `db:"winner"`
}

func (r gameRow) game() domain.Game {
	return domain.Game{
		ID:      r.ID,
		Name:    r.Name,
		BoardID: r.BoardID,
		Robber:  domain.TilePosition{Ring: r.RobberRing, Index: r.RobberIndex},
		Winner:  r.Winner,
	}
}

func toGameRow(g domain.Game) gameRow {
	return gameRow{ID: g.ID, Name: g.Name, BoardID: g.BoardID, RobberRing: g.Robber.Ring, RobberIndex: g.Robber.Index, Winner: g.Winner}
}

const gameColumns = `id, name, board_id, robber_ring, robber_idx, winner`

func (t *tx) Game(id int64) (domain.Game, error) {
	var row gameRow
	if err := t.tx.Get(&row, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id); err != nil {
		return domain.Game{}, notFound(err, "game", id)
	}
	return row.game(), nil
}

func (t *tx) Games() ([]domain.Game, error) {
	var rows []gameRow
	if err := t.tx.Select(&rows, `SELECT `+gameColumns+` FROM games ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]domain.Game, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.game())
	}
	return out, nil
}

func (t *tx) CreateGame(g *domain.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`INSERT INTO games (name, board_id, robber_ring, robber_idx, winner)
		VALUES (:name, :board_id, :robber_ring, :robber_idx, :winner)`, toGameRow(*g))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

func (t *tx) UpdateGame(g domain.Game) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`UPDATE games SET name = :name, board_id = :board_id, robber_ring = :robber_ring,
		robber_idx = :robber_idx, winner = :winner WHERE id = :id`, toGameRow(g))
	if err != nil {
		return fmt.Errorf("update game %d: %w", g.ID, err)
	}
	return requireRow(res, "game", g.ID)
}

// Players

const playerColumns = `id, game_id, username, turn, colour, victory_points`

type playerRow struct {
	ID            int64  `db:"id"`
	GameID        int64  `db:"game_id"`
	Username      string `db:"username"`
	Turn          int    `db:"turn"`
	Colour        string `db:"colour"`
	VictoryPoints int    `db:"victory_points"`
}

func (t *tx) Player(id int64) (domain.Player, error) {
	var row playerRow
	if err := t.tx.Get(&row, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id); err != nil {
		return domain.Player{}, notFound(err, "player", id)
	}
	return domain.Player(row), nil
}

func (t *tx) PlayerByUsername(gameID int64, username string) (domain.Player, error) {
	var row playerRow
	if err := t.tx.Get(&row, `SELECT `+playerColumns+` FROM players WHERE game_id = ? AND username = ?`, gameID, username); err != nil {
		return domain.Player{}, notFound(err, "player", username)
	}
	return domain.Player(row), nil
}

func (t *tx) Players(gameID int64) ([]domain.Player, error) {
	var rows []playerRow
	if err := t.tx.Select(&rows, `SELECT `+playerColumns+` FROM players WHERE game_id = ? ORDER BY turn, id`, gameID); err != nil {
		return nil, fmt.Errorf("list players of game %d: %w", gameID, err)
	}
	out := make([]domain.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Player(r))
	}
	return out, nil
}

func (t *tx) CreatePlayer(p *domain.Player) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`INSERT INTO players (game_id, username, turn, colour, victory_points)
		VALUES (:game_id, :username, :turn, :colour, :victory_points)`, playerRow(*p))
	if err != nil {
		return fmt.Errorf("insert player %s: %w", p.Username, err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (t *tx) UpdatePlayer(p domain.Player) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`UPDATE players SET username = :username, turn = :turn, colour = :colour,
		victory_points = :victory_points WHERE id = :id`, playerRow(p))
	if err != nil {
		return fmt.Errorf("update player %d: %w", p.ID, err)
	}
	return requireRow(res, "player", p.ID)
}

// Buildings

type buildingRow struct {
	ID      int64  `db:"id"`
	GameID  int64  `db:"game_id"`
	OwnerID int64  `db:"owner_id"`
	Kind    string `db:"kind"`
	Ring    int    `db:"ring"`
	Index   int    `db:"idx"`
}

func (t *tx) Buildings(f ports.BuildingFilter) ([]domain.Building, error) {
	var w where
	if f.GameID != 0 {
		w.add("game_id = ?", f.GameID)
	}
	if f.OwnerID != 0 {
		w.add("owner_id = ?", f.OwnerID)
	}
	if f.Position != nil {
		w.add("ring = ? AND idx = ?", f.Position.Ring, f.Position.Index)
	}
	var rows []buildingRow
	if err := t.tx.Select(&rows, `SELECT id, game_id, owner_id, kind, ring, idx FROM buildings`+w.String()+` ORDER BY id`, w.args...); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	out := make([]domain.Building, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Building{
			ID:       r.ID,
			GameID:   r.GameID,
			OwnerID:  r.OwnerID,
			Kind:     domain.BuildingKind(r.Kind),
			Position: domain.VertexPosition{Ring: r.Ring, Index: r.Index},
		})
	}
	return out, nil
}

func toBuildingRow(b domain.Building) buildingRow {
	return buildingRow{ID: b.ID, GameID: b.GameID, OwnerID: b.OwnerID, Kind: string(b.Kind), Ring: b.Position.Ring, Index: b.Position.Index}
}

func (t *tx) CreateBuilding(b *domain.Building) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`INSERT INTO buildings (game_id, owner_id, kind, ring, idx)
		VALUES (:game_id, :owner_id, :kind, :ring, :idx)`, toBuildingRow(*b))
	if err != nil {
		return fmt.Errorf("insert building at %s: %w", b.Position, err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (t *tx) UpdateBuilding(b domain.Building) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`UPDATE buildings SET owner_id = :owner_id, kind = :kind, ring = :ring, idx = :idx WHERE id = :id`, toBuildingRow(b))
	if err != nil {
		return fmt.Errorf("update building %d: %w", b.ID, err)
	}
	return requireRow(res, "building", b.ID)
}

// Roads

type roadRow struct {
	ID        int64 `db:"id"`
	GameID    int64 `db:"game_id"`
	OwnerID   int64 `db:"owner_id"`
	FromRing  int   `db:"from_ring"`
	FromIndex int   `db:"from_idx"`
	ToRing    int   `db:"to_ring"`
	ToIndex   int   `db:"to_idx"`
}

func (t *tx) Roads(f ports.RoadFilter) ([]domain.Road, error) {
	var w where
	if f.GameID != 0 {
		w.add("game_id = ?", f.GameID)
	}
	if f.OwnerID != 0 {
		w.add("owner_id = ?", f.OwnerID)
	}
	if f.Vertex != nil {
		v := *f.Vertex
		w.add("((from_ring = ? AND from_idx = ?) OR (to_ring = ? AND to_idx = ?))", v.Ring, v.Index, v.Ring, v.Index)
	}
	var rows []roadRow
	if err := t.tx.Select(&rows, `SELECT id, game_id, owner_id, from_ring, from_idx, to_ring, to_idx FROM roads`+w.String()+` ORDER BY id`, w.args...); err != nil {
		return nil, fmt.Errorf("list roads: %w", err)
	}
	out := make([]domain.Road, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Road{
			ID:      r.ID,
			GameID:  r.GameID,
			OwnerID: r.OwnerID,
			From:    domain.VertexPosition{Ring: r.FromRing, Index: r.FromIndex},
			To:      domain.VertexPosition{Ring: r.ToRing, Index: r.ToIndex},
		})
	}
	return out, nil
}

func (t *tx) CreateRoad(r *domain.Road) error {
	if err := t.write(); err != nil {
		return err
	}
	r.From, r.To = domain.NormalizeEdge(r.From, r.To)
	row := roadRow{GameID: r.GameID, OwnerID: r.OwnerID, FromRing: r.From.Ring, FromIndex: r.From.Index, ToRing: r.To.Ring, ToIndex: r.To.Index}
	res, err := t.tx.NamedExec(`INSERT INTO roads (game_id, owner_id, from_ring, from_idx, to_ring, to_idx)
		VALUES (:game_id, :owner_id, :from_ring, :from_idx, :to_ring, :to_idx)`, row)
	if err != nil {
		return fmt.Errorf("insert road %s-%s: %w", r.From, r.To, err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

// Resources

type resourceRow struct {
	ID         int64  `db:"id"`
	GameID     int64  `db:"game_id"`
	OwnerID    int64  `db:"owner_id"`
	Terrain    string `db:"terrain"`
	LastGained bool   `db:"last_gained"`
}

func (t *tx) Resources(f ports.ResourceFilter) ([]domain.Resource, error) {
	var w where
	if f.GameID != 0 {
		w.add("game_id = ?", f.GameID)
	}
	if f.OwnerID != 0 {
		w.add("owner_id = ?", f.OwnerID)
	}
	if f.Terrain != "" {
		w.add("terrain = ?", string(f.Terrain))
	}
	var rows []resourceRow
	if err := t.tx.Select(&rows, `SELECT id, game_id, owner_id, terrain, last_gained FROM resources`+w.String()+` ORDER BY id`, w.args...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	out := make([]domain.Resource, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Resource{ID: r.ID, GameID: r.GameID, OwnerID: r.OwnerID, Terrain: domain.Terrain(r.Terrain), LastGained: r.LastGained})
	}
	return out, nil
}

func toResourceRow(r domain.Resource) resourceRow {
	return resourceRow{ID: r.ID, GameID: r.GameID, OwnerID: r.OwnerID, Terrain: string(r.Terrain), LastGained: r.LastGained}
}

func (t *tx) CreateResource(r *domain.Resource) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`INSERT INTO resources (game_id, owner_id, terrain, last_gained)
		VALUES (:game_id, :owner_id, :terrain, :last_gained)`, toResourceRow(*r))
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (t *tx) UpdateResource(r domain.Resource) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`UPDATE resources SET owner_id = :owner_id, terrain = :terrain, last_gained = :last_gained WHERE id = :id`, toResourceRow(r))
	if err != nil {
		return fmt.Errorf("update resource %d: %w", r.ID, err)
	}
	return requireRow(res, "resource", r.ID)
}

func (t *tx) DeleteResource(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.Exec(`DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resource %d: %w", id, err)
	}
	return requireRow(res, "resource", id)
}

// Cards

type cardRow struct {
	ID      int64  `db:"id"`
	GameID  int64  `db:"game_id"`
	OwnerID int64  `db:"owner_id"`
	Kind    string `db:"kind"`
}

func (t *tx) Cards(f ports.CardFilter) ([]domain.Card, error) {
	var w where
	if f.GameID != 0 {
		w.add("game_id = ?", f.GameID)
	}
	if f.OwnerID != 0 {
		w.add("owner_id = ?", f.OwnerID)
	}
	if f.Kind != "" {
		w.add("kind = ?", string(f.Kind))
	}
	var rows []cardRow
	if err := t.tx.Select(&rows, `SELECT id, game_id, owner_id, kind FROM cards`+w.String()+` ORDER BY id`, w.args...); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	out := make([]domain.Card, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Card{ID: r.ID, GameID: r.GameID, OwnerID: r.OwnerID, Kind: domain.CardKind(r.Kind)})
	}
	return out, nil
}

func (t *tx) CreateCard(c *domain.Card) error {
	if err := t.write(); err != nil {
		return err
	}
	row := cardRow{GameID: c.GameID, OwnerID: c.OwnerID, Kind: string(c.Kind)}
	res, err := t.tx.NamedExec(`INSERT INTO cards (game_id, owner_id, kind) VALUES (:game_id, :owner_id, :kind)`, row)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (t *tx) DeleteCard(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.Exec(`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	return requireRow(res, "card", id)
}

// Current turn

type turnRow struct {
	GameID   int64  `db:"game_id"`
	PlayerID int64  `db:"player_id"`
	Dice1    int    `db:"dice1"`
	Dice2    int    `db:"dice2"`
	Stage    string `db:"stage"`
}

func (t *tx) CurrentTurn(gameID int64) (domain.CurrentTurn, error) {
	var row turnRow
	if err := t.tx.Get(&row, `SELECT game_id, player_id, dice1, dice2, stage FROM current_turns WHERE game_id = ?`, gameID); err != nil {
		return domain.CurrentTurn{}, notFound(err, "current turn of game", gameID)
	}
	return domain.CurrentTurn{
		GameID:   row.GameID,
		PlayerID: row.PlayerID,
		Dice:     [2]int{row.Dice1, row.Dice2},
		Stage:    domain.Stage(row.Stage),
	}, nil
}

func (t *tx) PutCurrentTurn(ct domain.CurrentTurn) error {
	if err := t.write(); err != nil {
		return err
	}
	row := turnRow{GameID: ct.GameID, PlayerID: ct.PlayerID, Dice1: ct.Dice[0], Dice2: ct.Dice[1], Stage: string(ct.Stage)}
	if _, err := t.tx.NamedExec(`INSERT INTO current_turns (game_id, player_id, dice1, dice2, stage)
		VALUES (:game_id, :player_id, :dice1, :dice2, :stage)
		ON CONFLICT(game_id) DO UPDATE SET player_id = excluded.player_id, dice1 = excluded.dice1,
		dice2 = excluded.dice2, stage = excluded.stage`, row); err != nil {
		return fmt.Errorf("put current turn of game %d: %w", ct.GameID, err)
	}
	return nil
}

// Rooms

type roomRow struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	Owner          string `db:"owner"`
	MaxPlayers     int    `db:"max_players"`
	BoardID        int64  `db:"board_id"`
	GameHasStarted bool   `db:"game_has_started"`
	GameID         int64  `db:"game_id"`
}

const roomColumns = `id, name, owner, max_players, board_id, game_has_started, game_id`

func toRoomRow(r domain.Room) roomRow {
	return roomRow{ID: r.ID, Name: r.Name, Owner: r.Owner, MaxPlayers: r.MaxPlayers, BoardID: r.BoardID, GameHasStarted: r.GameHasStarted, GameID: r.GameID}
}

func (t *tx) roomPlayers(roomID int64) ([]string, error) {
	var names []string
	if err := t.tx.Select(&names, `SELECT username FROM room_players WHERE room_id = ? ORDER BY seat`, roomID); err != nil {
		return nil, fmt.Errorf("list players of room %d: %w", roomID, err)
	}
	return names, nil
}

func (t *tx) room(row roomRow) (domain.Room, error) {
	players, err := t.roomPlayers(row.ID)
	if err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:             row.ID,
		Name:           row.Name,
		Owner:          row.Owner,
		Players:        players,
		MaxPlayers:     row.MaxPlayers,
		BoardID:        row.BoardID,
		GameHasStarted: row.GameHasStarted,
		GameID:         row.GameID,
	}, nil
}

func (t *tx) Room(id int64) (domain.Room, error) {
	var row roomRow
	if err := t.tx.Get(&row, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id); err != nil {
		return domain.Room{}, notFound(err, "room", id)
	}
	return t.room(row)
}

func (t *tx) Rooms() ([]domain.Room, error) {
	var rows []roomRow
	if err := t.tx.Select(&rows, `SELECT `+roomColumns+` FROM rooms ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(rows))
	for _, row := range rows {
		r, err := t.room(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (t *tx) writeRoomPlayers(r domain.Room) error {
	if _, err := t.tx.Exec(`DELETE FROM room_players WHERE room_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear players of room %d: %w", r.ID, err)
	}
	for seat, name := range r.Players {
		if _, err := t.tx.Exec(`INSERT INTO room_players (room_id, seat, username) VALUES (?, ?, ?)`, r.ID, seat, name); err != nil {
			return fmt.Errorf("insert player %s of room %d: %w", name, r.ID, err)
		}
	}
	return nil
}

func (t *tx) CreateRoom(r *domain.Room) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`INSERT INTO rooms (name, owner, max_players, board_id, game_has_started, game_id)
		VALUES (:name, :owner, :max_players, :board_id, :game_has_started, :game_id)`, toRoomRow(*r))
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return t.writeRoomPlayers(*r)
}

func (t *tx) UpdateRoom(r domain.Room) error {
	if err := t.write(); err != nil {
		return err
	}
	res, err := t.tx.NamedExec(`UPDATE rooms SET name = :name, owner = :owner, max_players = :max_players,
		board_id = :board_id, game_has_started = :game_has_started, game_id = :game_id WHERE id = :id`, toRoomRow(r))
	if err != nil {
		return fmt.Errorf("update room %d: %w", r.ID, err)
	}
	if err := requireRow(res, "room", r.ID); err != nil {
		return err
	}
	return t.writeRoomPlayers(r)
}

func (t *tx) DeleteRoom(id int64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, err := t.tx.Exec(`DELETE FROM room_players WHERE room_id = ?`, id); err != nil {
		return fmt.Errorf("delete players of room %d: %w", id, err)
	}
	res, err := t.tx.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	return requireRow(res, "room", id)
}

var _ ports.Store = (*Store)(nil)
var _ ports.Tx = (*tx)(nil)
