package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// CreateRoom opens a lobby owned by owner. maxPlayers zero means the rules' seat count.
func (s *Service) CreateRoom(ctx context.Context, owner, name string, boardID int64, maxPlayers int) (domain.Room, error) {
	if owner == "" {
		return domain.Room{}, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, ErrRoomName
	}
	if maxPlayers == 0 {
		maxPlayers = s.rules.Seats()
	}
	if maxPlayers != s.rules.Seats() {
		return domain.Room{}, ErrRoomSize
	}
	room := domain.Room{Name: name, Owner: owner, Players: []string{}, MaxPlayers: maxPlayers, BoardID: boardID}
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		if _, err := tx.Board(boardID); err != nil {
			return storeErr(err, "Board not found.")
		}
		return tx.CreateRoom(&room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// ListRooms returns every room.
func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	err := s.store.View(ctx, func(tx ports.Tx) error {
		var err error
		rooms, err = tx.Rooms()
		return err
	})
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, err
}

// GetRoom returns one room.
func (s *Service) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	var room domain.Room
	err := s.store.View(ctx, func(tx ports.Tx) error {
		var err error
		room, err = tx.Room(id)
		return storeErr(err, "Room not found.")
	})
	return room, err
}

// JoinRoom seats username in a room that has not started.
func (s *Service) JoinRoom(ctx context.Context, id int64, username string) (domain.Room, []Event, error) {
	if username == "" {
		return domain.Room{}, nil, ErrUnauthenticated
	}
	var room domain.Room
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		var err error
		room, err = tx.Room(id)
		if err != nil {
			return storeErr(err, "Room not found.")
		}
		if room.GameHasStarted {
			return ErrRoomStarted
		}
		if room.Has(username) {
			return ErrAlreadyInRoom
		}
		if len(room.Seats()) >= room.MaxPlayers {
			return ErrRoomFull
		}
		room.Players = append(append([]string{}, room.Players...), username)
		return tx.UpdateRoom(room)
	})
	if err != nil {
		return domain.Room{}, nil, err
	}
	ev := Event{
		Kind:       EventPlayerJoined,
		Payload:    PlayerJoinedPayload{RoomID: room.ID, Username: username, Seats: len(room.Seats())},
		Recipients: room.Seats(),
	}
	return room, []Event{ev}, nil
}

// StartRoom turns a full room into a game. Turns are shuffled, colours follow
// seat order and initial settlements follow turn order.
func (s *Service) StartRoom(ctx context.Context, id int64, requester string) (domain.Room, []Event, error) {
	if requester == "" {
		return domain.Room{}, nil, ErrUnauthenticated
	}
	var (
		room   domain.Room
		events []Event
	)
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		var err error
		room, err = tx.Room(id)
		if err != nil {
			return storeErr(err, "Room not found.")
		}
		if room.Owner != requester {
			return ErrNotRoomOwner
		}
		if room.GameHasStarted {
			return ErrRoomStarted
		}
		seats := room.Seats()
		if len(seats) != room.MaxPlayers || len(seats) != s.rules.Seats() {
			return ErrSeatsMissing
		}
		board, err := tx.Board(room.BoardID)
		if err != nil {
			return storeErr(err, "Board not found.")
		}

		game := domain.Game{Name: room.Name, BoardID: board.ID, Robber: board.DesertPosition()}
		if err := tx.CreateGame(&game); err != nil {
			return err
		}
		turns := make([]int, len(seats))
		for i := range turns {
			turns[i] = i + 1
		}
		s.shuffle(len(turns), func(i, j int) { turns[i], turns[j] = turns[j], turns[i] })

		for i, username := range seats {
			pl := domain.Player{GameID: game.ID, Username: username, Turn: turns[i], Colour: s.rules.Colours[i]}
			if err := tx.CreatePlayer(&pl); err != nil {
				return err
			}
			b := domain.Building{GameID: game.ID, OwnerID: pl.ID, Kind: domain.Settlement, Position: s.rules.InitialSettlements[turns[i]-1]}
			if err := tx.CreateBuilding(&b); err != nil {
				return err
			}
		}
		players, err := tx.Players(game.ID)
		if err != nil {
			return err
		}
		turn := domain.CurrentTurn{GameID: game.ID, PlayerID: players[0].ID, Stage: domain.StageAwaitingRoll}
		if err := tx.PutCurrentTurn(turn); err != nil {
			return err
		}

		p := &play{tx: tx, game: game, board: board, players: players, turn: turn}
		order := make([]string, 0, len(players))
		for _, pl := range players {
			order = append(order, pl.Username)
			if err := s.score(p, pl.ID); err != nil {
				return err
			}
		}
		room.GameHasStarted = true
		room.GameID = game.ID
		if err := tx.UpdateRoom(room); err != nil {
			return err
		}
		p.emit(EventGameStarted, GameStartedPayload{RoomID: room.ID, GameID: game.ID, Players: order, FirstTurn: order[0]})
		if !s.rules.ManualRoll {
			if err := s.roll(p); err != nil {
				return err
			}
		}
		if err := p.save(); err != nil {
			return err
		}
		events = p.events
		return nil
	})
	if err != nil {
		return domain.Room{}, nil, err
	}
	return room, events, nil
}

// DeleteRoom removes a room that has not started. Only its owner may delete it.
func (s *Service) DeleteRoom(ctx context.Context, id int64, requester string) ([]Event, error) {
	if requester == "" {
		return nil, ErrUnauthenticated
	}
	var room domain.Room
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		var err error
		room, err = tx.Room(id)
		if err != nil {
			return storeErr(err, "Room not found.")
		}
		if room.Owner != requester {
			return ErrNotRoomOwnerDelete
		}
		if room.GameHasStarted {
			return ErrRoomStarted
		}
		return tx.DeleteRoom(id)
	})
	if err != nil {
		return nil, err
	}
	return []Event{{Kind: EventRoomDeleted, Payload: RoomDeletedPayload{RoomID: id}, Recipients: room.Seats()}}, nil
}

// ListBoards returns every board template.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	var boards []domain.Board
	err := s.store.View(ctx, func(tx ports.Tx) error {
		var err error
		boards, err = tx.Boards()
		return err
	})
	if boards == nil {
		boards = []domain.Board{}
	}
	return boards, err
}

// CreateBoard validates and stores a board template.
func (s *Service) CreateBoard(ctx context.Context, b domain.Board) (domain.Board, error) {
	if err := domain.ValidateBoard(b); err != nil {
		return domain.Board{}, Validation(fmt.Sprintf("Invalid board: %v", err), err)
	}
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		return tx.CreateBoard(&b)
	})
	if err != nil {
		return domain.Board{}, err
	}
	return b, nil
}

// GenerateBoard stores a randomly laid out board named name.
func (s *Service) GenerateBoard(ctx context.Context, name string) (domain.Board, error) {
	rng := rand.New(rand.NewSource(int64(s.intn(1 << 30))))
	return s.CreateBoard(ctx, domain.GenerateBoard(name, rng))
}

// SeedBoards stores every template whose name is not taken yet and reports how many were added.
func (s *Service) SeedBoards(ctx context.Context, boards []domain.Board) (int, error) {
	added := 0
	err := s.store.Update(ctx, func(tx ports.Tx) error {
		existing, err := tx.Boards()
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, b := range existing {
			taken[b.Name] = true
		}
		for _, b := range boards {
			if taken[b.Name] {
				continue
			}
			if err := domain.ValidateBoard(b); err != nil {
				return Validation(fmt.Sprintf("Invalid board %q: %v", b.Name, err), err)
			}
			b.ID = 0
			if err := tx.CreateBoard(&b); err != nil {
				return err
			}
			taken[b.Name] = true
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
