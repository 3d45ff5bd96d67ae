package app

import (
	"context"
	"math/rand"
	"testing"

	"colonos/internal/domain"
	"colonos/internal/ports"
	"colonos/internal/ports/memory"
)

func newLobby(t *testing.T, rules Rules) (*Service, *memory.Store, domain.Board) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, rules, rand.New(rand.NewSource(7)))
	board, err := svc.CreateBoard(context.Background(), domain.GenerateBoard("classic", rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	return svc, store, board
}

func fullRoom(t *testing.T, svc *Service, boardID int64) domain.Room {
	t.Helper()
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, "ana", "Room1", boardID, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for _, u := range []string{"bob", "cid", "dee"} {
		if room, _, err = svc.JoinRoom(ctx, room.ID, u); err != nil {
			t.Fatalf("JoinRoom(%s): %v", u, err)
		}
	}
	return room
}

func TestStartRoomSpawnsGame(t *testing.T) {
	rules := DefaultRules()
	rules.ManualRoll = true
	svc, store, board := newLobby(t, rules)
	ctx := context.Background()
	room := fullRoom(t, svc, board.ID)

	room, evs, err := svc.StartRoom(ctx, room.ID, "ana")
	if err != nil {
		t.Fatalf("StartRoom: %v", err)
	}
	if !room.GameHasStarted || room.GameID == 0 {
		t.Fatalf("room after start = %+v", room)
	}
	if _, ok := findEvent(evs, EventGameStarted); !ok {
		t.Fatalf("events = %v, want game_started", eventKinds(evs))
	}

	_ = store.View(ctx, func(tx ports.Tx) error {
		game, err := tx.Game(room.GameID)
		if err != nil {
			t.Fatalf("Game: %v", err)
		}
		if game.Robber != board.DesertPosition() {
			t.Fatalf("robber = %v, want desert %v", game.Robber, board.DesertPosition())
		}
		players, _ := tx.Players(game.ID)
		if len(players) != 4 {
			t.Fatalf("players = %d, want 4", len(players))
		}
		colours := map[string]string{}
		for i, pl := range players {
			if pl.Turn != i+1 {
				t.Fatalf("turns = %+v, want 1..4", players)
			}
			if pl.VictoryPoints != 1 {
				t.Fatalf("%s victory points = %d, want 1", pl.Username, pl.VictoryPoints)
			}
			colours[pl.Username] = pl.Colour
		}
		if colours["ana"] != "blue" || colours["dee"] != "green" {
			t.Fatalf("colours = %v, want seat order", colours)
		}
		buildings, _ := tx.Buildings(ports.BuildingFilter{GameID: game.ID})
		if len(buildings) != 4 {
			t.Fatalf("buildings = %d, want 4 initial settlements", len(buildings))
		}
		turn, err := tx.CurrentTurn(game.ID)
		if err != nil {
			t.Fatalf("CurrentTurn: %v", err)
		}
		if turn.PlayerID != players[0].ID || turn.Stage != domain.StageAwaitingRoll {
			t.Fatalf("turn = %+v, want turn-1 player awaiting roll", turn)
		}
		return nil
	})

	_, _, err = svc.StartRoom(ctx, room.ID, "ana")
	expectErr(t, err, ErrRoomStarted)
}

func TestStartRoomAutoRolls(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	room := fullRoom(t, svc, board.ID)

	room, evs, err := svc.StartRoom(context.Background(), room.ID, "ana")
	if err != nil {
		t.Fatalf("StartRoom: %v", err)
	}
	if _, ok := findEvent(evs, EventDiceRolled); !ok {
		t.Fatalf("events = %v, want dice_rolled", eventKinds(evs))
	}
	info, err := svc.GameInfo(context.Background(), room.GameID)
	if err != nil {
		t.Fatalf("GameInfo: %v", err)
	}
	if info.CurrentTurn.Stage == domain.StageAwaitingRoll || info.CurrentTurn.Dice[0] == 0 {
		t.Fatalf("current turn = %+v, want a roll", info.CurrentTurn)
	}
}

func TestStartRoomWithoutAllPlayers(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	ctx := context.Background()
	room, _ := svc.CreateRoom(ctx, "ana", "Room1", board.ID, 4)
	svc.JoinRoom(ctx, room.ID, "bob")
	svc.JoinRoom(ctx, room.ID, "cid")

	_, _, err := svc.StartRoom(ctx, room.ID, "ana")
	expectErr(t, err, ErrSeatsMissing)
	if KindOf(err) != KindValidation {
		t.Fatalf("kind = %v, want validation", KindOf(err))
	}
	room, _ = svc.GetRoom(ctx, room.ID)
	if room.GameHasStarted {
		t.Fatalf("room started without all players")
	}
}

func TestThreeSeatRules(t *testing.T) {
	rules := DefaultRules()
	rules.MaxPlayers = 3
	svc, store, board := newLobby(t, rules)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "ana", "Room1", board.ID, 4)
	expectErr(t, err, ErrRoomSize)
	room, err := svc.CreateRoom(ctx, "ana", "Room1", board.ID, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.MaxPlayers != 3 {
		t.Fatalf("max players = %d, want 3", room.MaxPlayers)
	}
	for _, u := range []string{"bob", "cid"} {
		if _, _, err := svc.JoinRoom(ctx, room.ID, u); err != nil {
			t.Fatalf("JoinRoom(%s): %v", u, err)
		}
	}
	_, _, err = svc.JoinRoom(ctx, room.ID, "dee")
	expectErr(t, err, ErrRoomFull)

	room, _, err = svc.StartRoom(ctx, room.ID, "ana")
	if err != nil {
		t.Fatalf("StartRoom: %v", err)
	}
	_ = store.View(ctx, func(tx ports.Tx) error {
		players, _ := tx.Players(room.GameID)
		if len(players) != 3 {
			t.Fatalf("players = %d, want 3", len(players))
		}
		return nil
	})
}

func TestStartRoomOnlyOwner(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	room := fullRoom(t, svc, board.ID)
	_, _, err := svc.StartRoom(context.Background(), room.ID, "bob")
	expectErr(t, err, ErrNotRoomOwner)
}

func TestJoinRoomRejections(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	ctx := context.Background()
	room := fullRoom(t, svc, board.ID)

	_, _, err := svc.JoinRoom(ctx, room.ID, "eve")
	expectErr(t, err, ErrRoomFull)
	_, _, err = svc.JoinRoom(ctx, room.ID, "ana")
	expectErr(t, err, ErrAlreadyInRoom)
	_, _, err = svc.JoinRoom(ctx, 999, "eve")
	if KindOf(err) != KindNotFound {
		t.Fatalf("missing room err = %v, want not found", err)
	}

	if _, _, err := svc.StartRoom(ctx, room.ID, "ana"); err != nil {
		t.Fatalf("StartRoom: %v", err)
	}
	_, _, err = svc.JoinRoom(ctx, room.ID, "bob")
	expectErr(t, err, ErrRoomStarted)
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "ana", "  ", board.ID, 0)
	expectErr(t, err, ErrRoomName)
	_, err = svc.CreateRoom(ctx, "ana", "r", board.ID, 3)
	expectErr(t, err, ErrRoomSize)
	_, err = svc.CreateRoom(ctx, "ana", "r", 999, 0)
	if KindOf(err) != KindNotFound {
		t.Fatalf("missing board err = %v, want not found", err)
	}
	_, err = svc.CreateRoom(ctx, "", "r", board.ID, 0)
	expectErr(t, err, ErrUnauthenticated)

	rooms, err := svc.ListRooms(ctx)
	if err != nil || len(rooms) != 0 {
		t.Fatalf("rooms = %v, %v, want none", rooms, err)
	}
}

func TestDeleteRoom(t *testing.T) {
	svc, _, board := newLobby(t, DefaultRules())
	ctx := context.Background()
	room, _ := svc.CreateRoom(ctx, "ana", "Room1", board.ID, 0)

	_, err := svc.DeleteRoom(ctx, room.ID, "bob")
	expectErr(t, err, ErrNotRoomOwnerDelete)

	evs, err := svc.DeleteRoom(ctx, room.ID, "ana")
	if err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventRoomDeleted {
		t.Fatalf("events = %v", eventKinds(evs))
	}
	if _, err := svc.GetRoom(ctx, room.ID); KindOf(err) != KindNotFound {
		t.Fatalf("GetRoom after delete err = %v", err)
	}
}

func TestBoards(t *testing.T) {
	svc, _, _ := newLobby(t, DefaultRules())
	ctx := context.Background()

	if _, err := svc.CreateBoard(ctx, domain.Board{Name: "broken"}); KindOf(err) != KindValidation {
		t.Fatalf("invalid board err = %v, want validation", err)
	}
	generated, err := svc.GenerateBoard(ctx, "random")
	if err != nil {
		t.Fatalf("GenerateBoard: %v", err)
	}
	if len(generated.Tiles) != 19 {
		t.Fatalf("generated tiles = %d", len(generated.Tiles))
	}
	boards, err := svc.ListBoards(ctx)
	if err != nil || len(boards) != 2 {
		t.Fatalf("boards = %d, %v, want 2", len(boards), err)
	}
}

func TestSeedBoards(t *testing.T) {
	svc, _, _ := newLobby(t, DefaultRules())
	ctx := context.Background()
	grain := testBoard()
	grain.Name = "grain"
	dup := domain.GenerateBoard("classic", rand.New(rand.NewSource(2)))

	added, err := svc.SeedBoards(ctx, []domain.Board{dup, grain})
	if err != nil {
		t.Fatalf("SeedBoards: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1 (classic already exists)", added)
	}
	if added, _ := svc.SeedBoards(ctx, []domain.Board{grain}); added != 0 {
		t.Fatalf("reseeding added %d", added)
	}
	boards, _ := svc.ListBoards(ctx)
	if len(boards) != 2 {
		t.Fatalf("boards = %d", len(boards))
	}

	bad := domain.Board{Name: "broken"}
	if _, err := svc.SeedBoards(ctx, []domain.Board{bad}); KindOf(err) != KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}
