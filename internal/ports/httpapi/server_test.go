package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/domain"
	"colonos/internal/ports/jwtauth"
	"colonos/internal/ports/memory"
)

type harness struct {
	t     *testing.T
	srv   *httptest.Server
	auth  *jwtauth.Authority
	svc   *app.Service
	hub   *Hub
	token map[string]string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	auth, err := jwtauth.New("test-secret", "colonos", time.Hour)
	if err != nil {
		t.Fatalf("jwtauth.New: %v", err)
	}
	rules := app.DefaultRules()
	rules.ManualRoll = true
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.NewService(memory.New(), rules, rand.New(rand.NewSource(5)))
	hub := NewHub(logger, nil)
	h := &harness{t: t, auth: auth, svc: svc, hub: hub, token: map[string]string{}}
	h.srv = httptest.NewServer(NewServer(svc, auth, hub, logger, opts...).Handler())
	t.Cleanup(h.srv.Close)
	for _, u := range []string{"ana", "bob", "cid", "dee", "eve"} {
		tok, err := auth.Issue(u)
		if err != nil {
			t.Fatalf("Issue(%s): %v", u, err)
		}
		h.token[u] = tok
	}
	return h
}

func (h *harness) do(method, path, user string, body any) (*http.Response, []byte) {
	h.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				h.t.Fatalf("marshal: %v", err)
			}
			raw = string(b)
		}
		rdr = strings.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rdr)
	if err != nil {
		h.t.Fatalf("NewRequest: %v", err)
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+h.token[user])
	}
	resp, err := h.srv.Client().Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (h *harness) expect(method, path, user string, body any, status int) []byte {
	h.t.Helper()
	resp, out := h.do(method, path, user, body)
	if resp.StatusCode != status {
		h.t.Fatalf("%s %s = %d %s, want %d", method, path, resp.StatusCode, out, status)
	}
	return out
}

func detailOf(t *testing.T, out []byte) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatalf("error body %s: %v", out, err)
	}
	return body.Detail
}

// startGame creates a board and a full room owned by ana and starts it.
func (h *harness) startGame() int64 {
	h.t.Helper()
	var board domain.Board
	_ = json.Unmarshal(h.expect("POST", "/api/v1/boards", "ana", map[string]string{"name": "random"}, http.StatusCreated), &board)
	var room domain.Room
	_ = json.Unmarshal(h.expect("POST", "/api/v1/rooms", "ana", map[string]any{"name": "Room1", "board_id": board.ID}, http.StatusCreated), &room)
	for _, u := range []string{"bob", "cid", "dee"} {
		h.expect("PUT", "/api/v1/rooms/"+itoa(room.ID), u, nil, http.StatusNoContent)
	}
	h.expect("PATCH", "/api/v1/rooms/"+itoa(room.ID), "ana", nil, http.StatusNoContent)
	_ = json.Unmarshal(h.expect("GET", "/api/v1/rooms/"+itoa(room.ID), "ana", nil, http.StatusOK), &room)
	if !room.GameHasStarted || room.GameID == 0 {
		h.t.Fatalf("room = %+v", room)
	}
	return room.GameID
}

func (h *harness) current(gameID int64) string {
	var info app.GameInfo
	_ = json.Unmarshal(h.expect("GET", "/api/v1/games/"+itoa(gameID), "ana", nil, http.StatusOK), &info)
	return info.CurrentTurn.User
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t)
	resp, out := h.do("GET", "/api/v1/rooms", "", nil)
	if resp.StatusCode != http.StatusUnauthorized || detailOf(t, out) != app.ErrUnauthenticated.Detail {
		t.Fatalf("anonymous = %d %s", resp.StatusCode, out)
	}

	req, _ := http.NewRequest("GET", h.srv.URL+"/api/v1/rooms", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := h.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", resp.StatusCode)
	}

	if out := h.expect("GET", "/api/v1/rooms", "ana", nil, http.StatusOK); strings.TrimSpace(string(out)) != "[]" {
		t.Fatalf("rooms = %s", out)
	}
}

func TestRoomLifecycle(t *testing.T) {
	h := newHarness(t)
	gameID := h.startGame()

	var games []app.GameSummary
	_ = json.Unmarshal(h.expect("GET", "/api/v1/games", "bob", nil, http.StatusOK), &games)
	if len(games) != 1 || games[0].ID != gameID || games[0].InTurn == "" {
		t.Fatalf("games = %+v", games)
	}
	var board app.BoardInfo
	_ = json.Unmarshal(h.expect("GET", "/api/v1/games/"+itoa(gameID)+"/board", "bob", nil, http.StatusOK), &board)
	if len(board.Hexes) != 19 {
		t.Fatalf("hexes = %d", len(board.Hexes))
	}
	var hand app.PlayerInfo
	_ = json.Unmarshal(h.expect("GET", "/api/v1/games/"+itoa(gameID)+"/player", "bob", nil, http.StatusOK), &hand)
	if hand.Resources == nil || hand.Cards == nil {
		t.Fatalf("player info = %s", h.expect("GET", "/api/v1/games/"+itoa(gameID)+"/player", "bob", nil, http.StatusOK))
	}
	out := h.expect("GET", "/api/v1/games/"+itoa(gameID)+"/player", "eve", nil, http.StatusNotFound)
	if detailOf(t, out) != app.ErrNotAPlayer.Detail {
		t.Fatalf("outsider detail = %s", out)
	}
}

func TestRoomErrors(t *testing.T) {
	h := newHarness(t)
	h.expect("POST", "/api/v1/rooms", "ana", `{"name":`, http.StatusBadRequest)
	h.expect("POST", "/api/v1/rooms", "ana", map[string]any{"name": "x", "board_id": 42}, http.StatusNotFound)
	h.expect("GET", "/api/v1/rooms/7", "ana", nil, http.StatusNotFound)
	h.expect("GET", "/api/v1/rooms/abc", "ana", nil, http.StatusNotFound)

	var board domain.Board
	_ = json.Unmarshal(h.expect("POST", "/api/v1/boards", "ana", map[string]string{"name": "b"}, http.StatusCreated), &board)
	var room domain.Room
	_ = json.Unmarshal(h.expect("POST", "/api/v1/rooms", "ana", map[string]any{"name": "Room1", "board_id": board.ID}, http.StatusCreated), &room)
	path := "/api/v1/rooms/" + itoa(room.ID)

	h.expect("PUT", path, "bob", nil, http.StatusNoContent)
	h.expect("PUT", path, "cid", nil, http.StatusNoContent)
	out := h.expect("PATCH", path, "ana", nil, http.StatusBadRequest)
	if detailOf(t, out) != app.ErrSeatsMissing.Detail {
		t.Fatalf("start detail = %s", out)
	}
	out = h.expect("PATCH", path, "bob", nil, http.StatusForbidden)
	if detailOf(t, out) != app.ErrNotRoomOwner.Detail {
		t.Fatalf("non-owner detail = %s", out)
	}
	h.expect("PUT", path, "bob", nil, http.StatusBadRequest)
	h.expect("DELETE", path, "bob", nil, http.StatusForbidden)
	h.expect("DELETE", path, "ana", nil, http.StatusNoContent)
	h.expect("GET", path, "ana", nil, http.StatusNotFound)
}

func TestCreateBoardValidation(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{"name": "tiny", "tiles": []domain.Tile{{Terrain: domain.Desert}}}
	h.expect("POST", "/api/v1/boards", "ana", body, http.StatusBadRequest)

	var boards []domain.Board
	_ = json.Unmarshal(h.expect("GET", "/api/v1/boards", "ana", nil, http.StatusOK), &boards)
	if len(boards) != 0 {
		t.Fatalf("boards = %+v", boards)
	}
}

func TestActions(t *testing.T) {
	h := newHarness(t)
	gameID := h.startGame()
	path := "/api/v1/games/" + itoa(gameID) + "/player/actions"
	me := h.current(gameID)
	other := "ana"
	if me == "ana" {
		other = "bob"
	}

	out := h.expect("GET", path, me, nil, http.StatusOK)
	if strings.TrimSpace(string(out)) != `[{"type":"roll_dice"}]` {
		t.Fatalf("legal = %s", out)
	}
	if out := h.expect("GET", path, other, nil, http.StatusOK); strings.TrimSpace(string(out)) != "[]" {
		t.Fatalf("legal for %s = %s", other, out)
	}

	tests := []struct {
		name   string
		user   string
		body   string
		status int
		detail string
	}{
		{"unknown type", me, `{"type":"fly","payload":null}`, http.StatusForbidden, app.ErrInvalidAction.Detail},
		{"malformed", me, `{"type":"built_road","payload":{"level1":"x"}}`, http.StatusBadRequest, ""},
		{"not in turn", other, `{"type":"end_turn","payload":null}`, http.StatusForbidden, app.ErrNotInTurn.Detail},
		{"roll first", me, `{"type":"end_turn","payload":null}`, http.StatusForbidden, app.ErrRollFirst.Detail},
		{"trade before roll", me, `{"type":"bank_trade","payload":{"give":"brick","receive":"wool"}}`, http.StatusForbidden, app.ErrRollFirst.Detail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.expect("POST", path, tt.user, tt.body, tt.status)
			if tt.detail != "" && detailOf(t, out) != tt.detail {
				t.Fatalf("detail = %s, want %q", out, tt.detail)
			}
		})
	}

	h.expect("POST", path, me, `{"type":"roll_dice","payload":null}`, http.StatusNoContent)
	h.expect("POST", "/api/v1/games/999/player/actions", me, `{"type":"end_turn"}`, http.StatusNotFound)
}

func TestActionErrorPrecedence(t *testing.T) {
	h := newHarness(t)
	gameID := h.startGame()
	path := "/api/v1/games/" + itoa(gameID) + "/player/actions"
	missing := "/api/v1/games/999/player/actions"
	me := h.current(gameID)
	other := "ana"
	if me == "ana" {
		other = "bob"
	}
	badRoad := `{"type":"built_road","payload":{"level1":"x"}}`

	tests := []struct {
		name   string
		path   string
		user   string
		body   string
		status int
		detail string
	}{
		{"unknown game before unknown type", missing, me, `{"type":"bogus"}`, http.StatusNotFound, ""},
		{"unknown game before bad payload", missing, me, badRoad, http.StatusNotFound, ""},
		{"turn before unknown type", path, other, `{"type":"bogus"}`, http.StatusForbidden, app.ErrNotInTurn.Detail},
		{"turn before bad payload", path, other, badRoad, http.StatusForbidden, app.ErrNotInTurn.Detail},
		{"unknown type before payload", path, me, `{"type":"bogus","payload":{"level1":"x"}}`, http.StatusForbidden, app.ErrInvalidAction.Detail},
		{"bad payload before stage", path, me, badRoad, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.expect("POST", tt.path, tt.user, tt.body, tt.status)
			if tt.detail != "" && detailOf(t, out) != tt.detail {
				t.Fatalf("detail = %s, want %q", out, tt.detail)
			}
		})
	}
}

func TestEventStream(t *testing.T) {
	h := newHarness(t)
	gameID := h.startGame()
	me := h.current(gameID)

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/api/v1/games/" + itoa(gameID) + "/ws?token=" + h.token["bob"]
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v (%v)", err, resp)
	}
	defer conn.Close()
	if h.hub.Clients() != 1 {
		t.Fatalf("clients = %d", h.hub.Clients())
	}

	h.expect("POST", "/api/v1/games/"+itoa(gameID)+"/player/actions", me, `{"type":"roll_dice"}`, http.StatusNoContent)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("message %s: %v", raw, err)
	}
	if msg.Kind != string(app.EventDiceRolled) || msg.GameID != gameID || msg.ID == "" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestEventStreamRejectsOutsiders(t *testing.T) {
	h := newHarness(t)
	gameID := h.startGame()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/api/v1/games/" + itoa(gameID) + "/ws?token=" + h.token["eve"]
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("outsider connected")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("resp = %v", resp)
	}
}

func TestHubRouting(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ana := hub.register(1, "ana")
	bob := hub.register(1, "bob")
	other := hub.register(2, "cid")

	notes := app.Notifications([]app.Event{
		{Kind: app.EventDiceRolled, GameID: 1},
		{Kind: app.EventCardBought, GameID: 1, Recipients: []string{"ana"}},
		{Kind: app.EventPlayerJoined, Recipients: []string{"cid"}},
	})
	if err := hub.Publish(context.Background(), notes); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	kinds := func(c *client) []string {
		var out []string
		for len(c.out) > 0 {
			var m Message
			_ = json.Unmarshal(<-c.out, &m)
			out = append(out, m.Kind)
		}
		return out
	}
	if got := kinds(ana); len(got) != 2 || got[1] != "card_bought" {
		t.Fatalf("ana got %v", got)
	}
	if got := kinds(bob); len(got) != 1 || got[0] != "dice_rolled" {
		t.Fatalf("bob got %v", got)
	}
	if got := kinds(other); len(got) != 1 || got[0] != "player_joined" {
		t.Fatalf("cid got %v", got)
	}
}

type fakeBots struct {
	calls []int64
}

func (f *fakeBots) Advance(_ context.Context, gameID int64) ([]app.Event, error) {
	f.calls = append(f.calls, gameID)
	return nil, nil
}

func TestBotsAdvanceAfterActions(t *testing.T) {
	bots := &fakeBots{}
	h := newHarness(t, WithBots(bots))
	gameID := h.startGame()
	me := h.current(gameID)
	before := len(bots.calls)
	h.expect("POST", "/api/v1/games/"+itoa(gameID)+"/player/actions", me, `{"type":"roll_dice"}`, http.StatusNoContent)
	if len(bots.calls) != before+1 {
		t.Fatalf("advance calls = %v, want one more than %d", bots.calls, before)
	}
	before = len(bots.calls)
	h.expect("GET", "/api/v1/games/"+itoa(gameID), "ana", nil, http.StatusOK)
	if len(bots.calls) != before+1 {
		t.Fatalf("game info should let bots play, advance calls = %v", bots.calls)
	}
	for _, id := range bots.calls {
		if id != gameID {
			t.Fatalf("advance calls = %v, want game %d", bots.calls, gameID)
		}
	}
}

// stalledBotGame starts a game of ana and three bots without letting the bots
// play, then passes ana's turn if needed so that a bot holds it.
func stalledBotGame(t *testing.T, h *harness) int64 {
	t.Helper()
	ctx := context.Background()
	board, err := h.svc.GenerateBoard(ctx, "random")
	if err != nil {
		t.Fatalf("GenerateBoard: %v", err)
	}
	room, err := h.svc.CreateRoom(ctx, "ana", "stalled", board.ID, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, _, err := bot.FillRoom(ctx, h.svc, room.ID); err != nil {
		t.Fatalf("FillRoom: %v", err)
	}
	room, _, err = h.svc.StartRoom(ctx, room.ID, "ana")
	if err != nil {
		t.Fatalf("StartRoom: %v", err)
	}
	info, err := h.svc.GameInfo(ctx, room.GameID)
	if err != nil {
		t.Fatalf("GameInfo: %v", err)
	}
	if info.CurrentTurn.User == "ana" {
		passTurn(t, h.svc, room.GameID, "ana")
	}
	return room.GameID
}

// passTurn rolls, moves the robber when a seven demands it and ends the turn.
func passTurn(t *testing.T, svc *app.Service, gameID int64, username string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Perform(ctx, gameID, username, app.Action{Type: app.ActionRollDice}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	legal, err := svc.LegalActions(ctx, gameID, username)
	if err != nil {
		t.Fatalf("LegalActions: %v", err)
	}
	for _, la := range legal {
		if la.Type != app.ActionMoveRobber {
			continue
		}
		targets := la.Payload.([]app.RobberTarget)
		a := app.Action{Type: app.ActionMoveRobber, Robber: app.RobberPayload{Position: targets[0].Position}}
		if _, err := svc.Perform(ctx, gameID, username, a); err != nil {
			t.Fatalf("move robber: %v", err)
		}
	}
	if _, err := svc.Perform(ctx, gameID, username, app.Action{Type: app.ActionEndTurn}); err != nil {
		t.Fatalf("end turn: %v", err)
	}
}

func withSingleStepBots(s *Server) { s.bots = bot.NewRunner(s.svc, 1) }

func TestStalledBotsResumeOnAction(t *testing.T) {
	h := newHarness(t, withSingleStepBots)
	gameID := stalledBotGame(t, h)
	path := "/api/v1/games/" + itoa(gameID) + "/player/actions"

	for round := 0; round < 4; round++ {
		var info app.GameInfo
		_ = json.Unmarshal(h.expect("GET", "/api/v1/games/"+itoa(gameID), "ana", nil, http.StatusOK), &info)
		if info.Winner != "" {
			return
		}
		if round == 0 && info.CurrentTurn.User != "ana" {
			t.Fatalf("round 0: %s holds the turn after game info", info.CurrentTurn.User)
		}
		h.expect("POST", path, "ana", `{"type":"roll_dice"}`, http.StatusNoContent)

		var legal []struct {
			Type    app.ActionType     `json:"type"`
			Payload []app.RobberTarget `json:"payload"`
		}
		_ = json.Unmarshal(h.expect("GET", path, "ana", nil, http.StatusOK), &legal)
		for _, la := range legal {
			if la.Type == app.ActionMoveRobber {
				body := map[string]any{"type": "move_robber", "payload": map[string]any{"position": la.Payload[0].Position}}
				h.expect("POST", path, "ana", body, http.StatusNoContent)
			}
		}
		h.expect("POST", path, "ana", `{"type":"end_turn"}`, http.StatusNoContent)
	}
}

func TestStalledBotsResumeBeforeAction(t *testing.T) {
	h := newHarness(t, withSingleStepBots)
	gameID := stalledBotGame(t, h)

	h.expect("POST", "/api/v1/games/"+itoa(gameID)+"/player/actions", "ana", `{"type":"roll_dice"}`, http.StatusNoContent)
	info, err := h.svc.GameInfo(context.Background(), gameID)
	if err != nil {
		t.Fatalf("GameInfo: %v", err)
	}
	if info.Winner == "" && info.CurrentTurn.User != "ana" {
		t.Fatalf("%s holds the turn after ana rolled", info.CurrentTurn.User)
	}
	if info.Winner == "" && info.CurrentTurn.Stage == domain.StageAwaitingRoll {
		t.Fatal("ana's roll was not applied")
	}
}

func TestFillBots(t *testing.T) {
	h := newHarness(t)
	h.expect("POST", "/api/v1/rooms/1/bots", "ana", nil, http.StatusNotFound)

	h = newHarness(t, WithBots(&fakeBots{}))
	var board domain.Board
	_ = json.Unmarshal(h.expect("POST", "/api/v1/boards", "ana", map[string]string{"name": "b"}, http.StatusCreated), &board)
	var room domain.Room
	_ = json.Unmarshal(h.expect("POST", "/api/v1/rooms", "ana", map[string]any{"name": "bots", "board_id": board.ID}, http.StatusCreated), &room)
	path := "/api/v1/rooms/" + itoa(room.ID) + "/bots"
	h.expect("POST", path, "bob", nil, http.StatusForbidden)
	_ = json.Unmarshal(h.expect("POST", path, "ana", nil, http.StatusOK), &room)
	if len(room.Seats()) != 4 {
		t.Fatalf("seats = %v", room.Seats())
	}
	h.expect("PATCH", "/api/v1/rooms/"+itoa(room.ID), "ana", nil, http.StatusNoContent)
}
