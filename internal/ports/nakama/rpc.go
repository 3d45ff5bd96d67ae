package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/domain"
	"colonos/internal/ports"
	"colonos/internal/protocol"
)

// BotRunner plays bot turns until a human is in turn.
type BotRunner interface {
	Advance(ctx context.Context, gameID int64) ([]app.Event, error)
}

// Module holds the dependencies shared by the RPC handlers.
type Module struct {
	svc      *app.Service
	notifier ports.Notifier
	bots     BotRunner
}

// NewModule wires the RPC handlers. notifier and bots may be nil.
func NewModule(svc *app.Service, notifier ports.Notifier, bots BotRunner) *Module {
	return &Module{svc: svc, notifier: notifier, bots: bots}
}

type rpcFunc func(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error)

type nakamaRPC func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// RegisterRPCs registers every RPC of the module with the initializer.
func (m *Module) RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := []struct {
		id string
		fn rpcFunc
	}{
		{RpcCreateRoom, m.createRoom},
		{RpcListRooms, m.listRooms},
		{RpcJoinRoom, m.joinRoom},
		{RpcStartRoom, m.startRoom},
		{RpcDeleteRoom, m.deleteRoom},
		{RpcFillBots, m.fillBots},
		{RpcListBoards, m.listBoards},
		{RpcCreateBoard, m.createBoard},
		{RpcListGames, m.listGames},
		{RpcGameInfo, m.gameInfo},
		{RpcBoardInfo, m.boardInfo},
		{RpcPlayerInfo, m.playerInfo},
		{RpcLegalActions, m.legalActions},
		{RpcPlayerAction, m.playerAction},
	}
	for _, r := range rpcs {
		if err := initializer.RegisterRpc(r.id, m.rpc(r.id, r.fn)); err != nil {
			return err
		}
	}
	return nil
}

// rpc resolves the caller, runs fn and encodes its result as JSON. A nil
// result is returned as an empty response.
func (m *Module) rpc(id string, fn rpcFunc) nakamaRPC {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
		if username == "" {
			return "", errNoSession
		}
		out, err := fn(ctx, logger, username, payload)
		if err != nil {
			if app.KindOf(err) == app.KindInternal {
				logger.Error("%s [User:%s]: %v", id, username, err)
			} else {
				logger.Debug("%s [User:%s]: rejected: %v", id, username, err)
			}
			return "", toRuntimeError(err)
		}
		if out == nil {
			return "", nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			logger.Error("%s [User:%s]: Failed to encode response: %v", id, username, err)
			return "", toRuntimeError(err)
		}
		return string(data), nil
	}
}

func decodePayload(payload string, v interface{}) error {
	if payload == "" {
		return app.Validation("Request payload is required.", nil)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return app.Validation("Malformed request payload.", err)
	}
	return nil
}

type roomRequest struct {
	RoomID int64 `json:"room_id"`
}

type gameRequest struct {
	GameID int64 `json:"game_id"`
}

func decodeRoomID(payload string) (int64, error) {
	var req roomRequest
	if err := decodePayload(payload, &req); err != nil {
		return 0, err
	}
	if req.RoomID <= 0 {
		return 0, app.NotFound("Not found.", nil)
	}
	return req.RoomID, nil
}

func decodeGameID(payload string) (int64, error) {
	var req gameRequest
	if err := decodePayload(payload, &req); err != nil {
		return 0, err
	}
	if req.GameID <= 0 {
		return 0, app.NotFound("Not found.", nil)
	}
	return req.GameID, nil
}

type createRoomRequest struct {
	Name       string `json:"name"`
	BoardID    int64  `json:"board_id"`
	MaxPlayers int    `json:"max_players"`
}

func (m *Module) createRoom(ctx context.Context, _ runtime.Logger, username, payload string) (interface{}, error) {
	var req createRoomRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	return m.svc.CreateRoom(ctx, username, req.Name, req.BoardID, req.MaxPlayers)
}

func (m *Module) listRooms(ctx context.Context, _ runtime.Logger, _, _ string) (interface{}, error) {
	return m.svc.ListRooms(ctx)
}

func (m *Module) joinRoom(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	id, err := decodeRoomID(payload)
	if err != nil {
		return nil, err
	}
	room, events, err := m.svc.JoinRoom(ctx, id, username)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, logger, events)
	return room, nil
}

func (m *Module) startRoom(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	id, err := decodeRoomID(payload)
	if err != nil {
		return nil, err
	}
	room, events, err := m.svc.StartRoom(ctx, id, username)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, logger, events)
	m.advanceBots(ctx, logger, room.GameID)
	return room, nil
}

func (m *Module) deleteRoom(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	id, err := decodeRoomID(payload)
	if err != nil {
		return nil, err
	}
	events, err := m.svc.DeleteRoom(ctx, id, username)
	if err != nil {
		return nil, err
	}
	m.publish(ctx, logger, events)
	return nil, nil
}

// fillBots seats bots in the free seats of a room the caller owns.
func (m *Module) fillBots(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	if m.bots == nil {
		return nil, app.NotFound("Bots are disabled.", nil)
	}
	id, err := decodeRoomID(payload)
	if err != nil {
		return nil, err
	}
	room, err := m.svc.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.Owner != username {
		return nil, app.ErrNotRoomOwner
	}
	room, events, err := bot.FillRoom(ctx, m.svc, id)
	m.publish(ctx, logger, events)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (m *Module) listBoards(ctx context.Context, _ runtime.Logger, _, _ string) (interface{}, error) {
	return m.svc.ListBoards(ctx)
}

type createBoardRequest struct {
	Name  string        `json:"name"`
	Tiles []domain.Tile `json:"tiles"`
}

// createBoard stores the given layout, or a random one when no tiles are given.
func (m *Module) createBoard(ctx context.Context, _ runtime.Logger, _, payload string) (interface{}, error) {
	var req createBoardRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	if len(req.Tiles) == 0 {
		return m.svc.GenerateBoard(ctx, req.Name)
	}
	return m.svc.CreateBoard(ctx, domain.Board{Name: req.Name, Tiles: req.Tiles})
}

func (m *Module) listGames(ctx context.Context, _ runtime.Logger, _, _ string) (interface{}, error) {
	return m.svc.ListGames(ctx)
}

func (m *Module) gameInfo(ctx context.Context, logger runtime.Logger, _, payload string) (interface{}, error) {
	id, err := decodeGameID(payload)
	if err != nil {
		return nil, err
	}
	m.advanceBots(ctx, logger, id)
	return m.svc.GameInfo(ctx, id)
}

func (m *Module) boardInfo(ctx context.Context, _ runtime.Logger, _, payload string) (interface{}, error) {
	id, err := decodeGameID(payload)
	if err != nil {
		return nil, err
	}
	return m.svc.BoardInfo(ctx, id)
}

func (m *Module) playerInfo(ctx context.Context, _ runtime.Logger, username, payload string) (interface{}, error) {
	id, err := decodeGameID(payload)
	if err != nil {
		return nil, err
	}
	return m.svc.PlayerInfo(ctx, id, username)
}

func (m *Module) legalActions(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	id, err := decodeGameID(payload)
	if err != nil {
		return nil, err
	}
	m.advanceBots(ctx, logger, id)
	return m.svc.LegalActions(ctx, id, username)
}

type actionRequest struct {
	GameID int64           `json:"game_id"`
	Action json.RawMessage `json:"action"`
}

// playerAction applies one action of the caller, then lets bots take their turns.
func (m *Module) playerAction(ctx context.Context, logger runtime.Logger, username, payload string) (interface{}, error) {
	var req actionRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	if req.GameID <= 0 {
		return nil, app.NotFound("Not found.", nil)
	}
	action, err := protocol.DecodeEnvelope(req.Action)
	if err != nil {
		return nil, err
	}
	events, err := m.svc.Perform(ctx, req.GameID, username, action)
	if errors.Is(err, app.ErrNotInTurn) && m.bots != nil {
		m.advanceBots(ctx, logger, req.GameID)
		events, err = m.svc.Perform(ctx, req.GameID, username, action)
	}
	if err != nil {
		return nil, err
	}
	m.publish(ctx, logger, events)
	m.advanceBots(ctx, logger, req.GameID)
	return nil, nil
}

func (m *Module) publish(ctx context.Context, logger runtime.Logger, events []app.Event) {
	if len(events) == 0 || m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, app.Notifications(events)); err != nil {
		logger.Warn("publish: Failed to notify players: %v", err)
	}
}

func (m *Module) advanceBots(ctx context.Context, logger runtime.Logger, gameID int64) {
	if m.bots == nil || gameID == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	events, err := m.bots.Advance(ctx, gameID)
	m.publish(ctx, logger, events)
	switch {
	case errors.Is(err, bot.ErrStepLimit):
		logger.Warn("advanceBots: Bots hit the step limit in game %d", gameID)
	case err != nil && app.KindOf(err) != app.KindNotFound:
		logger.Error("advanceBots: Bots failed in game %d: %v", gameID, err)
	}
}
