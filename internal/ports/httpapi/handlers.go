package httpapi

import (
	"errors"
	"io"
	"net/http"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/domain"
	"colonos/internal/protocol"
)

type createRoomRequest struct {
	Name       string `json:"name"`
	BoardID    int64  `json:"board_id"`
	MaxPlayers int    `json:"max_players"`
}

func (s *Server) createRoom(rw http.ResponseWriter, r *http.Request, username string) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(rw, r, err)
		return
	}
	room, err := s.svc.CreateRoom(r.Context(), username, req.Name, req.BoardID, req.MaxPlayers)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusCreated, room)
}

func (s *Server) listRooms(rw http.ResponseWriter, r *http.Request, _ string) {
	rooms, err := s.svc.ListRooms(r.Context())
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, rooms)
}

func (s *Server) getRoom(rw http.ResponseWriter, r *http.Request, _ string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	room, err := s.svc.GetRoom(r.Context(), id)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, room)
}

func (s *Server) joinRoom(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	_, events, err := s.svc.JoinRoom(r.Context(), id, username)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.publish(r.Context(), events)
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) startRoom(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	room, events, err := s.svc.StartRoom(r.Context(), id, username)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.publish(r.Context(), events)
	s.advanceBots(r.Context(), room.GameID)
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteRoom(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	events, err := s.svc.DeleteRoom(r.Context(), id, username)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.publish(r.Context(), events)
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) fillBots(rw http.ResponseWriter, r *http.Request, username string) {
	if s.bots == nil {
		s.writeError(rw, r, app.NotFound("Bots are disabled.", nil))
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	room, err := s.svc.GetRoom(r.Context(), id)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	if room.Owner != username {
		s.writeError(rw, r, app.ErrNotRoomOwner)
		return
	}
	room, events, err := bot.FillRoom(r.Context(), s.svc, id)
	s.publish(r.Context(), events)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, room)
}

func (s *Server) listBoards(rw http.ResponseWriter, r *http.Request, _ string) {
	boards, err := s.svc.ListBoards(r.Context())
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, boards)
}

type createBoardRequest struct {
	Name  string        `json:"name"`
	Tiles []domain.Tile `json:"tiles"`
}

// createBoard stores the posted layout, or a random one when no hexes are given.
func (s *Server) createBoard(rw http.ResponseWriter, r *http.Request, _ string) {
	var req createBoardRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(rw, r, err)
		return
	}
	var (
		board domain.Board
		err   error
	)
	if len(req.Tiles) == 0 {
		board, err = s.svc.GenerateBoard(r.Context(), req.Name)
	} else {
		board, err = s.svc.CreateBoard(r.Context(), domain.Board{Name: req.Name, Tiles: req.Tiles})
	}
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusCreated, board)
}

func (s *Server) listGames(rw http.ResponseWriter, r *http.Request, _ string) {
	games, err := s.svc.ListGames(r.Context())
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, games)
}

func (s *Server) gameInfo(rw http.ResponseWriter, r *http.Request, _ string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.advanceBots(r.Context(), id)
	info, err := s.svc.GameInfo(r.Context(), id)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, info)
}

func (s *Server) boardInfo(rw http.ResponseWriter, r *http.Request, _ string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	info, err := s.svc.BoardInfo(r.Context(), id)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, info)
}

func (s *Server) playerInfo(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	info, err := s.svc.PlayerInfo(r.Context(), id, username)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, info)
}

func (s *Server) legalActions(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.advanceBots(r.Context(), id)
	actions, err := s.svc.LegalActions(r.Context(), id, username)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	writeJSON(rw, http.StatusOK, actions)
}

func (s *Server) perform(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		s.writeError(rw, r, app.Validation("Malformed request body.", err))
		return
	}
	action, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	events, err := s.svc.Perform(r.Context(), id, username, action)
	if errors.Is(err, app.ErrNotInTurn) && s.bots != nil {
		s.advanceBots(r.Context(), id)
		events, err = s.svc.Perform(r.Context(), id, username, action)
	}
	if err != nil {
		if app.KindOf(err) != app.KindInternal {
			s.logger.Info("action rejected", "game", id, "type", action.Type, "detail", app.DetailOf(err))
		}
		s.writeError(rw, r, err)
		return
	}
	s.publish(r.Context(), events)
	s.advanceBots(r.Context(), id)
	rw.WriteHeader(http.StatusNoContent)
}

// stream opens the event websocket of a game for one of its players.
func (s *Server) stream(rw http.ResponseWriter, r *http.Request, username string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(rw, r, err)
		return
	}
	if _, err := s.svc.PlayerInfo(r.Context(), id, username); err != nil {
		s.writeError(rw, r, err)
		return
	}
	s.hub.serve(rw, r, id, username)
}
