// Package httpapi serves the game over REST with a websocket event stream.
package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/ports"
)

// Authenticator resolves a bearer token to a username.
type Authenticator interface {
	Username(token string) (string, error)
}

// BotRunner plays bot turns until a human is in turn.
type BotRunner interface {
	Advance(ctx context.Context, gameID int64) ([]app.Event, error)
}

var errInvalidToken = &app.Error{Kind: app.KindUnauthorized, Detail: "Given token not valid for any token type"}

// Server exposes the game service under /api/v1.
type Server struct {
	svc      *app.Service
	auth     Authenticator
	hub      *Hub
	notifier ports.Notifier
	bots     BotRunner
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBots lets runner play bot turns whenever a human acts or reads the game.
func WithBots(runner BotRunner) Option {
	return func(s *Server) { s.bots = runner }
}

// NewServer wires the service, identity provider and event hub.
func NewServer(svc *app.Service, auth Authenticator, hub *Hub, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, auth: auth, hub: hub, notifier: hub, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed, logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/v1/rooms", s.authed(s.createRoom))
	mux.HandleFunc("GET /api/v1/rooms", s.authed(s.listRooms))
	mux.HandleFunc("GET /api/v1/rooms/{id}", s.authed(s.getRoom))
	mux.HandleFunc("PUT /api/v1/rooms/{id}", s.authed(s.joinRoom))
	mux.HandleFunc("PATCH /api/v1/rooms/{id}", s.authed(s.startRoom))
	mux.HandleFunc("DELETE /api/v1/rooms/{id}", s.authed(s.deleteRoom))
	mux.HandleFunc("POST /api/v1/rooms/{id}/bots", s.authed(s.fillBots))

	mux.HandleFunc("GET /api/v1/boards", s.authed(s.listBoards))
	mux.HandleFunc("POST /api/v1/boards", s.authed(s.createBoard))

	mux.HandleFunc("GET /api/v1/games", s.authed(s.listGames))
	mux.HandleFunc("GET /api/v1/games/{id}", s.authed(s.gameInfo))
	mux.HandleFunc("GET /api/v1/games/{id}/board", s.authed(s.boardInfo))
	mux.HandleFunc("GET /api/v1/games/{id}/player", s.authed(s.playerInfo))
	mux.HandleFunc("GET /api/v1/games/{id}/player/actions", s.authed(s.legalActions))
	mux.HandleFunc("POST /api/v1/games/{id}/player/actions", s.authed(s.perform))
	mux.HandleFunc("GET /api/v1/games/{id}/ws", s.authed(s.stream))

	return s.logged(mux)
}

type handler func(rw http.ResponseWriter, r *http.Request, username string)

// authed resolves the caller from the Authorization header, or from the token
// query parameter for websocket upgrades.
func (s *Server) authed(h handler) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok && websocketRequest(r) {
			token, ok = r.URL.Query().Get("token"), true
		}
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			s.writeError(rw, r, app.ErrUnauthenticated)
			return
		}
		username, err := s.auth.Username(token)
		if err != nil {
			s.writeError(rw, r, &app.Error{Kind: errInvalidToken.Kind, Detail: errInvalidToken.Detail, Cause: err})
			return
		}
		h(rw, r, username)
	}
}

func websocketRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot be hijacked")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

func statusOf(kind app.Kind) int {
	switch kind {
	case app.KindUnauthorized:
		return http.StatusUnauthorized
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindInvalidAction, app.KindRuleViolation:
		return http.StatusForbidden
	case app.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeError(rw http.ResponseWriter, r *http.Request, err error) {
	kind := app.KindOf(err)
	if kind == app.KindInternal {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(rw, statusOf(kind), errorBody{Detail: app.DetailOf(err)})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, app.NotFound("Not found.", err)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return app.Validation("Malformed request body.", err)
	}
	return nil
}

// publish pushes events to connected clients; delivery failures are logged only.
func (s *Server) publish(ctx context.Context, events []app.Event) {
	if len(events) == 0 || s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, app.Notifications(events)); err != nil {
		s.logger.Warn("publish events", "err", err)
	}
}

// advanceBots lets bots take their turns in gameID and publishes what they did.
// Bots keep playing when the request that woke them is cancelled.
func (s *Server) advanceBots(ctx context.Context, gameID int64) {
	if s.bots == nil || gameID == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	events, err := s.bots.Advance(ctx, gameID)
	s.publish(ctx, events)
	switch {
	case errors.Is(err, bot.ErrStepLimit):
		s.logger.Warn("bots hit the step limit", "game_id", gameID)
	case err != nil && app.KindOf(err) != app.KindNotFound:
		s.logger.Error("bots failed", "game_id", gameID, "err", err)
	}
}
