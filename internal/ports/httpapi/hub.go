package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"colonos/internal/ports"
)

const (
	clientQueue  = 32
	writeTimeout = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// Message is the wire form of a pushed game event.
type Message struct {
	ID      string `json:"id"`
	GameID  int64  `json:"game_id,omitempty"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

type client struct {
	id       string
	gameID   int64
	username string
	out      chan []byte
}

func (c *client) wants(n ports.Notification) bool {
	if n.GameID != 0 && n.GameID != c.gameID {
		return false
	}
	return len(n.Recipients) == 0 || slices.Contains(n.Recipients, c.username)
}

// Hub fans game events out to websocket clients. Lobby events (GameID 0) reach
// their recipients on any stream.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

var _ ports.Notifier = (*Hub)(nil)

// NewHub returns a Hub accepting connections from allowedOrigins, or from any origin when empty.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Publish queues every notification for the matching clients. Slow clients lose messages.
func (h *Hub) Publish(ctx context.Context, notes []ports.Notification) error {
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := json.Marshal(Message{ID: uuid.NewString(), GameID: n.GameID, Kind: n.Kind, Payload: n.Payload})
		if err != nil {
			return err
		}
		h.mu.RLock()
		for _, c := range h.clients {
			if !c.wants(n) {
				continue
			}
			select {
			case c.out <- b:
			default:
				h.logger.Warn("dropping event for slow client", "client", c.id, "username", c.username, "kind", n.Kind)
			}
		}
		h.mu.RUnlock()
	}
	return nil
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(gameID int64, username string) *client {
	c := &client{id: uuid.NewString(), gameID: gameID, username: username, out: make(chan []byte, clientQueue)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

// serve upgrades the request and streams events for gameID to username until
// the connection closes.
func (h *Hub) serve(rw http.ResponseWriter, r *http.Request, gameID int64, username string) {
	c := h.register(gameID, username)
	defer h.unregister(c)

	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	h.logger.Info("websocket connected", "client", c.id, "game_id", gameID, "username", username)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-c.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Reader loop; clients only send control frames.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.logger.Info("websocket disconnected", "client", c.id, "game_id", gameID, "username", username)
}
