package ports

import "context"

// Notification is an event addressed to players of a game.
type Notification struct {
	GameID     int64
	Kind       string
	Payload    any
	Recipients []string // usernames; empty means every player of the game
}

// Notifier publishes game events to connected clients.
type Notifier interface {
	// Publish delivers notifications in order. Delivery is best-effort; the
	// error reports the first failure.
	Publish(ctx context.Context, notes []Notification) error
}
