package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/ports"
)

// PlayerLister resolves the usernames seated in a game.
type PlayerLister func(ctx context.Context, gameID int64) ([]string, error)

// NakamaNotifier delivers game events as Nakama in-app notifications.
type NakamaNotifier struct {
	nk      runtime.NakamaModule
	players PlayerLister
	isBot   func(username string) bool
}

// NewNakamaNotifier creates a notifier. players expands broadcast
// notifications; usernames for which isBot is true are never notified.
func NewNakamaNotifier(nk runtime.NakamaModule, players PlayerLister, isBot func(string) bool) *NakamaNotifier {
	if isBot == nil {
		isBot = func(string) bool { return false }
	}
	return &NakamaNotifier{nk: nk, players: players, isBot: isBot}
}

// Publish sends each notification to its recipients, continuing past failures.
func (n *NakamaNotifier) Publish(ctx context.Context, notes []ports.Notification) error {
	var firstErr error
	for _, note := range notes {
		if err := n.publish(ctx, note); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *NakamaNotifier) publish(ctx context.Context, note ports.Notification) error {
	recipients, err := n.recipients(ctx, note)
	if err != nil || len(recipients) == 0 {
		return err
	}

	users, err := n.nk.UsersGetUsername(ctx, recipients)
	if err != nil {
		return fmt.Errorf("resolve recipients of %s: %w", note.Kind, err)
	}
	content, err := notificationContent(note)
	if err != nil {
		return err
	}

	sends := make([]*runtime.NotificationSend, 0, len(users))
	for _, u := range users {
		sends = append(sends, &runtime.NotificationSend{
			UserID:  u.Id,
			Subject: note.Kind,
			Content: content,
			Code:    notificationCode(note.Kind),
		})
	}
	if len(sends) == 0 {
		return nil
	}
	if err := n.nk.NotificationsSend(ctx, sends); err != nil {
		return fmt.Errorf("send %s: %w", note.Kind, err)
	}
	return nil
}

func (n *NakamaNotifier) recipients(ctx context.Context, note ports.Notification) ([]string, error) {
	names := note.Recipients
	if len(names) == 0 && note.GameID != 0 && n.players != nil {
		var err error
		names, err = n.players(ctx, note.GameID)
		if err != nil {
			return nil, fmt.Errorf("players of game %d: %w", note.GameID, err)
		}
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !n.isBot(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// notificationContent flattens the payload into the generic map Nakama stores.
func notificationContent(note ports.Notification) (map[string]interface{}, error) {
	raw, err := json.Marshal(note.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", note.Kind, err)
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", note.Kind, err)
	}
	return map[string]interface{}{
		"game_id": note.GameID,
		"kind":    note.Kind,
		"payload": payload,
	}, nil
}

var _ ports.Notifier = (*NakamaNotifier)(nil)
