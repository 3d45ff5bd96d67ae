package app

import (
	"colonos/internal/domain"
	"colonos/internal/ports"
)

// EventKind identifies emitted game events for dispatch.
type EventKind string

const (
	EventPlayerJoined      EventKind = "player_joined"
	EventRoomDeleted       EventKind = "room_deleted"
	EventGameStarted       EventKind = "game_started"
	EventDiceRolled        EventKind = "dice_rolled"
	EventResourcesProduced EventKind = "resources_produced"
	EventTurnEnded         EventKind = "turn_ended"
	EventRoadBuilt         EventKind = "road_built"
	EventSettlementBuilt   EventKind = "settlement_built"
	EventCityBuilt         EventKind = "city_built"
	EventBankTraded        EventKind = "bank_traded"
	EventCardBought        EventKind = "card_bought"
	EventKnightPlayed      EventKind = "knight_played"
	EventRobberMoved       EventKind = "robber_moved"
	EventResourceStolen    EventKind = "resource_stolen"
	EventGameWon           EventKind = "game_won"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	GameID     int64
	Payload    any
	Recipients []string // usernames; empty means every player
}

type PlayerJoinedPayload struct {
	RoomID   int64  `json:"room_id"`
	Username string `json:"username"`
	Seats    int    `json:"seats"`
}

type RoomDeletedPayload struct {
	RoomID int64 `json:"room_id"`
}

type GameStartedPayload struct {
	RoomID    int64    `json:"room_id"`
	GameID    int64    `json:"game_id"`
	Players   []string `json:"players"` // in turn order
	FirstTurn string   `json:"first_turn"`
}

type DiceRolledPayload struct {
	Username string       `json:"username"`
	Dice     [2]int       `json:"dices"`
	Stage    domain.Stage `json:"stage"`
}

type ResourcesProducedPayload struct {
	Gains map[string][]domain.Terrain `json:"gains"` // username -> cards
}

type TurnEndedPayload struct {
	Username string `json:"username"`
	Next     string `json:"next"`
}

type RoadBuiltPayload struct {
	Username string                `json:"username"`
	From     domain.VertexPosition `json:"from"`
	To       domain.VertexPosition `json:"to"`
}

type BuildingPayload struct {
	Username string                `json:"username"`
	Position domain.VertexPosition `json:"position"`
}

type BankTradedPayload struct {
	Username string         `json:"username"`
	Give     domain.Terrain `json:"give"`
	Given    int            `json:"given"`
	Receive  domain.Terrain `json:"receive"`
}

type CardBoughtPayload struct {
	Username string          `json:"username"`
	Kind     domain.CardKind `json:"card"`
}

type RobberMovedPayload struct {
	Username string              `json:"username"`
	Position domain.TilePosition `json:"position"`
	Victim   string              `json:"victim,omitempty"`
}

type ResourceStolenPayload struct {
	Thief   string         `json:"thief"`
	Victim  string         `json:"victim"`
	Terrain domain.Terrain `json:"resource"`
}

type GameWonPayload struct {
	Username      string `json:"username"`
	VictoryPoints int    `json:"victory_points"`
}

// Notifications converts events for a ports.Notifier.
func Notifications(events []Event) []ports.Notification {
	out := make([]ports.Notification, 0, len(events))
	for _, ev := range events {
		out = append(out, ports.Notification{
			GameID:     ev.GameID,
			Kind:       string(ev.Kind),
			Payload:    ev.Payload,
			Recipients: ev.Recipients,
		})
	}
	return out
}
