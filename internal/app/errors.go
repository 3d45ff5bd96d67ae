package app

import (
	"errors"
	"fmt"

	"colonos/internal/domain"
	"colonos/internal/ports"
)

// Kind classifies errors for transports.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindNotFound
	KindInvalidAction
	KindRuleViolation
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidAction:
		return "invalid_action"
	case KindRuleViolation:
		return "rule_violation"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a classified failure with a detail message safe to show players.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Cause)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Cause }

func ruleViolation(detail string) *Error { return &Error{Kind: KindRuleViolation, Detail: detail} }

func validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

// Validation builds a malformed-input error.
func Validation(detail string, cause error) *Error {
	return &Error{Kind: KindValidation, Detail: detail, Cause: cause}
}

// NotFound builds a missing-entity error.
func NotFound(detail string, cause error) *Error {
	return &Error{Kind: KindNotFound, Detail: detail, Cause: cause}
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthorized, Detail: "Authentication credentials were not provided."}
	ErrInvalidAction   = &Error{Kind: KindInvalidAction, Detail: "Please select a valid action"}
	ErrNotAPlayer      = &Error{Kind: KindNotFound, Detail: "You are not a player of this game"}

	ErrNotInTurn          = ruleViolation("Not in turn")
	ErrMoveThief          = ruleViolation("you have to move the thief")
	ErrRollFirst          = ruleViolation("You have to roll the dice")
	ErrAlreadyRolled      = ruleViolation("The dice have already been rolled")
	ErrNoHazard           = ruleViolation("The thief can only be moved after a seven")
	ErrGameOver           = ruleViolation("The game is over")
	ErrCannotTrade        = ruleViolation("It does not have the necessary resources")
	ErrUnknownResource    = ruleViolation("Non-existent resource")
	ErrSameResource       = ruleViolation("You must receive a different resource")
	ErrRoadReserved       = ruleViolation("invalid position, reserved")
	ErrNotEnoughResources = ruleViolation("Doesn't have enough resources")
	ErrInvalidPosition    = ruleViolation("invalid position")
	ErrTooClose           = ruleViolation("Too close to another building")
	ErrNoSettlement       = ruleViolation("You have no settlement in that position")
	ErrNoKnight           = ruleViolation("You have not knight cards")
	ErrNoHexe             = ruleViolation("There is no hexe in that position")
	ErrSameHexe           = ruleViolation("You must enter a new hexe position")
	ErrChooseYourself     = ruleViolation("You can't choose yourself")
	ErrTargetNoBuildings  = ruleViolation("You have to choose a player that has buildings")

	ErrNotRoomOwner       = ruleViolation("Only the owner can start the game")
	ErrNotRoomOwnerDelete = ruleViolation("Only the owner can delete the room")
	ErrRoomStarted        = validation("The game has already started")
	ErrRoomFull           = validation("The room is full")
	ErrAlreadyInRoom      = validation("You are already in the room")
	ErrSeatsMissing       = validation("Can't start the game without all players")
	ErrRoomName           = validation("Room name is required")
	ErrRoomSize           = validation("The room must seat exactly the game's players")
)

// KindOf classifies any error returned by the service.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, domain.ErrPositionNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// DetailOf returns the player-facing message of err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	if KindOf(err) == KindNotFound {
		return "Not found."
	}
	return "Internal error"
}
