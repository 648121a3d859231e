package game

import (
	"errors"
	"fmt"
)

// Setup errors.
var (
	ErrAlreadyInitialized = errors.New("room already initialized")
	ErrNotInitialized     = errors.New("room not initialized")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidConfig      = errors.New("invalid room config")
)

// Join errors.
var (
	ErrInvalidNick = errors.New("missing nick")
	ErrNickTaken   = errors.New("nick already taken in this room")
	ErrRoomFull    = errors.New("room is full")

	ErrUnknownPlayer = errors.New("unknown player")
)

// Hand lifecycle errors.
var (
	ErrHandInProgress = errors.New("hand already running")
	ErrNotHost        = errors.New("host only")
)

// ErrActionRejected matches every *ActionError with errors.Is.
var ErrActionRejected = errors.New("action rejected")

// ActionError is returned when a player action is illegal. The table is left
// exactly as it was.
type ActionError struct {
	Reason string
}

func (e *ActionError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrActionRejected) true for action errors.
func (e *ActionError) Is(target error) bool {
	return target == ErrActionRejected
}

func reject(format string, args ...any) error {
	return &ActionError{Reason: fmt.Sprintf(format, args...)}
}
