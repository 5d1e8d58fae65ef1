package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidGameMode   = errors.New("invalid game mode")

	// Roster errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrUnknownParticipant = errors.New("participant is not a live player or team")
	ErrNotParticipating   = errors.New("participant is not playing the current challenge")

	// Assignment errors
	ErrInsufficientParticipants = errors.New("insufficient participants")
	ErrNoCurrentParticipant     = errors.New("no current participant")

	// Challenge errors
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeAlreadyUsed   = errors.New("challenge has already been used")
	ErrChallengePoolExhausted = errors.New("no eligible challenges left in the pool")
	ErrInvalidTopology        = errors.New("invalid challenge topology")
	ErrResultMismatch         = errors.New("result does not match the current challenge")

	// Snapshot errors
	ErrInvalidSnapshot            = errors.New("invalid snapshot")
	ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")
)

// InvalidTransitionError reports an operation invoked in a phase that does not permit it
type InvalidTransitionError struct {
	Op    string
	Phase Phase
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s not allowed in phase %s", e.Op, e.Phase)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewInvalidTransition creates an InvalidTransitionError
func NewInvalidTransition(op string, phase Phase) error {
	return &InvalidTransitionError{Op: op, Phase: phase}
}

// MigrationWarning is a non-fatal note produced while restoring a snapshot
type MigrationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w MigrationWarning) String() string {
	return w.Field + ": " + w.Message
}
