package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/partygame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeSessionNotFound          = "SESSION_NOT_FOUND"
	CodePlayerNotFound           = "PLAYER_NOT_FOUND"
	CodeTeamNotFound             = "TEAM_NOT_FOUND"
	CodeChallengeNotFound        = "CHALLENGE_NOT_FOUND"
	CodeInvalidTransition        = "INVALID_TRANSITION"
	CodeInsufficientParticipants = "INSUFFICIENT_PARTICIPANTS"
	CodeNoCurrentParticipant     = "NO_CURRENT_PARTICIPANT"
	CodeChallengeAlreadyUsed     = "CHALLENGE_ALREADY_USED"
	CodePoolExhausted            = "CHALLENGE_POOL_EXHAUSTED"
	CodeUnknownParticipant       = "UNKNOWN_PARTICIPANT"
	CodeNotParticipating         = "NOT_PARTICIPATING"
	CodeResultMismatch           = "RESULT_MISMATCH"
	CodeInvalidConfig            = "INVALID_CONFIG"
	CodeInvalidTopology          = "INVALID_TOPOLOGY"
	CodeInvalidSnapshot          = "INVALID_SNAPSHOT"
	CodeInternalError            = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var transition *model.InvalidTransitionError
	if errors.As(err, &transition) {
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, transition.Error()}}
	}

	// Map model errors. Wrapped errors carry useful detail, so the message is passed through.
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrTeamNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTeamNotFound, "Team not found"}}
	case errors.Is(err, model.ErrChallengeNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeChallengeNotFound, err.Error()}}
	case errors.Is(err, model.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, err.Error()}}
	case errors.Is(err, model.ErrInsufficientParticipants):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientParticipants, err.Error()}}
	case errors.Is(err, model.ErrNoCurrentParticipant):
		return &httpError{http.StatusConflict, APIError{CodeNoCurrentParticipant, err.Error()}}
	case errors.Is(err, model.ErrChallengeAlreadyUsed):
		return &httpError{http.StatusConflict, APIError{CodeChallengeAlreadyUsed, err.Error()}}
	case errors.Is(err, model.ErrChallengePoolExhausted):
		return &httpError{http.StatusConflict, APIError{CodePoolExhausted, "No eligible challenges left in the pool"}}
	case errors.Is(err, model.ErrUnknownParticipant):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownParticipant, err.Error()}}
	case errors.Is(err, model.ErrNotParticipating):
		return &httpError{http.StatusBadRequest, APIError{CodeNotParticipating, err.Error()}}
	case errors.Is(err, model.ErrResultMismatch):
		return &httpError{http.StatusConflict, APIError{CodeResultMismatch, err.Error()}}
	case errors.Is(err, model.ErrInvalidGameMode), errors.Is(err, model.ErrInvalidDuration):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidConfig, err.Error()}}
	case errors.Is(err, model.ErrInvalidTopology):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTopology, err.Error()}}
	case errors.Is(err, model.ErrInvalidSnapshot), errors.Is(err, model.ErrUnsupportedSnapshotVersion):
		return &httpError{http.StatusInternalServerError, APIError{CodeInvalidSnapshot, "Stored session could not be restored"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
