package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/partygame/internal/model"
)

// PhaseHeader carries the session phase on every session-shaped response
const PhaseHeader = "X-Session-Phase"

// Health is the body of the health endpoint
type Health struct {
	Status string `json:"status"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// SessionState writes the projection of a session along with its phase header
func SessionState(w http.ResponseWriter, status int, state *model.SessionState) {
	w.Header().Set(PhaseHeader, string(state.Phase))
	JSON(w, status, SessionFromModel(state))
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
