package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/partygame/internal/api/request"
	"github.com/mcoot/partygame/internal/api/response"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/session"
)

// SessionHandler handles session lifecycle and roster endpoints
type SessionHandler struct {
	controller *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *session.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["session_id"])
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.CreateSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusCreated, state)
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.controller.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionListFromModel(ids))
}

// Get handles GET /api/v1/sessions/{session_id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.GetSession(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// Delete handles DELETE /api/v1/sessions/{session_id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteSession(r.Context(), sessionID(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Configure handles PUT /api/v1/sessions/{session_id}/config
func (h *SessionHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req request.ConfigureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.controller.Configure(r.Context(), sessionID(r),
		model.GameMode(req.GameMode), model.DurationMode(req.DurationMode), req.DurationValue)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// AddPlayer handles POST /api/v1/sessions/{session_id}/players
func (h *SessionHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Name == "" {
		WriteError(w, missingField("name"))
		return
	}

	state, player, err := h.controller.AddPlayer(r.Context(), sessionID(r), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerCreated{
		Player:  response.PlayerFromModel(*player),
		Session: response.SessionFromModel(state),
	})
}

// RemovePlayer handles DELETE /api/v1/sessions/{session_id}/players/{player_id}
func (h *SessionHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	state, err := h.controller.RemovePlayer(r.Context(), sessionID(r), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// SetTeam handles PUT /api/v1/sessions/{session_id}/players/{player_id}/team
func (h *SessionHandler) SetTeam(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	var req request.SetTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.TeamID == "" {
		WriteError(w, missingField("team_id"))
		return
	}

	state, err := h.controller.AddPlayerToTeam(r.Context(), sessionID(r), playerID, model.TeamID(req.TeamID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// ClearTeam handles DELETE /api/v1/sessions/{session_id}/players/{player_id}/team
func (h *SessionHandler) ClearTeam(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	state, err := h.controller.RemovePlayerFromTeam(r.Context(), sessionID(r), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// CreateTeam handles POST /api/v1/sessions/{session_id}/teams
func (h *SessionHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Name == "" {
		WriteError(w, missingField("name"))
		return
	}

	state, team, err := h.controller.CreateTeam(r.Context(), sessionID(r), req.Name, req.ColorTag)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TeamCreated{
		Team:    response.TeamFromModel(*team),
		Session: response.SessionFromModel(state),
	})
}

// AssignTeams handles POST /api/v1/sessions/{session_id}/teams/assign
func (h *SessionHandler) AssignTeams(w http.ResponseWriter, r *http.Request) {
	var req request.AssignTeamsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.controller.AssignTeamsEvenly(r.Context(), sessionID(r), req.Count)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// AddChallenges handles POST /api/v1/sessions/{session_id}/challenges
func (h *SessionHandler) AddChallenges(w http.ResponseWriter, r *http.Request) {
	var req request.ChallengesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if len(req.Challenges) == 0 {
		WriteError(w, NewInvalidRequestError("at least one challenge is required"))
		return
	}

	state, err := h.controller.AddChallenges(r.Context(), sessionID(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// ImportChallenges handles POST /api/v1/sessions/{session_id}/challenges/import
func (h *SessionHandler) ImportChallenges(w http.ResponseWriter, r *http.Request) {
	var req request.ImportChallengesRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	ids := make([]model.ChallengeID, len(req.ChallengeIDs))
	for i, id := range req.ChallengeIDs {
		ids[i] = model.ChallengeID(id)
	}

	state, err := h.controller.ImportChallenges(r.Context(), sessionID(r), ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}
