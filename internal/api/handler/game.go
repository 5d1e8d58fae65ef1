package handler

import (
	"net/http"

	"github.com/mcoot/partygame/internal/api/request"
	"github.com/mcoot/partygame/internal/api/response"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/session"
)

// GameHandler handles game flow and query endpoints
type GameHandler struct {
	controller *session.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller *session.Controller) *GameHandler {
	return &GameHandler{controller: controller}
}

// Start handles POST /api/v1/sessions/{session_id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.StartGame(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// Select handles POST /api/v1/sessions/{session_id}/select
func (h *GameHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req request.SelectChallengeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	var (
		state *model.SessionState
		err   error
	)
	if req.ChallengeID == "" {
		state, err = h.controller.SelectNextChallenge(r.Context(), sessionID(r))
	} else {
		state, err = h.controller.SelectChallenge(r.Context(), sessionID(r), model.ChallengeID(req.ChallengeID))
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// RecordResult handles POST /api/v1/sessions/{session_id}/results
func (h *GameHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req request.RecordResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.controller.RecordResult(r.Context(), sessionID(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// End handles POST /api/v1/sessions/{session_id}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.EndGame(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// Reset handles POST /api/v1/sessions/{session_id}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.controller.ResetGame(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.SessionState(w, http.StatusOK, state)
}

// Participants handles GET /api/v1/sessions/{session_id}/participants
func (h *GameHandler) Participants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.controller.CurrentParticipants(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Participants{
		Participants: response.ParticipantsFromModel(participants),
	})
}

// Standings handles GET /api/v1/sessions/{session_id}/standings
func (h *GameHandler) Standings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(r)

	standings, err := h.controller.Standings(ctx, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	winners, err := h.controller.Winners(ctx, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	finished, err := h.controller.IsFinished(ctx, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	remaining, timed, err := h.controller.TimeRemaining(ctx, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingsFromModel(standings, winners, finished, remaining, timed))
}
