package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/partygame/internal/api/request"
	"github.com/mcoot/partygame/internal/api/response"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/catalog"
)

// CatalogHandler handles the shared challenge catalog
type CatalogHandler struct {
	catalog catalog.ServiceInterface
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService catalog.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// List handles GET /api/v1/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.catalog.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Catalog{Challenges: response.ChallengesFromModel(challenges)})
}

// Add handles POST /api/v1/catalog
func (h *CatalogHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.ChallengesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if len(req.Challenges) == 0 {
		WriteError(w, NewInvalidRequestError("at least one challenge is required"))
		return
	}

	added, err := h.catalog.Add(r.Context(), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Catalog{Challenges: response.ChallengesFromModel(added)})
}

// Remove handles DELETE /api/v1/catalog/{challenge_id}
func (h *CatalogHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := model.ChallengeID(mux.Vars(r)["challenge_id"])

	if err := h.catalog.Remove(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
