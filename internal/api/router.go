package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/partygame/internal/api/apierr"
	"github.com/mcoot/partygame/internal/api/handler"
	"github.com/mcoot/partygame/internal/api/response"
	"github.com/mcoot/partygame/internal/metrics"
	"github.com/mcoot/partygame/internal/middleware"
	"github.com/mcoot/partygame/internal/services/catalog"
	"github.com/mcoot/partygame/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *session.Controller
	Catalog    catalog.ServiceInterface
	Metrics    *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.Controller)
	gameHandler := handler.NewGameHandler(cfg.Controller)
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Metrics(cfg.Metrics))
	api.Use(middleware.Recovery(cfg.Logger, writePanic))
	api.Use(middleware.Logging(cfg.Logger))

	// Session lifecycle
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)

	sessions := api.PathPrefix("/sessions/{session_id}").Subrouter()
	sessions.HandleFunc("", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("", sessionHandler.Delete).Methods(http.MethodDelete)
	sessions.HandleFunc("/config", sessionHandler.Configure).Methods(http.MethodPut)

	// Roster
	sessions.HandleFunc("/players", sessionHandler.AddPlayer).Methods(http.MethodPost)
	sessions.HandleFunc("/players/{player_id}", sessionHandler.RemovePlayer).Methods(http.MethodDelete)
	sessions.HandleFunc("/players/{player_id}/team", sessionHandler.SetTeam).Methods(http.MethodPut)
	sessions.HandleFunc("/players/{player_id}/team", sessionHandler.ClearTeam).Methods(http.MethodDelete)
	sessions.HandleFunc("/teams", sessionHandler.CreateTeam).Methods(http.MethodPost)
	sessions.HandleFunc("/teams/assign", sessionHandler.AssignTeams).Methods(http.MethodPost)

	// Challenge pool
	sessions.HandleFunc("/challenges", sessionHandler.AddChallenges).Methods(http.MethodPost)
	sessions.HandleFunc("/challenges/import", sessionHandler.ImportChallenges).Methods(http.MethodPost)

	// Game flow
	sessions.HandleFunc("/start", gameHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/select", gameHandler.Select).Methods(http.MethodPost)
	sessions.HandleFunc("/results", gameHandler.RecordResult).Methods(http.MethodPost)
	sessions.HandleFunc("/end", gameHandler.End).Methods(http.MethodPost)
	sessions.HandleFunc("/reset", gameHandler.Reset).Methods(http.MethodPost)
	sessions.HandleFunc("/participants", gameHandler.Participants).Methods(http.MethodGet)
	sessions.HandleFunc("/standings", gameHandler.Standings).Methods(http.MethodGet)

	// Shared challenge catalog
	api.HandleFunc("/catalog", catalogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/catalog", catalogHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/catalog/{challenge_id}", catalogHandler.Remove).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

// writePanic answers a recovered panic with an opaque internal error
func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
