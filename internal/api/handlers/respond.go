package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrPlayerNotFound):
		http.Error(w, "Player not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotFinalized):
		http.Error(w, "Game has not been finalized", http.StatusNotFound)
	case errors.Is(err, domain.ErrGameNotCompleted):
		http.Error(w, "Game is not completed", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrFinalizationInFlight):
		http.Error(w, "Finalization already in progress", http.StatusConflict)
	case errors.Is(err, domain.ErrConfigurationMissing):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("achievement catalog unavailable")
		http.Error(w, "Achievement catalog is not configured", http.StatusServiceUnavailable)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
