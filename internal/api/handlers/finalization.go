package handlers

import (
	"net/http"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/rs/zerolog"
)

type FinalizationHandler struct {
	finalizationService *service.FinalizationService
}

func NewFinalizationHandler(finalizationService *service.FinalizationService) *FinalizationHandler {
	return &FinalizationHandler{finalizationService: finalizationService}
}

type FinalizationResponse struct {
	GameID           string                          `json:"gameId"`
	State            domain.FinalizationState        `json:"state"`
	Message          string                          `json:"message"`
	Skipped          bool                            `json:"skipped"`
	TransactionCount int                             `json:"transactionCount"`
	Warnings         []string                        `json:"warnings,omitempty"`
	Summary          *domain.GameAchievementsSummary `json:"summary,omitempty"`
}

func newFinalizationResponse(result *service.FinalizationResult) FinalizationResponse {
	resp := FinalizationResponse{
		GameID:           result.GameID.String(),
		State:            result.State,
		Message:          result.Message(),
		Skipped:          result.Skipped,
		TransactionCount: result.TransactionCount,
		Summary:          result.Summary,
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}

// Finalize runs finalization for a game. Write failures answer 502 with the
// same body shape so the dashboard can show what was persisted.
func (h *FinalizationHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	gameID, ok := uuidParam(r, "gameId")
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	result, err := h.finalizationService.FinalizeGame(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	switch result.State {
	case domain.FinalizationSummaryWriteFailed, domain.FinalizationTransactionWriteFailed:
		zerolog.Ctx(r.Context()).Error().Err(result.Err).Str("game_id", gameID.String()).Str("state", string(result.State)).Msg("finalization write failed")
		status = http.StatusBadGateway
	}

	writeJSON(w, status, newFinalizationResponse(result))
}

func (h *FinalizationHandler) Status(w http.ResponseWriter, r *http.Request) {
	gameID, ok := uuidParam(r, "gameId")
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	status, err := h.finalizationService.Status(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *FinalizationHandler) ReconcileMerits(w http.ResponseWriter, r *http.Request) {
	gameID, ok := uuidParam(r, "gameId")
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	result, err := h.finalizationService.ReconcileMerits(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
