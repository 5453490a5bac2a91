package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/squad-dashboard/internal/service"
)

type MeritHandler struct {
	meritService *service.MeritService
}

func NewMeritHandler(meritService *service.MeritService) *MeritHandler {
	return &MeritHandler{meritService: meritService}
}

func (h *MeritHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	gameID, ok := uuidParam(r, "gameId")
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	summary, err := h.meritService.GetAchievements(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *MeritHandler) ListGameMerits(w http.ResponseWriter, r *http.Request) {
	gameID, ok := uuidParam(r, "gameId")
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	txs, err := h.meritService.ListGameMerits(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

func (h *MeritHandler) ListPlayerMerits(w http.ResponseWriter, r *http.Request) {
	playerID, ok := uuidParam(r, "playerId")
	if !ok {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	merits, err := h.meritService.ListPlayerMerits(r.Context(), playerID, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, merits)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
