package handlers

import (
	"net/http"

	"github.com/dom/squad-dashboard/internal/service"
	"github.com/dom/squad-dashboard/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// Handle upgrades to a status stream. Browsers cannot set headers on the
// handshake, so the token travels as a query parameter. An optional gameId
// subscribes the connection immediately.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.authService.Subject(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var gameID uuid.UUID
	if raw := r.URL.Query().Get("gameId"); raw != "" {
		gameID, err = uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid game ID", http.StatusBadRequest)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register(client)
	if gameID != uuid.Nil {
		h.hub.Subscribe(client, gameID)
	}

	go client.WritePump()
	go client.ReadPump()
}
