package api

import (
	"net/http"

	"github.com/dom/squad-dashboard/internal/api/handlers"
	"github.com/dom/squad-dashboard/internal/api/middleware"
	"github.com/dom/squad-dashboard/internal/config"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/dom/squad-dashboard/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsHandler(cfg).Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	finalizationHandler := handlers.NewFinalizationHandler(services.Finalization)
	meritHandler := handlers.NewMeritHandler(services.Merit)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/games/{gameId}", func(r chi.Router) {
				r.Post("/finalize", finalizationHandler.Finalize)
				r.Get("/finalization", finalizationHandler.Status)
				r.Get("/achievements", meritHandler.GetAchievements)
				r.Get("/merits", meritHandler.ListGameMerits)
				r.Post("/merits/reconcile", finalizationHandler.ReconcileMerits)
			})

			r.Get("/players/{playerId}/merits", meritHandler.ListPlayerMerits)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}

func corsHandler(cfg *config.Config) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
