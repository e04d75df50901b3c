package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/patified/patified-backend/internal/api/handlers"
	"github.com/patified/patified-backend/internal/api/middleware"
	"github.com/patified/patified-backend/internal/config"
	"github.com/patified/patified-backend/internal/service"
	"github.com/patified/patified-backend/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	lobbyHandler := handlers.NewLobbyHandler(services.Lobby)
	votingHandler := handlers.NewVotingHandler(services.Consensus)
	matchHandler := handlers.NewMatchHandler(services.Match)
	cheatHandler := handlers.NewCheatHandler(services.Cheat)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// Proof photos stored on local disk
	if cfg.PhotoDir != "" {
		fs := http.FileServer(http.Dir(cfg.PhotoDir))
		r.Handle("/photos/*", http.StripPrefix("/photos/", fs))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Put("/me", authHandler.UpdateProfile)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Lobby routes
			r.Route("/lobbies", func(r chi.Router) {
				r.Post("/", lobbyHandler.Create)
				r.Post("/join", lobbyHandler.Join)
				r.Get("/mine", lobbyHandler.ListMine)
				r.Get("/{idOrCode}", lobbyHandler.Get)
				r.Post("/{id}/ready", lobbyHandler.ToggleReady)
				r.Post("/{id}/start", lobbyHandler.Start)
				r.Post("/{id}/photo", lobbyHandler.UploadPhoto)
				r.Post("/{id}/leave", lobbyHandler.Leave)
				r.Post("/{id}/cancel", lobbyHandler.Cancel)
				r.Post("/{id}/restart", lobbyHandler.Restart)

				// Ranking consensus
				r.Post("/{id}/ranking", votingHandler.Propose)
				r.Post("/{id}/vote", votingHandler.Vote)
				r.Get("/{id}/voting-status", votingHandler.Status)
			})

			// Match history and leaderboard
			r.Route("/matches", func(r chi.Router) {
				r.Get("/", matchHandler.List)
				r.Get("/{id}", matchHandler.Get)
			})
			r.Get("/leaderboard", matchHandler.Leaderboard)

			// Cheat reporting (validator callback + admin log)
			r.Route("/cheat-reports", func(r chi.Router) {
				r.Post("/", cheatHandler.Record)
				r.Get("/", cheatHandler.Overview)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
