package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/middleware"
	"github.com/Dosada05/swiss-tournament/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAdmin := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(models.RoleAdmin))
	}

	// Websocket живет дольше любого таймаута запроса.
	router.Get("/ws", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.Get("/healthz", h.Health.Healthz)
		r.Post("/auth/token", h.Auth.Login)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListHandler)
			r.Get("/count", h.Player.CountHandler)
			r.Get("/{playerID}", h.Player.GetByIDHandler)

			r.Group(func(r chi.Router) {
				requireAdmin(r)
				r.Post("/", h.Player.RegisterHandler)
				r.Delete("/", h.Player.DeleteAllHandler)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Tournament.ListMatchesHandler)

			r.Group(func(r chi.Router) {
				requireAdmin(r)
				r.Post("/", h.Tournament.ReportMatchHandler)
				r.Delete("/", h.Tournament.DeleteMatchesHandler)
			})
		})

		r.Get("/standings", h.Tournament.StandingsHandler)
		r.Get("/pairings", h.Tournament.PairingsHandler)

		r.Group(func(r chi.Router) {
			requireAdmin(r)
			r.Post("/exports/standings", h.Tournament.ExportStandingsHandler)
		})
	})
}
