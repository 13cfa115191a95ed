package routes

import (
	"net/http"

	"github.com/PrimalTeam/sportsy-back/handlers"
	"github.com/PrimalTeam/sportsy-back/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Ladder     *handlers.LadderHandler
	Game       *handlers.GameHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Mutating ladder and game routes are limited to this many requests per second.
	MutationRate  float64
	MutationBurst int
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(opts.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	protected := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(middleware.RoleAdmin, middleware.RoleOrganizer))
		if opts.MutationRate > 0 {
			r.Use(middleware.RateLimit(opts.MutationRate, opts.MutationBurst))
		}
	}

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)

		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/", h.Tournament.CreateHandler)
			r.Post("/{tournamentID}/teams", h.Tournament.AddTeamHandler)
		})
	})

	router.Route("/ladder/{tournamentID}", func(r chi.Router) {
		r.Get("/", h.Ladder.GetHandler)

		r.Group(func(r chi.Router) {
			protected(r)
			r.Post("/generate", h.Ladder.GenerateHandler)
			r.Post("/update", h.Ladder.UpdateHandler)
			r.Delete("/", h.Ladder.DeleteHandler)
		})
	})

	router.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", h.Game.GetHandler)

		r.Group(func(r chi.Router) {
			protected(r)
			r.Patch("/", h.Game.UpdateStatusHandler)
			r.Put("/teams/{teamID}/score", h.Game.UpdateScoreHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
