package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/hackathon-teams/handlers"
	"github.com/Dosada05/hackathon-teams/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
	StoreTimeout   time.Duration
	Authenticator  *middleware.Authenticator
	Metrics        *middleware.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	healthHandler *handlers.HealthHandler,
	rosterHandler *handlers.RosterHandler,
	profileHandler *handlers.ProfileHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Instrument)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Healthz)
	if opts.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	router.Get("/docs/openapi.json", handlers.OpenAPI)
	router.Get("/docs/*", handlers.SwaggerUI())

	// WebSocket подписка без сессии: в поток попадают только события списка
	router.Get("/ws/hackathons/{hackathonID}", webSocketHandler.ServeWs)

	router.Get("/hackathons/current", rosterHandler.GetCurrentHackathon)

	// Запросы к хранилищу ограничены по времени
	router.Group(func(r chi.Router) {
		if opts.StoreTimeout > 0 {
			r.Use(middleware.Deadline(opts.StoreTimeout))
		}
		r.Use(opts.Authenticator.Session)

		// Публичные маршруты: сессия необязательна
		r.Get("/roster", rosterHandler.GetRoster)
		r.Get("/profiles/{userID}", profileHandler.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Post("/pool", rosterHandler.JoinPool)
			r.Post("/teams/{teamID}/join-requests", rosterHandler.RequestJoin)
			// "me" - текущий пользователь; статический путь имеет приоритет над {userID}
			r.Get("/profiles/me", profileHandler.GetMyProfile)
			r.Put("/profiles/me/photo", profileHandler.UploadPhoto)
		})
	})
}
