package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/api/middleware"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/handlers"
)

// Deps carries everything the router needs wired up.
type Deps struct {
	Logger         zerolog.Logger
	Handler        *handlers.Handler
	Auth           *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	GoogleClientID string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests.
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024))
	r.Use(middleware.ValidateContentType)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := d.Handler

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/healthz", h.Health)
	r.Get("/api/config", h.ClientConfig(d.GoogleClientID))
	r.Post("/api/auth/google", h.GoogleLogin)
	r.Post("/api/auth/simple", h.SimpleLogin)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth)

		r.Get("/api/users", h.ListUsers)
		r.Get("/api/messages", h.GetMessages)
		r.Get("/api/stats", h.GetStats)
		r.Get("/api/download", h.DownloadTranscript)
		r.Post("/api/clear", h.ClearMessages)

		r.Group(func(r chi.Router) {
			r.Use(d.RateLimiter.LimitSends)
			r.Post("/api/send", h.SendMessage)
		})
	})

	// Frontend SPA, if its assets are present.
	if _, err := os.Stat(staticDir()); err == nil {
		fs := http.FileServer(http.Dir(staticDir()))
		r.Handle("/*", fs)
	}

	return r
}

// staticDir returns the path to the frontend assets directory.
func staticDir() string {
	if _, err := os.Stat("/app/public"); err == nil {
		return "/app/public"
	}
	return "public"
}
