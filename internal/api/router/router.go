package router

import (
	"net/http"

	"github.com/ThimethZ03/utility-billing-system2/internal/api/handlers"
	"github.com/ThimethZ03/utility-billing-system2/internal/api/middleware"
	"github.com/ThimethZ03/utility-billing-system2/internal/config"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Forecast *handlers.ForecastHandler
	Alert    *handlers.AlertHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.AllowedOrigins(cfg.Server.FrontendURL, cfg.Server.Environment)))
	r.Use(metrics.Middleware)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		r.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

		// Forecasts
		r.Route("/api/v1/forecast", func(r chi.Router) {
			r.Get("/", h.Forecast.Get)
			r.Post("/", h.Forecast.Predict)
			r.Post("/batch", h.Forecast.PredictBatch)
			r.Post("/analyze", h.Forecast.Analyze)
			r.Get("/branches", h.Forecast.Branches)
		})

		// Alerts
		r.Route("/api/v1/alerts", func(r chi.Router) {
			r.Get("/check", h.Alert.Check)
			r.Get("/settings", h.Alert.GetSettings)
			r.Put("/settings", h.Alert.UpdateSettings)
			r.Get("/feed", h.Alert.ListFeed)
			r.Post("/feed/{id}/ack", h.Alert.Acknowledge)
			r.Post("/test-email", h.Alert.SendTestEmail)
			r.Delete("/cooldowns", h.Alert.ResetCooldowns)
			r.Get("/notifications", h.Alert.ListNotifications)
		})
	})

	return r
}
