package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	appLogger "github.com/FACorreiaa/go-trip-aggregator/app/logger"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api"
	"github.com/FACorreiaa/go-trip-aggregator/internal/container"
)

const (
	defaultRequestsPerMinute = 60
	defaultTimeout           = 120 * time.Second
)

// SetupRouter builds the HTTP surface over the container's handlers with the
// server-wide middleware applied.
func SetupRouter(c *container.Container) chi.Router {
	cfg := c.Config
	r := chi.NewRouter()

	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	perMinute := cfg.RateLimit.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(c.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, api.HealthResponse{
			Status:  "healthy",
			Service: cfg.Observability.ServiceName,
			Mode:    cfg.Mode,
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(perMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many requests")
			}),
		))

		r.Post("/plan/generate", c.AggregationHandler.GeneratePlan)
		r.Get("/rates/{currency}", c.ExchangeHandler.GetRate)
	})

	return r
}
