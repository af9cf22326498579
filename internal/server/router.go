package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farewatch/farewatch/internal/api"
	"github.com/farewatch/farewatch/internal/api/handlers"
	"github.com/farewatch/farewatch/internal/api/middleware"
)

type RouterConfig struct {
	IngestSecret    string
	IngestHandler   *handlers.IngestHandler
	QueryHandler    *handlers.QueryHandler
	AlertHandler    *handlers.AlertHandler
	AircraftHandler *handlers.AircraftHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Producer boundary: browser extensions and scrapers push batches here.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SharedSecret(cfg.IngestSecret))

		r.Post("/ingest/{queryID}", cfg.IngestHandler.Ingest)
	})

	// User boundary: queries, results and alerts attributed by X-User-ID.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/queries", func(r chi.Router) {
			r.Post("/", cfg.QueryHandler.Create)
			r.Get("/{queryID}", cfg.QueryHandler.Get)
			r.Delete("/{queryID}", cfg.QueryHandler.Archive)
			r.Get("/{queryID}/results", cfg.QueryHandler.ListResults)
			r.Delete("/{queryID}/results/{observationID}", cfg.QueryHandler.InvalidateResult)
			r.Get("/{queryID}/results/{observationID}/payload", cfg.QueryHandler.ResultPayloadURL)
			r.Get("/{queryID}/feed", cfg.QueryHandler.PollFeed)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", cfg.AlertHandler.Create)
			r.Get("/", cfg.AlertHandler.List)
			r.Delete("/{alertID}", cfg.AlertHandler.Delete)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", cfg.AlertHandler.ListMatches)
			r.Post("/{matchID}/seen", cfg.AlertHandler.MarkSeen)
		})
	})

	r.Get("/aircraft/rare", cfg.AircraftHandler.ListRare)

	return r
}
