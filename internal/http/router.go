// Package httpapi assembles the HTTP surface: middleware chain, domain
// routes, health and metrics endpoints, and the static photo directory for
// the disk image backend.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"personsdir/internal/i18n"
	personhandler "personsdir/internal/person/handler"
	"personsdir/internal/platform/metrics"
	"personsdir/internal/platform/middleware"
	"personsdir/internal/report"
	"personsdir/pkg/platform/httputil"
)

// Deps carries everything the router mounts. Checks are named readiness
// probes (database, cache) surfaced on /healthz; a nil ImageDir skips the
// static photo route.
type Deps struct {
	Logger  *slog.Logger
	Catalog *i18n.Catalog
	Metrics *metrics.Metrics
	Persons *personhandler.Handler
	Reports *report.Handler
	Checks  map[string]func(context.Context) error

	ImageDir     string
	ImageBaseURL string
}

// NewRouter wires the middleware chain and all routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Locale(deps.Catalog))
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}

	deps.Persons.Register(r)
	deps.Reports.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(deps.Checks))

	if deps.ImageDir != "" {
		base := deps.ImageBaseURL
		if base == "" {
			base = "/images"
		}
		r.Handle(base+"/*", http.StripPrefix(base+"/", http.FileServer(http.Dir(deps.ImageDir))))
	}

	return r
}

func healthz(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		overall := "ok"
		components := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				overall = "degraded"
				components[name] = err.Error()
			} else {
				components[name] = "ok"
			}
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status":     overall,
			"components": components,
		})
	}
}
