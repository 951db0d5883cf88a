package httpapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	httpapi "personsdir/internal/http"
	"personsdir/internal/i18n"
	"personsdir/internal/person/handler"
	"personsdir/internal/person/service"
	"personsdir/internal/person/store"
	citystore "personsdir/internal/person/store/city"
	personstore "personsdir/internal/person/store/person"
	relationstore "personsdir/internal/person/store/relation"
	platformmetrics "personsdir/internal/platform/metrics"
	"personsdir/internal/report"
	"personsdir/pkg/platform/tx"
	"personsdir/pkg/testutil"
)

func newRouter(t *testing.T, checks map[string]func(context.Context) error, imageDir string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persons := personstore.NewInMemory()
	relations := relationstore.NewInMemory()
	cities := citystore.NewInMemory()
	require.NoError(t, store.SeedCities(t.Context(), cities))

	svc := service.New(persons, relations, cities, tx.NewMemoryRunner(), service.WithLogger(logger))
	reports := report.New(persons, relations, cities, report.WithLogger(logger))
	catalog := i18n.NewCatalog(language.English)

	return httpapi.NewRouter(httpapi.Deps{
		Logger:   logger,
		Catalog:  catalog,
		Metrics:  platformmetrics.NewWith(prometheus.NewRegistry()),
		Persons:  handler.New(svc, catalog, logger),
		Reports:  report.NewHandler(reports, catalog, logger),
		Checks:   checks,
		ImageDir: imageDir,
	})
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "a router with a healthy and a failing readiness check", func(t *testing.T) {
		checks := map[string]func(context.Context) error{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}
		srv := newRouter(t, checks, "")

		testutil.When(t, "calling GET /healthz", func(t *testing.T) {
			rr := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "it reports degraded with per-component detail", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
				testutil.AssertJSONContains(t, rr, "status", "degraded")
			})
		})
	})

	testutil.Given(t, "a router with all checks passing", func(t *testing.T) {
		checks := map[string]func(context.Context) error{
			"postgres": func(context.Context) error { return nil },
		}
		srv := newRouter(t, checks, "")

		testutil.When(t, "calling GET /healthz and GET /metrics", func(t *testing.T) {
			health := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/healthz"))
			metrics := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "both respond ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, health)
				testutil.AssertJSONContains(t, health, "status", "ok")
				testutil.AssertStatusOK(t, metrics)
				assert.Contains(t, metrics.Body.String(), "personsdir_http_requests_total")
			})
		})
	})

	testutil.Given(t, "a router serving a disk image directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Giorgi_Khutsishvili_1.jpg"), []byte("jpegdata"), 0o644))
		srv := newRouter(t, nil, dir)

		testutil.When(t, "fetching the photo by its public URL", func(t *testing.T) {
			rr := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/images/Giorgi_Khutsishvili_1.jpg"))

			testutil.Then(t, "the blob is served as-is", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.Equal(t, "jpegdata", rr.Body.String())
			})
		})
	})
}
