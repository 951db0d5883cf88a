package report

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"personsdir/internal/i18n"
	personhandler "personsdir/internal/person/handler"
	"personsdir/pkg/platform/httputil"
	"personsdir/pkg/requestcontext"
)

// Handler serves the related-persons report. It reuses the list endpoint's
// query grammar so callers filter the report exactly like the person list.
type Handler struct {
	svc     *Service
	catalog *i18n.Catalog
	logger  *slog.Logger
}

func NewHandler(svc *Service, catalog *i18n.Catalog, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, catalog: catalog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/related-persons", h.relatedPersons)
}

func (h *Handler) relatedPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := personhandler.ParseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	resp, err := h.svc.RelatedPersons(ctx, &params.Filter, &params.Page)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, ctx context.Context, err error) {
	httputil.WriteError(w, h.catalog.LocalizeError(requestcontext.Locale(ctx), err))
}
