// Package handler exposes the person directory over HTTP: person CRUD,
// relation edges, photo upload, the list endpoint, and the city reference
// data. All domain logic lives in the service; this layer decodes, delegates,
// and localizes.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	"personsdir/internal/person/service"
	dErrors "personsdir/pkg/domain-errors"
	"personsdir/pkg/platform/httputil"
	"personsdir/pkg/requestcontext"
)

type Handler struct {
	svc     *service.Service
	catalog *i18n.Catalog
	logger  *slog.Logger
}

func New(svc *service.Service, catalog *i18n.Catalog, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, catalog: catalog, logger: logger}
}

// Register mounts the person routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/persons", func(r chi.Router) {
		r.Post("/", h.createPerson)
		r.Get("/", h.listPersons)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getPerson)
			r.Put("/", h.updatePerson)
			r.Delete("/", h.deletePerson)
			r.Post("/image", h.uploadImage)
			r.Post("/relations", h.createRelation)
			r.Delete("/relations/{relatedID}", h.deleteRelation)
		})
	})
	r.Get("/cities", h.listCities)
}

// localize returns the rewrite applied to errors before they cross the
// boundary, resolving message keys for the request locale.
func (h *Handler) localize(ctx context.Context) func(error) error {
	return func(err error) error {
		return h.catalog.LocalizeError(requestcontext.Locale(ctx), err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, ctx context.Context, err error) {
	httputil.WriteError(w, h.localize(ctx)(err))
}

func routeID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s: %q", name, raw)
	}
	return id, nil
}

func (h *Handler) createPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreatePersonRequest](
		w, r, h.logger, ctx, requestcontext.RequestID(ctx), h.localize(ctx))
	if !ok {
		return
	}

	record, err := h.svc.CreatePerson(ctx, req)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) getPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	record, err := h.svc.GetPersonDetails(ctx, id)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) updatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdatePersonRequest](
		w, r, h.logger, ctx, requestcontext.RequestID(ctx), h.localize(ctx))
	if !ok {
		return
	}
	req.ID = id

	record, err := h.svc.UpdatePerson(ctx, req)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) deletePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	if err := h.svc.DeletePerson(ctx, id); err != nil {
		h.writeError(w, ctx, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	resp, err := h.svc.ListPersons(ctx, &service.ListPersonsRequest{
		Filter:          params.Filter,
		RelatedType:     params.RelatedType,
		RelatedPersonID: params.RelatedPersonID,
		Page:            params.Page,
	})
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) createRelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateRelationRequest](
		w, r, h.logger, ctx, requestcontext.RequestID(ctx), h.localize(ctx))
	if !ok {
		return
	}
	req.PersonID = id

	if err := h.svc.CreateRelation(ctx, req); err != nil {
		h.writeError(w, ctx, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deleteRelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	relatedID, err := routeID(r, "relatedID")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	if err := h.svc.DeleteRelation(ctx, id, relatedID); err != nil {
		h.writeError(w, ctx, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadImage accepts a multipart form with the photo under the "file" field.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := routeID(r, "id")
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}

	// Leave headroom over the payload cap so an oversized file is rejected
	// by the service with a localized message, not by a broken parse.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(service.MaxImageSize); err != nil {
		h.writeError(w, ctx, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, ctx, dErrors.NewKeyed(dErrors.CodeValidation, i18n.NoFileIsSelected))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, ctx, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read upload"))
		return
	}

	url, err := h.svc.UploadPersonImage(ctx, id, header.Filename, data)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"image": url})
}

func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cities, err := h.svc.ListCities(ctx)
	if err != nil {
		h.writeError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cities)
}
