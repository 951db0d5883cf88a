package service

import (
	"context"
	"errors"

	"personsdir/internal/audit"
	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	dErrors "personsdir/pkg/domain-errors"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/requestcontext"
)

// CreateRelation adds a typed edge from the source person to the target. Both
// endpoints must exist, self-edges are rejected, and at most one edge exists
// per ordered pair.
func (s *Service) CreateRelation(ctx context.Context, req *models.CreateRelationRequest) error {
	if req.PersonID == req.RelatedPersonID {
		return dErrors.NewKeyed(dErrors.CodeValidation, i18n.RelationToSelf)
	}

	now := requestcontext.Now(ctx)

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.persons.FindByID(ctx, req.PersonID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, req.PersonID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
		}
		if _, err := s.persons.FindByID(ctx, req.RelatedPersonID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.RelatedPersonNotFoundByID, req.RelatedPersonID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load related person")
		}

		edge := models.PersonRelation{
			PersonID:        req.PersonID,
			RelatedPersonID: req.RelatedPersonID,
			Type:            req.Type,
			CreatedDate:     now,
		}
		if err := s.relations.Insert(ctx, edge); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.NewKeyed(dErrors.CodeConflict, i18n.RelationAlreadyExists, req.PersonID, req.RelatedPersonID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create relation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "relation created",
		"person_id", req.PersonID,
		"related_person_id", req.RelatedPersonID,
		"type", req.Type.String(),
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp:       now,
		RequestID:       requestcontext.RequestID(ctx),
		Action:          audit.ActionRelationCreated,
		PersonID:        req.PersonID,
		RelatedPersonID: req.RelatedPersonID,
		Detail:          req.Type.String(),
	})
	if s.metrics != nil {
		s.metrics.RelationsCreated.Inc()
	}
	return nil
}

// DeleteRelation removes the edge from the source person to the target. The
// edge disappears from both endpoints' views since they share it.
func (s *Service) DeleteRelation(ctx context.Context, personID, relatedPersonID int64) error {
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.persons.FindByID(ctx, personID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, personID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
		}

		if err := s.relations.Delete(ctx, personID, relatedPersonID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.RelationNotFound, personID, relatedPersonID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete relation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "relation deleted",
		"person_id", personID,
		"related_person_id", relatedPersonID,
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp:       requestcontext.Now(ctx),
		RequestID:       requestcontext.RequestID(ctx),
		Action:          audit.ActionRelationDeleted,
		PersonID:        personID,
		RelatedPersonID: relatedPersonID,
	})
	if s.metrics != nil {
		s.metrics.RelationsDeleted.Inc()
	}
	return nil
}
