package service

import (
	"context"
	"errors"
	"time"

	"personsdir/internal/audit"
	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	dErrors "personsdir/pkg/domain-errors"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/requestcontext"
)

// CreatePerson inserts a validated person aggregate. The personal id must be
// free; the referenced city must exist.
func (s *Service) CreatePerson(ctx context.Context, req *models.CreatePersonRequest) (*models.PersonRecord, error) {
	if _, err := s.cities.FindByID(ctx, req.CityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewValidation(map[string]string{"city_id": i18n.CityRequired})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load city")
	}

	now := requestcontext.Now(ctx)
	p := models.NewPerson(req, now)

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.persons.Insert(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.NewKeyed(dErrors.CodeConflict, i18n.PersonalIDAlreadyExists, p.PersonalID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person created",
		"person_id", p.ID,
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp: now,
		RequestID: requestcontext.RequestID(ctx),
		Action:    audit.ActionPersonCreated,
		PersonID:  p.ID,
	})
	if s.metrics != nil {
		s.metrics.PersonsCreated.Inc()
	}

	record := s.project(ctx, p, nil)
	return &record, nil
}

// UpdatePerson applies the mutable fields of an existing person.
func (s *Service) UpdatePerson(ctx context.Context, req *models.UpdatePersonRequest) (*models.PersonRecord, error) {
	if _, err := s.cities.FindByID(ctx, req.CityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewValidation(map[string]string{"city_id": i18n.CityRequired})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load city")
	}

	now := requestcontext.Now(ctx)
	var p *models.Person

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.persons.FindByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, req.ID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
		}

		p.ApplyUpdate(req, now)
		if err := s.persons.Update(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update person")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person updated",
		"person_id", p.ID,
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp: now,
		RequestID: requestcontext.RequestID(ctx),
		Action:    audit.ActionPersonUpdated,
		PersonID:  p.ID,
	})
	if s.metrics != nil {
		s.metrics.PersonsUpdated.Inc()
	}

	record := s.project(ctx, p, nil)
	return &record, nil
}

// DeletePerson removes the person and severs every relation edge touching it
// in the same transaction, so no dangling back-references survive.
func (s *Service) DeletePerson(ctx context.Context, id int64) error {
	var severed int
	var p *models.Person

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.persons.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, id)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
		}
		severed, err = s.relations.DeleteByPerson(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to sever relations")
		}
		if err := s.persons.Delete(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, id)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete person")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if p.Image != "" && s.images != nil {
		if err := s.images.Remove(ctx, p.ImageName()); err != nil {
			s.logger.WarnContext(ctx, "failed to remove person image",
				"person_id", id, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "person deleted",
		"person_id", id,
		"severed_relations", severed,
		"request_id", requestcontext.RequestID(ctx))
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Action:    audit.ActionPersonDeleted,
		PersonID:  id,
	})
	if s.metrics != nil {
		s.metrics.PersonsDeleted.Inc()
	}
	return nil
}

// GetPersonDetails loads a person with both sides of its relation edges.
func (s *Service) GetPersonDetails(ctx context.Context, id int64) (*models.PersonRecord, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewKeyed(dErrors.CodeNotFound, i18n.PersonNotFoundByID, id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}

	record := s.project(ctx, p, nil)
	if err := s.attachRelations(ctx, &record, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPersonsRequest carries the typed query parameters of the list endpoint.
// RelatedType and RelatedPersonID constrain by the relation graph and are
// resolved to an id set before the store runs the filter.
type ListPersonsRequest struct {
	Filter          query.Filter
	RelatedType     models.RelatedType
	RelatedPersonID int64
	Page            query.Page
}

// ListPersons produces one page of person records plus the unpaged total.
func (s *Service) ListPersons(ctx context.Context, req *ListPersonsRequest) (*models.ListPersonsResponse, error) {
	start := time.Now()

	filter := req.Filter
	if req.RelatedType != "" || req.RelatedPersonID != 0 {
		idSet, err := s.resolveRelationConstraint(ctx, req.RelatedType, req.RelatedPersonID)
		if err != nil {
			return nil, err
		}
		filter.IDIn = idSet
	}

	page := req.Page
	res, err := s.persons.List(ctx, &filter, &page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}

	cityNames, err := s.cityIndex(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.ListPersonsResponse{
		TotalCount: res.TotalCount,
		Page:       page.Number,
		PageSize:   page.Size,
		Items:      []models.PersonRecord{},
	}
	now := requestcontext.Now(ctx)
	tag := requestcontext.Locale(ctx)
	for _, p := range res.Items {
		resp.Items = append(resp.Items, models.NewPersonRecord(p, cityNames[p.CityID], tag, now))
	}

	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
	return resp, nil
}

// resolveRelationConstraint maps graph filters to the set of person ids whose
// outgoing edges satisfy them.
func (s *Service) resolveRelationConstraint(ctx context.Context, edgeType models.RelatedType, relatedPersonID int64) (map[int64]struct{}, error) {
	var edges []models.PersonRelation
	var err error
	if relatedPersonID != 0 {
		edges, err = s.relations.ListByTarget(ctx, relatedPersonID)
	} else {
		edges, err = s.relations.ListByType(ctx, edgeType)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relations")
	}

	idSet := map[int64]struct{}{}
	for _, edge := range edges {
		if edgeType != "" && edge.Type != edgeType {
			continue
		}
		idSet[edge.PersonID] = struct{}{}
	}
	return idSet, nil
}

func (s *Service) cityIndex(ctx context.Context) (map[int64]*models.City, error) {
	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cities")
	}
	index := make(map[int64]*models.City, len(cities))
	for _, c := range cities {
		index[c.ID] = c
	}
	return index, nil
}

// project builds the read record; city is looked up unless supplied.
func (s *Service) project(ctx context.Context, p *models.Person, city *models.City) models.PersonRecord {
	if city == nil {
		if found, err := s.cities.FindByID(ctx, p.CityID); err == nil {
			city = found
		}
	}
	return models.NewPersonRecord(p, city, requestcontext.Locale(ctx), requestcontext.Now(ctx))
}

// attachRelations fills both edge directions of the details view.
func (s *Service) attachRelations(ctx context.Context, record *models.PersonRecord, id int64) error {
	edges, err := s.relations.ListTouching(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relations")
	}
	if len(edges) == 0 {
		return nil
	}

	farIDs := make([]int64, 0, len(edges))
	for _, edge := range edges {
		if edge.PersonID == id {
			farIDs = append(farIDs, edge.RelatedPersonID)
		} else {
			farIDs = append(farIDs, edge.PersonID)
		}
	}
	farPersons, err := s.persons.FindByIDs(ctx, farIDs)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load related persons")
	}
	byID := make(map[int64]*models.Person, len(farPersons))
	for _, p := range farPersons {
		byID[p.ID] = p
	}

	for _, edge := range edges {
		if edge.PersonID == id {
			if far, ok := byID[edge.RelatedPersonID]; ok {
				record.RelatedPersons = append(record.RelatedPersons, models.NewRelatedPersonRecord(far, edge.Type))
			}
		} else {
			if far, ok := byID[edge.PersonID]; ok {
				record.RelatedToPersons = append(record.RelatedToPersons, models.NewRelatedPersonRecord(far, edge.Type))
			}
		}
	}
	return nil
}
