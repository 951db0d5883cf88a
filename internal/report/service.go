// Package report builds the related-persons report: the listed page of
// persons enriched with both sides of their relation edges and per-type edge
// counts. Counts are always computed from the edge data on demand, never
// stored.
package report

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"personsdir/internal/person/metrics"
	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	dErrors "personsdir/pkg/domain-errors"
	"personsdir/pkg/requestcontext"
)

type PersonStore interface {
	List(ctx context.Context, filter *query.Filter, page *query.Page) (*query.Result, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*models.Person, error)
}

type RelationStore interface {
	ListBySources(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error)
	ListByTargets(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error)
}

type CityStore interface {
	List(ctx context.Context) ([]*models.City, error)
}

// RelatedTypeCount is the number of a person's outgoing edges of one type.
type RelatedTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Item is one person in the report.
type Item struct {
	models.PersonRecord
	RelatedTypeCounts []RelatedTypeCount `json:"related_type_counts"`
}

// Response is one page of the report with the unpaged total.
type Response struct {
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Items      []Item `json:"items"`
}

// Service computes the report from the same stores the person module uses.
type Service struct {
	persons   PersonStore
	relations RelationStore
	cities    CityStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(persons PersonStore, relations RelationStore, cities CityStore, opts ...Option) *Service {
	s := &Service{persons: persons, relations: relations, cities: cities, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RelatedPersons produces the report for one filtered, sorted page of persons.
func (s *Service) RelatedPersons(ctx context.Context, filter *query.Filter, page *query.Page) (*Response, error) {
	start := time.Now()

	res, err := s.persons.List(ctx, filter, page)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}

	pageIDs := make([]int64, 0, len(res.Items))
	for _, p := range res.Items {
		pageIDs = append(pageIDs, p.ID)
	}

	outgoing, err := s.relations.ListBySources(ctx, pageIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relations")
	}
	incoming, err := s.relations.ListByTargets(ctx, pageIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relations")
	}

	farPersons, err := s.loadFarPersons(ctx, pageIDs, outgoing, incoming)
	if err != nil {
		return nil, err
	}

	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cities")
	}
	cityByID := make(map[int64]*models.City, len(cities))
	for _, c := range cities {
		cityByID[c.ID] = c
	}

	outBySource := groupBy(outgoing, func(e models.PersonRelation) int64 { return e.PersonID })
	inByTarget := groupBy(incoming, func(e models.PersonRelation) int64 { return e.RelatedPersonID })

	now := requestcontext.Now(ctx)
	tag := requestcontext.Locale(ctx)
	resp := &Response{
		TotalCount: res.TotalCount,
		Page:       page.Number,
		PageSize:   page.Size,
		Items:      []Item{},
	}
	for _, p := range res.Items {
		item := Item{PersonRecord: models.NewPersonRecord(p, cityByID[p.CityID], tag, now)}

		for _, edge := range outBySource[p.ID] {
			if far, ok := farPersons[edge.RelatedPersonID]; ok {
				item.RelatedPersons = append(item.RelatedPersons, models.NewRelatedPersonRecord(far, edge.Type))
			}
		}
		for _, edge := range inByTarget[p.ID] {
			if far, ok := farPersons[edge.PersonID]; ok {
				item.RelatedToPersons = append(item.RelatedToPersons, models.NewRelatedPersonRecord(far, edge.Type))
			}
		}
		item.RelatedTypeCounts = countByType(outBySource[p.ID])

		resp.Items = append(resp.Items, item)
	}

	if s.metrics != nil {
		s.metrics.ObserveReport(start)
	}
	return resp, nil
}

func (s *Service) loadFarPersons(ctx context.Context, pageIDs []int64, outgoing, incoming []models.PersonRelation) (map[int64]*models.Person, error) {
	farSet := map[int64]struct{}{}
	for _, edge := range outgoing {
		farSet[edge.RelatedPersonID] = struct{}{}
	}
	for _, edge := range incoming {
		farSet[edge.PersonID] = struct{}{}
	}

	farIDs := make([]int64, 0, len(farSet))
	for id := range farSet {
		farIDs = append(farIDs, id)
	}
	persons, err := s.persons.FindByIDs(ctx, farIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load related persons")
	}

	byID := make(map[int64]*models.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}
	return byID, nil
}

func groupBy(edges []models.PersonRelation, key func(models.PersonRelation) int64) map[int64][]models.PersonRelation {
	grouped := map[int64][]models.PersonRelation{}
	for _, edge := range edges {
		grouped[key(edge)] = append(grouped[key(edge)], edge)
	}
	return grouped
}

// countByType aggregates outgoing edges per relation type, ordered by type
// name for stable output.
func countByType(edges []models.PersonRelation) []RelatedTypeCount {
	counts := map[string]int{}
	for _, edge := range edges {
		counts[edge.Type.String()]++
	}

	out := make([]RelatedTypeCount, 0, len(counts))
	for edgeType, count := range counts {
		out = append(out, RelatedTypeCount{Type: edgeType, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
