// Package service orchestrates the person directory: aggregate commands, the
// relation graph, photo uploads, and the list/report query paths.
package service

import (
	"context"
	"log/slog"

	"personsdir/internal/audit"
	"personsdir/internal/imagestore"
	"personsdir/internal/person/metrics"
	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	"personsdir/pkg/platform/tx"
)

type PersonStore interface {
	Insert(ctx context.Context, p *models.Person) error
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, id int64) error
	SetImage(ctx context.Context, id int64, image string) error
	FindByID(ctx context.Context, id int64) (*models.Person, error)
	FindByPersonalID(ctx context.Context, personalID string) (*models.Person, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*models.Person, error)
	List(ctx context.Context, filter *query.Filter, page *query.Page) (*query.Result, error)
}

type RelationStore interface {
	Insert(ctx context.Context, edge models.PersonRelation) error
	Delete(ctx context.Context, personID, relatedPersonID int64) error
	Exists(ctx context.Context, personID, relatedPersonID int64) (bool, error)
	ListBySource(ctx context.Context, personID int64) ([]models.PersonRelation, error)
	ListByTarget(ctx context.Context, personID int64) ([]models.PersonRelation, error)
	ListTouching(ctx context.Context, personID int64) ([]models.PersonRelation, error)
	ListByType(ctx context.Context, edgeType models.RelatedType) ([]models.PersonRelation, error)
	ListBySources(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error)
	DeleteByPerson(ctx context.Context, personID int64) (int, error)
}

type CityStore interface {
	FindByID(ctx context.Context, id int64) (*models.City, error)
	List(ctx context.Context) ([]*models.City, error)
}

// Service carries every dependency of the person module. Commands run inside
// the tx runner; audit events are emitted only after the commit boundary
// returns.
type Service struct {
	persons   PersonStore
	relations RelationStore
	cities    CityStore
	images    imagestore.Store
	runner    tx.Runner
	logger    *slog.Logger
	auditor   audit.Publisher
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithImageStore(store imagestore.Store) Option {
	return func(s *Service) { s.images = store }
}

// New constructs a Service. Absent options default to no-op collaborators so
// tests can wire only what they assert on.
func New(persons PersonStore, relations RelationStore, cities CityStore, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		persons:   persons,
		relations: relations,
		cities:    cities,
		runner:    runner,
		logger:    slog.Default(),
		auditor:   audit.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	s.auditor.Emit(ctx, event)
}

// ListCities returns the city reference data for pickers.
func (s *Service) ListCities(ctx context.Context) ([]*models.City, error) {
	return s.cities.List(ctx)
}
