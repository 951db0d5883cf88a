//go:build integration

package relation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personsdir/internal/person/models"
	"personsdir/internal/person/store"
	"personsdir/internal/person/store/city"
	"personsdir/internal/person/store/person"
	"personsdir/internal/person/store/relation"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/testutil/containers"
)

type RelationPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *relation.PostgresStore
	persons  *person.PostgresStore

	giorgi int64
	nino   int64
	levan  int64
}

func TestRelationPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelationPostgresSuite))
}

func (s *RelationPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = relation.NewPostgres(s.postgres.DB)
	s.persons = person.NewPostgres(s.postgres.DB)
}

func (s *RelationPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "person_relations", "phone_numbers", "persons", "cities"))
	s.Require().NoError(store.SeedCities(ctx, city.NewPostgres(s.postgres.DB)))

	s.giorgi = s.insertPerson("Giorgi", "01010101123")
	s.nino = s.insertPerson("Nino", "02020202234")
	s.levan = s.insertPerson("Levan", "03030303345")
}

func (s *RelationPostgresSuite) insertPerson(first, personalID string) int64 {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &models.Person{
		Entity:     models.Entity{CreatedDate: now},
		FirstName:  first,
		LastName:   "Testashvili",
		PersonalID: personalID,
		BirthDate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		CityID:     1,
		Gender:     models.GenderMale,
	}
	s.Require().NoError(s.persons.Insert(context.Background(), p))
	return p.ID
}

func (s *RelationPostgresSuite) edge(from, to int64, edgeType models.RelatedType) models.PersonRelation {
	return models.PersonRelation{
		PersonID:        from,
		RelatedPersonID: to,
		Type:            edgeType,
		CreatedDate:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *RelationPostgresSuite) TestInsertAndConflict() {
	ctx := context.Background()

	s.Require().NoError(s.store.Insert(ctx, s.edge(s.giorgi, s.nino, models.RelatedFriend)))
	s.Require().ErrorIs(s.store.Insert(ctx, s.edge(s.giorgi, s.nino, models.RelatedSpouse)), sentinel.ErrConflict)

	exists, err := s.store.Exists(ctx, s.giorgi, s.nino)
	s.Require().NoError(err)
	s.True(exists)

	outgoing, err := s.store.ListBySource(ctx, s.giorgi)
	s.Require().NoError(err)
	s.Require().Len(outgoing, 1)
	s.Equal(models.RelatedFriend, outgoing[0].Type)

	incoming, err := s.store.ListByTarget(ctx, s.nino)
	s.Require().NoError(err)
	s.Len(incoming, 1)
}

func (s *RelationPostgresSuite) TestDeleteAndCascade() {
	ctx := context.Background()

	s.Require().NoError(s.store.Insert(ctx, s.edge(s.giorgi, s.nino, models.RelatedFriend)))
	s.Require().NoError(s.store.Insert(ctx, s.edge(s.levan, s.giorgi, models.RelatedSibling)))

	s.Require().NoError(s.store.Delete(ctx, s.giorgi, s.nino))
	s.Require().ErrorIs(s.store.Delete(ctx, s.giorgi, s.nino), sentinel.ErrNotFound)

	removed, err := s.store.DeleteByPerson(ctx, s.giorgi)
	s.Require().NoError(err)
	s.Equal(1, removed)

	touching, err := s.store.ListTouching(ctx, s.giorgi)
	s.Require().NoError(err)
	s.Empty(touching)
}

func (s *RelationPostgresSuite) TestListBySources() {
	ctx := context.Background()

	s.Require().NoError(s.store.Insert(ctx, s.edge(s.giorgi, s.nino, models.RelatedFriend)))
	s.Require().NoError(s.store.Insert(ctx, s.edge(s.giorgi, s.levan, models.RelatedSibling)))
	s.Require().NoError(s.store.Insert(ctx, s.edge(s.nino, s.levan, models.RelatedSpouse)))

	edges, err := s.store.ListBySources(ctx, []int64{s.giorgi, s.nino})
	s.Require().NoError(err)
	s.Len(edges, 3)

	edges, err = s.store.ListBySources(ctx, nil)
	s.Require().NoError(err)
	s.Empty(edges)
}
