package relation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personsdir/internal/person/models"
	"personsdir/pkg/platform/sentinel"
)

type RelationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *RelationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestRelationStoreSuite(t *testing.T) {
	suite.Run(t, new(RelationStoreSuite))
}

func (s *RelationStoreSuite) edge(from, to int64, edgeType models.RelatedType) models.PersonRelation {
	return models.PersonRelation{
		PersonID:        from,
		RelatedPersonID: to,
		Type:            edgeType,
		CreatedDate:     time.Now(),
	}
}

func (s *RelationStoreSuite) TestInsert() {
	s.Run("stores edge visible from both endpoints", func() {
		s.Require().NoError(s.store.Insert(s.ctx, s.edge(1, 2, models.RelatedFriend)))

		outgoing, err := s.store.ListBySource(s.ctx, 1)
		s.Require().NoError(err)
		s.Len(outgoing, 1)

		incoming, err := s.store.ListByTarget(s.ctx, 2)
		s.Require().NoError(err)
		s.Len(incoming, 1)
		s.Equal(models.RelatedFriend, incoming[0].Type)
	})

	s.Run("duplicate ordered pair yields ErrConflict", func() {
		s.Require().NoError(s.store.Insert(s.ctx, s.edge(3, 4, models.RelatedSibling)))
		err := s.store.Insert(s.ctx, s.edge(3, 4, models.RelatedSpouse))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("reverse direction is a distinct edge", func() {
		s.Require().NoError(s.store.Insert(s.ctx, s.edge(5, 6, models.RelatedParent)))
		s.Require().NoError(s.store.Insert(s.ctx, s.edge(6, 5, models.RelatedParent)))
	})
}

func (s *RelationStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(1, 2, models.RelatedFriend)))

	s.Require().NoError(s.store.Delete(s.ctx, 1, 2))

	outgoing, err := s.store.ListBySource(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(outgoing)

	incoming, err := s.store.ListByTarget(s.ctx, 2)
	s.Require().NoError(err)
	s.Empty(incoming)

	s.Require().ErrorIs(s.store.Delete(s.ctx, 1, 2), sentinel.ErrNotFound)
}

func (s *RelationStoreSuite) TestExists() {
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(1, 2, models.RelatedFriend)))

	exists, err := s.store.Exists(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.Exists(s.ctx, 2, 1)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RelationStoreSuite) TestListTouchingAndBySources() {
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(1, 2, models.RelatedFriend)))
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(3, 1, models.RelatedSibling)))
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(3, 4, models.RelatedSpouse)))

	touching, err := s.store.ListTouching(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(touching, 2)

	bySources, err := s.store.ListBySources(s.ctx, []int64{1, 3})
	s.Require().NoError(err)
	s.Len(bySources, 3)

	bySources, err = s.store.ListBySources(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(bySources)
}

func (s *RelationStoreSuite) TestDeleteByPerson() {
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(1, 2, models.RelatedFriend)))
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(3, 1, models.RelatedSibling)))
	s.Require().NoError(s.store.Insert(s.ctx, s.edge(3, 4, models.RelatedSpouse)))

	removed, err := s.store.DeleteByPerson(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(2, removed)

	remaining, err := s.store.ListBySource(s.ctx, 3)
	s.Require().NoError(err)
	s.Len(remaining, 1)
	s.Equal(int64(4), remaining[0].RelatedPersonID)
}
