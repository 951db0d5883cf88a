package person

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	"personsdir/pkg/platform/sentinel"
)

type PersonStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PersonStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPersonStoreSuite(t *testing.T) {
	suite.Run(t, new(PersonStoreSuite))
}

func (s *PersonStoreSuite) newPerson(first, last, personalID string) *models.Person {
	return &models.Person{
		Entity:     models.Entity{CreatedDate: time.Now()},
		FirstName:  first,
		LastName:   last,
		PersonalID: personalID,
		BirthDate:  time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		CityID:     1,
		Gender:     models.GenderMale,
		PhoneNumbers: []models.PhoneNumber{
			{Number: "599123456", Type: models.PhoneNumberMobile, CreatedDate: time.Now()},
		},
	}
}

func (s *PersonStoreSuite) TestInsertAndLookups() {
	s.Run("insert assigns ids and finds by id", func() {
		p := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
		s.Require().NoError(s.store.Insert(s.ctx, p))
		s.NotZero(p.ID)
		s.NotZero(p.PhoneNumbers[0].ID)
		s.Equal(p.ID, p.PhoneNumbers[0].PersonID)

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Giorgi", found.FirstName)
		s.Len(found.PhoneNumbers, 1)
	})

	s.Run("finds by personal id", func() {
		p := s.newPerson("Nino", "Beridze", "02020202234")
		s.Require().NoError(s.store.Insert(s.ctx, p))

		found, err := s.store.FindByPersonalID(s.ctx, "02020202234")
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	})

	s.Run("unknown id yields ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, 9999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate personal id yields ErrConflict", func() {
		p := s.newPerson("Giorgi", "Abashidze", "03030303345")
		s.Require().NoError(s.store.Insert(s.ctx, p))

		dup := s.newPerson("Levan", "Abashidze", "03030303345")
		s.Require().ErrorIs(s.store.Insert(s.ctx, dup), sentinel.ErrConflict)
	})
}

func (s *PersonStoreSuite) TestUpdate() {
	s.Run("persists field changes and assigns ids to new phones", func() {
		p := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
		s.Require().NoError(s.store.Insert(s.ctx, p))

		p.FirstName = "Gio"
		p.PhoneNumbers = append(p.PhoneNumbers, models.PhoneNumber{
			Number: "322700100", Type: models.PhoneNumberOffice, CreatedDate: time.Now(),
		})
		s.Require().NoError(s.store.Update(s.ctx, p))
		s.NotZero(p.PhoneNumbers[1].ID)

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Gio", found.FirstName)
		s.Len(found.PhoneNumbers, 2)
	})

	s.Run("unknown person yields ErrNotFound", func() {
		p := s.newPerson("Ghost", "Nobody", "09090909909")
		p.ID = 777
		s.Require().ErrorIs(s.store.Update(s.ctx, p), sentinel.ErrNotFound)
	})

	s.Run("store state is isolated from caller mutations", func() {
		p := s.newPerson("Ana", "Gelashvili", "04040404456")
		s.Require().NoError(s.store.Insert(s.ctx, p))

		p.FirstName = "Mutated"
		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Ana", found.FirstName)
	})
}

func (s *PersonStoreSuite) TestDelete() {
	p := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
	s.Require().NoError(s.store.Insert(s.ctx, p))

	s.Require().NoError(s.store.Delete(s.ctx, p.ID))

	_, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByPersonalID(s.ctx, p.PersonalID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, p.ID), sentinel.ErrNotFound)

	s.Run("personal id becomes reusable", func() {
		again := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
		s.Require().NoError(s.store.Insert(s.ctx, again))
	})
}

func (s *PersonStoreSuite) TestList() {
	first := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
	second := s.newPerson("Nino", "Beridze", "02020202234")
	second.Gender = models.GenderFemale
	s.Require().NoError(s.store.Insert(s.ctx, first))
	s.Require().NoError(s.store.Insert(s.ctx, second))

	res, err := s.store.List(s.ctx, &query.Filter{}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(2, res.TotalCount)

	res, err = s.store.List(s.ctx, &query.Filter{Gender: models.GenderFemale}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.TotalCount)
	s.Equal("Nino", res.Items[0].FirstName)

	res, err = s.store.List(s.ctx, &query.Filter{SearchTerm: "khuts"}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.TotalCount)
	s.Equal("Giorgi", res.Items[0].FirstName)
}

func (s *PersonStoreSuite) TestFindByIDs() {
	first := s.newPerson("Giorgi", "Khutsishvili", "01010101123")
	second := s.newPerson("Nino", "Beridze", "02020202234")
	s.Require().NoError(s.store.Insert(s.ctx, first))
	s.Require().NoError(s.store.Insert(s.ctx, second))

	found, err := s.store.FindByIDs(s.ctx, []int64{first.ID, 999, second.ID})
	s.Require().NoError(err)
	s.Len(found, 2)
}
