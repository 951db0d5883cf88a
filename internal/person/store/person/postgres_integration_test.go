//go:build integration

package person_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	"personsdir/internal/person/store"
	"personsdir/internal/person/store/city"
	"personsdir/internal/person/store/person"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *person.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = person.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "person_relations", "phone_numbers", "persons", "cities"))
	s.Require().NoError(store.SeedCities(ctx, city.NewPostgres(s.postgres.DB)))
}

func newTestPerson(first, last, personalID string) *models.Person {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Person{
		Entity:     models.Entity{CreatedDate: now},
		FirstName:  first,
		LastName:   last,
		PersonalID: personalID,
		BirthDate:  time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		CityID:     1,
		Gender:     models.GenderMale,
		PhoneNumbers: []models.PhoneNumber{
			{Number: "599123456", Type: models.PhoneNumberMobile, CreatedDate: now},
		},
	}
}

func (s *PostgresStoreSuite) TestInsertFindDelete() {
	ctx := context.Background()

	p := newTestPerson("Giorgi", "Khutsishvili", "01010101123")
	s.Require().NoError(s.store.Insert(ctx, p))
	s.NotZero(p.ID)
	s.NotZero(p.PhoneNumbers[0].ID)

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Giorgi", found.FirstName)
	s.Require().Len(found.PhoneNumbers, 1)
	s.Equal(models.PhoneNumberMobile, found.PhoneNumbers[0].Type)

	byPersonal, err := s.store.FindByPersonalID(ctx, "01010101123")
	s.Require().NoError(err)
	s.Equal(p.ID, byPersonal.ID)

	s.Require().NoError(s.store.Delete(ctx, p.ID))
	_, err = s.store.FindByID(ctx, p.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateReconcilesPhones() {
	ctx := context.Background()

	p := newTestPerson("Nino", "Beridze", "02020202234")
	s.Require().NoError(s.store.Insert(ctx, p))

	now := time.Now().UTC().Truncate(time.Microsecond)
	p.FirstName = "Nini"
	p.UpdatedDate = &now
	p.PhoneNumbers[0].Number = "599000000"
	p.PhoneNumbers = append(p.PhoneNumbers, models.PhoneNumber{
		Number: "322700100", Type: models.PhoneNumberOffice, CreatedDate: now,
	})
	s.Require().NoError(s.store.Update(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Nini", found.FirstName)
	s.Require().Len(found.PhoneNumbers, 2)
	s.Equal("599000000", found.PhoneNumbers[0].Number)

	// dropping a number from the aggregate prunes its row
	p.PhoneNumbers = p.PhoneNumbers[1:]
	s.Require().NoError(s.store.Update(ctx, p))
	found, err = s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(found.PhoneNumbers, 1)
	s.Equal("322700100", found.PhoneNumbers[0].Number)
}

func (s *PostgresStoreSuite) TestConcurrentPersonalIDUniqueness() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := newTestPerson("Giorgi", "Khutsishvili", "05050505567")
			err := s.store.Insert(ctx, p)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestListMatchesMemorySemantics() {
	ctx := context.Background()

	giorgi := newTestPerson("Giorgi", "Khutsishvili", "01010101123")
	nino := newTestPerson("Nino", "Beridze", "02020202234")
	nino.Gender = models.GenderFemale
	nino.CityID = 2
	nino.PhoneNumbers[0] = models.PhoneNumber{Number: "322700100", Type: models.PhoneNumberOffice, CreatedDate: time.Now().UTC()}
	s.Require().NoError(s.store.Insert(ctx, giorgi))
	s.Require().NoError(s.store.Insert(ctx, nino))

	res, err := s.store.List(ctx, &query.Filter{}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(2, res.TotalCount)
	s.Require().Len(res.Items, 2)
	s.Equal(giorgi.ID, res.Items[0].ID)
	s.NotEmpty(res.Items[0].PhoneNumbers)

	res, err = s.store.List(ctx, &query.Filter{SearchTerm: " BERI "}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.TotalCount)
	s.Equal(nino.ID, res.Items[0].ID)

	res, err = s.store.List(ctx, &query.Filter{PhoneNumberType: models.PhoneNumberOffice}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.TotalCount)

	res, err = s.store.List(ctx, &query.Filter{IDIn: map[int64]struct{}{giorgi.ID: {}}}, &query.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.TotalCount)

	// empty page still reports the unpaged total
	res, err = s.store.List(ctx, &query.Filter{}, &query.Page{Number: 5, Size: 10})
	s.Require().NoError(err)
	s.Equal(2, res.TotalCount)
	s.Empty(res.Items)

	res, err = s.store.List(ctx, &query.Filter{}, &query.Page{SortBy: query.SortByFirstName, SortOrder: query.SortDesc})
	s.Require().NoError(err)
	s.Equal(nino.ID, res.Items[0].ID)
}
