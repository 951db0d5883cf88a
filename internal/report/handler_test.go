package report_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	"personsdir/internal/person/store"
	citystore "personsdir/internal/person/store/city"
	personstore "personsdir/internal/person/store/person"
	relationstore "personsdir/internal/person/store/relation"
	"personsdir/internal/report"
	"personsdir/pkg/testutil"
)

func newReportServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persons := personstore.NewInMemory()
	relations := relationstore.NewInMemory()
	cities := citystore.NewInMemory()
	require.NoError(t, store.SeedCities(t.Context(), cities))

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []*models.Person{
		newTestPerson("Giorgi", "Khutsishvili", "01010101123", now),
		newTestPerson("Nino", "Beridze", "01010101124", now),
		newTestPerson("Levan", "Gelashvili", "01010101125", now),
	}
	for _, p := range seed {
		require.NoError(t, persons.Insert(t.Context(), p))
	}
	edges := []models.PersonRelation{
		{PersonID: 1, RelatedPersonID: 2, Type: models.RelatedFriend, CreatedDate: now},
		{PersonID: 1, RelatedPersonID: 3, Type: models.RelatedFriend, CreatedDate: now},
		{PersonID: 3, RelatedPersonID: 1, Type: models.RelatedSibling, CreatedDate: now},
	}
	for _, edge := range edges {
		require.NoError(t, relations.Insert(t.Context(), edge))
	}

	catalog := i18n.NewCatalog(language.English)
	h := report.NewHandler(report.New(persons, relations, cities, report.WithLogger(logger)), catalog, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func newTestPerson(first, last, personalID string, now time.Time) *models.Person {
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

func TestRelatedPersonsReport(t *testing.T) {
	srv := newReportServer(t)

	rr := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/reports/related-persons"))
	testutil.AssertStatusOK(t, rr)

	resp := testutil.UnmarshalResponse[report.Response](t, rr)
	assert.Equal(t, 3, resp.TotalCount)
	require.Len(t, resp.Items, 3)

	first := resp.Items[0]
	assert.Equal(t, int64(1), first.ID)
	require.Len(t, first.RelatedPersons, 2)
	require.Len(t, first.RelatedToPersons, 1)
	assert.Equal(t, []report.RelatedTypeCount{{Type: "Friend", Count: 2}}, first.RelatedTypeCounts)

	// Incoming edges do not contribute to the counts.
	second := resp.Items[1]
	assert.Equal(t, int64(2), second.ID)
	assert.Empty(t, second.RelatedTypeCounts)
	require.Len(t, second.RelatedToPersons, 1)
}

func TestRelatedPersonsReportFiltered(t *testing.T) {
	srv := newReportServer(t)

	rr := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/reports/related-persons?search=nino"))
	testutil.AssertStatusOK(t, rr)

	resp := testutil.UnmarshalResponse[report.Response](t, rr)
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Nino", resp.Items[0].FirstName)
}

func TestRelatedPersonsReportBadSort(t *testing.T) {
	srv := newReportServer(t)

	rr := testutil.DoRequest(srv, testutil.NewRequest(t, http.MethodGet, "/reports/related-persons?sort_by=salary"))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
}
