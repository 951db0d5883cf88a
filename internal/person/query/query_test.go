package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personsdir/internal/person/models"
	dErrors "personsdir/pkg/domain-errors"
)

func testPersons() []*models.Person {
	birth := func(y int) time.Time { return time.Date(y, 6, 15, 0, 0, 0, 0, time.UTC) }
	return []*models.Person{
		{
			Entity:     models.Entity{ID: 1, CreatedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			FirstName:  "Giorgi",
			LastName:   "Khutsishvili",
			PersonalID: "01010101123",
			BirthDate:  birth(1990),
			CityID:     1,
			Gender:     models.GenderMale,
			PhoneNumbers: []models.PhoneNumber{
				{Number: "599123456", Type: models.PhoneNumberMobile},
			},
		},
		{
			Entity:     models.Entity{ID: 2, CreatedDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			FirstName:  "Nino",
			LastName:   "Beridze",
			PersonalID: "02020202234",
			BirthDate:  birth(1985),
			CityID:     2,
			Gender:     models.GenderFemale,
			PhoneNumbers: []models.PhoneNumber{
				{Number: "322700100", Type: models.PhoneNumberOffice},
			},
		},
		{
			Entity:     models.Entity{ID: 3, CreatedDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
			FirstName:  "Nino",
			LastName:   "Abashidze",
			PersonalID: "03030303345",
			BirthDate:  birth(2000),
			CityID:     1,
			Gender:     models.GenderFemale,
			PhoneNumbers: []models.PhoneNumber{
				{Number: "599888777", Type: models.PhoneNumberMobile},
				{Number: "224455", Type: models.PhoneNumberHome},
			},
		},
	}
}

func ids(items []*models.Person) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestParseSortField(t *testing.T) {
	field, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByID, field)

	field, err = ParseSortField(" Birth_Date ")
	require.NoError(t, err)
	assert.Equal(t, SortByBirthDate, field)

	_, err = ParseSortField("shoe_size")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortDesc, ParseSortOrder("DESC"))
	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortAsc, ParseSortOrder(""))
	assert.Equal(t, SortAsc, ParseSortOrder("sideways"))
}

func TestFilter_Matches(t *testing.T) {
	persons := testPersons()

	t.Run("search term spans names and personal id", func(t *testing.T) {
		f := &Filter{SearchTerm: "  NINO "}
		f.Normalize()
		assert.False(t, f.Matches(persons[0]))
		assert.True(t, f.Matches(persons[1]))
		assert.True(t, f.Matches(persons[2]))

		f = &Filter{SearchTerm: "0101"}
		f.Normalize()
		assert.True(t, f.Matches(persons[0]))
		assert.False(t, f.Matches(persons[1]))
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		f := &Filter{Gender: models.GenderFemale, CityID: 1}
		f.Normalize()
		assert.False(t, f.Matches(persons[0]))
		assert.False(t, f.Matches(persons[1]))
		assert.True(t, f.Matches(persons[2]))
	})

	t.Run("phone filters match the same number", func(t *testing.T) {
		f := &Filter{PhoneNumber: "599", PhoneNumberType: models.PhoneNumberHome}
		f.Normalize()
		assert.False(t, f.Matches(persons[2]), "599 number is mobile, home number is 224455")

		f = &Filter{PhoneNumber: "2244", PhoneNumberType: models.PhoneNumberHome}
		f.Normalize()
		assert.True(t, f.Matches(persons[2]))
	})

	t.Run("birth date range", func(t *testing.T) {
		f := &Filter{
			BirthDateFrom: time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC),
			BirthDateTo:   time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		assert.True(t, f.Matches(persons[0]))
		assert.False(t, f.Matches(persons[1]))
		assert.False(t, f.Matches(persons[2]))
	})

	t.Run("id set restriction", func(t *testing.T) {
		f := &Filter{IDIn: map[int64]struct{}{2: {}}}
		assert.False(t, f.Matches(persons[0]))
		assert.True(t, f.Matches(persons[1]))

		empty := &Filter{IDIn: map[int64]struct{}{}}
		assert.False(t, empty.Matches(persons[0]), "empty set matches nothing")

		unrestricted := &Filter{}
		assert.True(t, unrestricted.Matches(persons[0]), "nil set matches everything")
	})
}

func TestApply_SortAndPage(t *testing.T) {
	persons := testPersons()

	t.Run("default sort is id ascending", func(t *testing.T) {
		res := Apply(persons, &Filter{}, &Page{})
		assert.Equal(t, 3, res.TotalCount)
		assert.Equal(t, []int64{1, 2, 3}, ids(res.Items))
	})

	t.Run("ties broken by id ascending in both directions", func(t *testing.T) {
		res := Apply(persons, &Filter{}, &Page{SortBy: SortByFirstName})
		assert.Equal(t, []int64{1, 2, 3}, ids(res.Items))

		res = Apply(persons, &Filter{}, &Page{SortBy: SortByFirstName, SortOrder: SortDesc})
		assert.Equal(t, []int64{2, 3, 1}, ids(res.Items))
	})

	t.Run("sort by birth date descending", func(t *testing.T) {
		res := Apply(persons, &Filter{}, &Page{SortBy: SortByBirthDate, SortOrder: SortDesc})
		assert.Equal(t, []int64{3, 1, 2}, ids(res.Items))
	})

	t.Run("pages partition the sorted set", func(t *testing.T) {
		page1 := Apply(persons, &Filter{}, &Page{Number: 1, Size: 2})
		page2 := Apply(persons, &Filter{}, &Page{Number: 2, Size: 2})
		assert.Equal(t, 3, page1.TotalCount)
		assert.Equal(t, []int64{1, 2}, ids(page1.Items))
		assert.Equal(t, []int64{3}, ids(page2.Items))
	})

	t.Run("page past the end is empty not nil", func(t *testing.T) {
		res := Apply(persons, &Filter{}, &Page{Number: 9, Size: 25})
		assert.Equal(t, 3, res.TotalCount)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("out of range paging clamps to defaults", func(t *testing.T) {
		page := &Page{Number: -4, Size: 0}
		res := Apply(persons, &Filter{}, page)
		assert.Equal(t, DefaultPage, page.Number)
		assert.Equal(t, DefaultPageSize, page.Size)
		assert.Len(t, res.Items, 3)
	})

	t.Run("total count ignores paging", func(t *testing.T) {
		res := Apply(persons, &Filter{Gender: models.GenderFemale}, &Page{Number: 1, Size: 1})
		assert.Equal(t, 2, res.TotalCount)
		assert.Len(t, res.Items, 1)
	})
}
