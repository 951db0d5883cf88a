// Package query composes filtered, sorted, paged views over the person
// collection. Sort fields are a fixed compile-time mapping; there is no
// reflection over field names and unknown names are rejected loudly.
package query

import (
	"sort"
	"strings"
	"time"

	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	dErrors "personsdir/pkg/domain-errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// SortOrder is the sort direction. Ascending is the zero value.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder parses a case-insensitive direction, defaulting to ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// SortField is a sortable person attribute.
type SortField string

const (
	SortByID          SortField = "id"
	SortByFirstName   SortField = "first_name"
	SortByLastName    SortField = "last_name"
	SortByPersonalID  SortField = "personal_id"
	SortByBirthDate   SortField = "birth_date"
	SortByCreatedDate SortField = "created_date"
)

// comparators maps each sortable field to its ascending less-than. Ties are
// always broken by id ascending so pagination is deterministic.
var comparators = map[SortField]func(a, b *models.Person) bool{
	SortByID:          func(a, b *models.Person) bool { return a.ID < b.ID },
	SortByFirstName:   func(a, b *models.Person) bool { return foldLess(a.FirstName, b.FirstName) },
	SortByLastName:    func(a, b *models.Person) bool { return foldLess(a.LastName, b.LastName) },
	SortByPersonalID:  func(a, b *models.Person) bool { return a.PersonalID < b.PersonalID },
	SortByBirthDate:   func(a, b *models.Person) bool { return a.BirthDate.Before(b.BirthDate) },
	SortByCreatedDate: func(a, b *models.Person) bool { return a.CreatedDate.Before(b.CreatedDate) },
}

func foldLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// ParseSortField resolves a request sort name. Empty defaults to id; unknown
// names are a validation error, never a silent fallback.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByID, nil
	}
	field := SortField(s)
	if _, ok := comparators[field]; !ok {
		return "", dErrors.NewKeyed(dErrors.CodeValidation, i18n.InvalidSortField, s)
	}
	return field, nil
}

// Filter is the conjunctive predicate set for listing persons. Zero-valued
// members do not constrain the result. IDIn, when non-nil, restricts matches
// to the given id set; callers use it to pre-resolve relation-derived
// constraints so the store never joins against the edge collection.
type Filter struct {
	SearchTerm      string
	Gender          models.Gender
	BirthDateFrom   time.Time
	BirthDateTo     time.Time
	PhoneNumber     string
	PhoneNumberType models.PhoneNumberType
	CityID          int64
	IDIn            map[int64]struct{}
}

// Normalize trims and case-folds free-text members.
func (f *Filter) Normalize() {
	f.SearchTerm = strings.ToLower(strings.TrimSpace(f.SearchTerm))
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
}

// Matches evaluates the full conjunction against one person.
func (f *Filter) Matches(p *models.Person) bool {
	if f.SearchTerm != "" {
		if !strings.Contains(strings.ToLower(p.FirstName), f.SearchTerm) &&
			!strings.Contains(strings.ToLower(p.LastName), f.SearchTerm) &&
			!strings.Contains(p.PersonalID, f.SearchTerm) {
			return false
		}
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if !f.BirthDateFrom.IsZero() && p.BirthDate.Before(f.BirthDateFrom) {
		return false
	}
	if !f.BirthDateTo.IsZero() && p.BirthDate.After(f.BirthDateTo) {
		return false
	}
	if f.CityID != 0 && p.CityID != f.CityID {
		return false
	}
	if f.PhoneNumber != "" || f.PhoneNumberType != "" {
		if !f.matchesPhone(p) {
			return false
		}
	}
	if f.IDIn != nil {
		if _, ok := f.IDIn[p.ID]; !ok {
			return false
		}
	}
	return true
}

func (f *Filter) matchesPhone(p *models.Person) bool {
	for _, n := range p.PhoneNumbers {
		if f.PhoneNumber != "" && !strings.Contains(n.Number, f.PhoneNumber) {
			continue
		}
		if f.PhoneNumberType != "" && n.Type != f.PhoneNumberType {
			continue
		}
		return true
	}
	return false
}

// Page holds validated paging and sorting parameters.
type Page struct {
	Number    int
	Size      int
	SortBy    SortField
	SortOrder SortOrder
}

// Clamp folds out-of-range paging values back to the documented defaults and
// fills a zero sort field with id.
func (p *Page) Clamp() {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = SortByID
	}
}

// Offset is the number of matching rows preceding the requested page.
func (p *Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Less is the full comparison for the page's sort: the chosen field in the
// chosen direction, then id ascending.
func (p *Page) Less(a, b *models.Person) bool {
	less := comparators[p.SortBy]
	switch {
	case less(a, b):
		return p.SortOrder != SortDesc
	case less(b, a):
		return p.SortOrder == SortDesc
	default:
		return a.ID < b.ID
	}
}

// Result is one page of persons plus the unpaged match count.
type Result struct {
	TotalCount int
	Items      []*models.Person
}

// Apply runs the filter, sort, and paging pipeline over an in-memory
// collection. The postgres store pushes the same semantics into SQL; this path
// serves the memory store and keeps the two behaviors checkable against each
// other.
func Apply(persons []*models.Person, filter *Filter, page *Page) *Result {
	filter.Normalize()
	page.Clamp()

	matched := make([]*models.Person, 0, len(persons))
	for _, p := range persons {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return page.Less(matched[i], matched[j]) })

	res := &Result{TotalCount: len(matched), Items: []*models.Person{}}
	start := page.Offset()
	if start >= len(matched) {
		return res
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	res.Items = matched[start:end]
	return res
}
