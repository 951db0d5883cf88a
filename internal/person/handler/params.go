package handler

import (
	"net/url"
	"strconv"
	"time"

	"personsdir/internal/i18n"
	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	dErrors "personsdir/pkg/domain-errors"
)

// ListParams is the decoded query string of the list and report endpoints.
type ListParams struct {
	Filter          query.Filter
	Page            query.Page
	RelatedType     models.RelatedType
	RelatedPersonID int64
}

// ParseListParams decodes filter, sort, and paging query parameters.
// Malformed numbers and dates are a bad request; invalid enum values and
// unknown sort fields are validation failures, so the caller can localize
// them like any other rule violation.
func ParseListParams(values url.Values) (*ListParams, error) {
	params := &ListParams{}
	fields := map[string]string{}

	params.Filter.SearchTerm = values.Get("search")
	params.Filter.PhoneNumber = values.Get("phone_number")

	if s := values.Get("gender"); s != "" {
		gender, err := models.ParseGender(s)
		if err != nil {
			fields["gender"] = i18n.GenderInvalidValue
		} else {
			params.Filter.Gender = gender
		}
	}
	if s := values.Get("phone_number_type"); s != "" {
		numberType, err := models.ParsePhoneNumberType(s)
		if err != nil {
			fields["phone_number_type"] = i18n.PhoneNumberInvalidType
		} else {
			params.Filter.PhoneNumberType = numberType
		}
	}
	if s := values.Get("related_type"); s != "" {
		relatedType, err := models.ParseRelatedType(s)
		if err != nil {
			fields["related_type"] = i18n.InvalidRelatedTypeValue
		} else {
			params.RelatedType = relatedType
		}
	}

	var err error
	if params.Filter.BirthDateFrom, err = queryDate(values, "birth_date_from"); err != nil {
		return nil, err
	}
	if params.Filter.BirthDateTo, err = queryDate(values, "birth_date_to"); err != nil {
		return nil, err
	}
	if params.Filter.CityID, err = queryInt64(values, "city_id"); err != nil {
		return nil, err
	}
	if params.RelatedPersonID, err = queryInt64(values, "related_person_id"); err != nil {
		return nil, err
	}

	var page, pageSize int64
	if page, err = queryInt64(values, "page"); err != nil {
		return nil, err
	}
	if pageSize, err = queryInt64(values, "page_size"); err != nil {
		return nil, err
	}
	params.Page.Number = int(page)
	params.Page.Size = int(pageSize)

	if params.Page.SortBy, err = query.ParseSortField(values.Get("sort_by")); err != nil {
		return nil, err
	}
	params.Page.SortOrder = query.ParseSortOrder(values.Get("sort_order"))

	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}
	return params, nil
}

func queryInt64(values url.Values, key string) (int64, error) {
	s := values.Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s: %q", key, s)
	}
	return n, nil
}

func queryDate(values url.Values, key string) (time.Time, error) {
	s := values.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s: %q", key, s)
	}
	return t, nil
}
