package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/asaskevich/govalidator"

	"personsdir/internal/i18n"
	dErrors "personsdir/pkg/domain-errors"
)

// Date unmarshals calendar dates given as "2006-01-02" (RFC 3339 timestamps
// are accepted too and truncated to the date).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t.Truncate(24 * time.Hour)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// PhoneNumberModel is the phone number payload on person creation.
type PhoneNumberModel struct {
	Number string          `json:"number"`
	Type   PhoneNumberType `json:"type"`
}

// UpdatePhoneNumberModel additionally carries the id of the owned number to
// update in place; a zero id means the number is new.
type UpdatePhoneNumberModel struct {
	ID     int64           `json:"id"`
	Number string          `json:"number"`
	Type   PhoneNumberType `json:"type"`
}

// CreatePersonRequest is the command payload for creating a person.
type CreatePersonRequest struct {
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	PersonalID   string             `json:"personal_id"`
	BirthDate    Date               `json:"birth_date"`
	CityID       int64              `json:"city_id"`
	Gender       Gender             `json:"gender"`
	PhoneNumbers []PhoneNumberModel `json:"phone_numbers"`
}

// Validate normalizes the payload and checks every field rule, collecting a
// field -> message-key map so the boundary can report all violations at once.
func (r *CreatePersonRequest) Validate() error {
	fields := map[string]string{}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PersonalID = strings.TrimSpace(r.PersonalID)

	validateName(fields, "first_name", r.FirstName,
		i18n.FirstNameRequired, i18n.FirstNameInvalidLength, i18n.FirstNameInvalidAlphabets)
	validateName(fields, "last_name", r.LastName,
		i18n.LastNameRequired, i18n.LastNameInvalidLength, i18n.LastNameInvalidAlphabets)

	if !govalidator.IsNumeric(r.PersonalID) || len(r.PersonalID) != 11 {
		fields["personal_id"] = i18n.PersonalIDInvalidFormat
	}

	if gender, err := ParseGender(string(r.Gender)); err != nil {
		fields["gender"] = i18n.GenderInvalidValue
	} else {
		r.Gender = gender
	}

	if r.BirthDate.IsZero() {
		fields["birth_date"] = i18n.BirthDateRequired
	} else if r.BirthDate.After(time.Now().AddDate(-18, 0, 0)) {
		fields["birth_date"] = i18n.PersonMustBeAdult
	}

	if r.CityID <= 0 {
		fields["city_id"] = i18n.CityRequired
	}

	if len(r.PhoneNumbers) == 0 {
		fields["phone_numbers"] = i18n.AtLeastOnePhoneNumber
	}
	for i := range r.PhoneNumbers {
		validatePhone(fields, i, r.PhoneNumbers[i].Number, &r.PhoneNumbers[i].Type)
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// UpdatePersonRequest is the command payload for updating a person. The id
// comes from the route, not the body.
type UpdatePersonRequest struct {
	ID           int64                    `json:"-"`
	FirstName    string                   `json:"first_name"`
	LastName     string                   `json:"last_name"`
	CityID       int64                    `json:"city_id"`
	PhoneNumbers []UpdatePhoneNumberModel `json:"phone_numbers"`
}

func (r *UpdatePersonRequest) Validate() error {
	fields := map[string]string{}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	validateName(fields, "first_name", r.FirstName,
		i18n.FirstNameRequired, i18n.FirstNameInvalidLength, i18n.FirstNameInvalidAlphabets)
	validateName(fields, "last_name", r.LastName,
		i18n.LastNameRequired, i18n.LastNameInvalidLength, i18n.LastNameInvalidAlphabets)

	if r.CityID <= 0 {
		fields["city_id"] = i18n.CityRequired
	}

	if len(r.PhoneNumbers) == 0 {
		fields["phone_numbers"] = i18n.AtLeastOnePhoneNumber
	}
	for i := range r.PhoneNumbers {
		validatePhone(fields, i, r.PhoneNumbers[i].Number, &r.PhoneNumbers[i].Type)
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// CreateRelationRequest is the command payload for creating a relation edge.
// The source person id comes from the route.
type CreateRelationRequest struct {
	PersonID        int64       `json:"-"`
	RelatedPersonID int64       `json:"related_person_id"`
	Type            RelatedType `json:"type"`
}

func (r *CreateRelationRequest) Validate() error {
	fields := map[string]string{}

	if r.RelatedPersonID <= 0 {
		fields["related_person_id"] = i18n.RelatedPersonNotFoundByID
	}
	if relatedType, err := ParseRelatedType(string(r.Type)); err != nil {
		fields["type"] = i18n.InvalidRelatedTypeValue
	} else {
		r.Type = relatedType
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

func validateName(fields map[string]string, field, value, requiredKey, lengthKey, alphabetKey string) {
	if value == "" {
		fields[field] = requiredKey
		return
	}
	if !govalidator.StringLength(value, "2", "50") {
		fields[field] = lengthKey
		return
	}
	if !singleScriptName(value) {
		fields[field] = alphabetKey
	}
}

// singleScriptName accepts letters plus whitespace, all letters drawn from
// one script: exclusively Latin or exclusively Georgian.
func singleScriptName(s string) bool {
	var latin, georgian bool
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case unicode.Is(unicode.Latin, r):
			latin = true
		case unicode.Is(unicode.Georgian, r):
			georgian = true
		default:
			return false
		}
	}
	return !(latin && georgian)
}

func validatePhone(fields map[string]string, index int, number string, numberType *PhoneNumberType) {
	if !govalidator.StringLength(number, "4", "50") {
		fields[fmt.Sprintf("phone_numbers[%d].number", index)] = i18n.PhoneNumberInvalidLength
	}
	if parsed, err := ParsePhoneNumberType(string(*numberType)); err != nil {
		fields[fmt.Sprintf("phone_numbers[%d].type", index)] = i18n.PhoneNumberInvalidType
	} else {
		*numberType = parsed
	}
}
