// Package i18n resolves message keys to localized display strings. The locale
// is always an explicit parameter; request handling never touches any global
// culture state.
package i18n

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	dErrors "personsdir/pkg/domain-errors"
)

// Message keys shared between services (which only raise keys) and the
// catalog (which owns the prose).
const (
	FirstNameRequired            = "FirstNameRequired"
	FirstNameInvalidLength       = "FirstNameInvalidLength"
	FirstNameInvalidAlphabets    = "FirstNameInvalidAlphabets"
	LastNameRequired             = "LastNameRequired"
	LastNameInvalidLength        = "LastNameInvalidLength"
	LastNameInvalidAlphabets     = "LastNameInvalidAlphabets"
	GenderInvalidValue           = "GenderInvalidValue"
	PersonalIDInvalidFormat      = "PersonalIdMustContainExactly11NumericCharacters"
	PersonMustBeAdult            = "PersonMustBeAtLeast18YearsOldToRegister"
	BirthDateRequired            = "BirthDateRequired"
	CityRequired                 = "CityRequired"
	AtLeastOnePhoneNumber        = "AtLeastOnePhoneNumberMustBeProvided"
	PhoneNumberInvalidLength     = "NumberInvalidLength"
	PhoneNumberInvalidType       = "NumberInvalidType"
	FileSizeIsTooLarge           = "FileSizeIsTooLarge"
	InvalidFileType              = "InvalidFileType"
	NoFileIsSelected             = "NoFileIsSelected"
	PersonNotFoundByID           = "PersonNotFoundById"
	PersonalIDAlreadyExists      = "PersonWithPersonalIdAlreadyExists"
	RelatedPersonNotFoundByID    = "RelatedPersonNotFoundById"
	RelationNotFound             = "DeleteRelatedPersonFailed"
	RelationToSelf               = "RelationToSelfNotAllowed"
	RelationAlreadyExists        = "RelationAlreadyExists"
	InvalidSortField             = "InvalidSortField"
	InvalidRelatedTypeValue      = "RelatedTypeInvalidValue"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		FirstNameRequired:         "First name is required.",
		FirstNameInvalidLength:    "First name length should be between 2 and 50 characters.",
		FirstNameInvalidAlphabets: "First name should not contain both Latin and Georgian alphabets.",
		LastNameRequired:          "Last name is required.",
		LastNameInvalidLength:     "Last name length should be between 2 and 50 characters.",
		LastNameInvalidAlphabets:  "Last name should not contain both Latin and Georgian alphabets.",
		GenderInvalidValue:        "Gender should be either Male or Female.",
		PersonalIDInvalidFormat:   "PersonalId must contain exactly 11 numeric characters.",
		PersonMustBeAdult:         "Person must be at least 18 years old to register.",
		BirthDateRequired:         "Birth date is required.",
		CityRequired:              "City is required.",
		AtLeastOnePhoneNumber:     "At least one phone number must be provided.",
		PhoneNumberInvalidLength:  "Number length should be between 4 and 50 characters.",
		PhoneNumberInvalidType:    "NumberType should be either Mobile, Office or Home.",
		FileSizeIsTooLarge:        "File size must not exceed 2 MiB.",
		InvalidFileType:           "Only .jpg, .jpeg and .png files are allowed.",
		NoFileIsSelected:          "No file is selected.",
		PersonNotFoundByID:        "Person not found by Id: %d.",
		PersonalIDAlreadyExists:   "Person with PersonalId: %s already exists.",
		RelatedPersonNotFoundByID: "Related person not found by Id: %d.",
		RelationNotFound:          "Relation between persons %d and %d does not exist.",
		RelationToSelf:            "A person cannot be related to themselves.",
		RelationAlreadyExists:     "Relation between persons %d and %d already exists.",
		InvalidSortField:          "Unknown sort field: %q.",
		InvalidRelatedTypeValue:   "RelatedType should be Parent, Sibling, Spouse or Friend.",
	},
	language.Georgian: {
		FirstNameRequired:         "სახელი სავალდებულოა.",
		FirstNameInvalidLength:    "სახელის სიგრძე უნდა იყოს 2-დან 50 სიმბოლომდე.",
		FirstNameInvalidAlphabets: "სახელი არ უნდა შეიცავდეს ერთდროულად ლათინურ და ქართულ ასოებს.",
		LastNameRequired:          "გვარი სავალდებულოა.",
		LastNameInvalidLength:     "გვარის სიგრძე უნდა იყოს 2-დან 50 სიმბოლომდე.",
		LastNameInvalidAlphabets:  "გვარი არ უნდა შეიცავდეს ერთდროულად ლათინურ და ქართულ ასოებს.",
		GenderInvalidValue:        "სქესი უნდა იყოს Male ან Female.",
		PersonalIDInvalidFormat:   "პირადი ნომერი უნდა შეიცავდეს ზუსტად 11 ციფრს.",
		PersonMustBeAdult:         "რეგისტრაციისთვის პირი უნდა იყოს მინიმუმ 18 წლის.",
		BirthDateRequired:         "დაბადების თარიღი სავალდებულოა.",
		CityRequired:              "ქალაქი სავალდებულოა.",
		AtLeastOnePhoneNumber:     "უნდა მიეთითოს მინიმუმ ერთი ტელეფონის ნომერი.",
		PhoneNumberInvalidLength:  "ნომრის სიგრძე უნდა იყოს 4-დან 50 სიმბოლომდე.",
		PhoneNumberInvalidType:    "ნომრის ტიპი უნდა იყოს Mobile, Office ან Home.",
		FileSizeIsTooLarge:        "ფაილის ზომა არ უნდა აღემატებოდეს 2 მეგაბაიტს.",
		InvalidFileType:           "დასაშვებია მხოლოდ .jpg, .jpeg და .png ფაილები.",
		NoFileIsSelected:          "ფაილი არ არის არჩეული.",
		PersonNotFoundByID:        "პირი ვერ მოიძებნა Id-ით: %d.",
		PersonalIDAlreadyExists:   "პირი პირადი ნომრით: %s უკვე არსებობს.",
		RelatedPersonNotFoundByID: "დაკავშირებული პირი ვერ მოიძებნა Id-ით: %d.",
		RelationNotFound:          "კავშირი პირებს %d და %d შორის არ არსებობს.",
		RelationToSelf:            "პირი ვერ დაუკავშირდება საკუთარ თავს.",
		RelationAlreadyExists:     "კავშირი პირებს %d და %d შორის უკვე არსებობს.",
		InvalidSortField:          "უცნობი სორტირების ველი: %q.",
		InvalidRelatedTypeValue:   "კავშირის ტიპი უნდა იყოს Parent, Sibling, Spouse ან Friend.",
	},
}

// Catalog negotiates locales and formats message keys into display strings.
type Catalog struct {
	matcher  language.Matcher
	fallback language.Tag
}

// NewCatalog builds the catalog with the supported locales. The first
// supported tag is the fallback for unmatched Accept-Language values.
func NewCatalog(fallback language.Tag) *Catalog {
	if _, ok := messages[fallback]; !ok {
		fallback = language.English
	}
	return &Catalog{
		matcher:  language.NewMatcher([]language.Tag{language.English, language.Georgian}),
		fallback: fallback,
	}
}

// Negotiate resolves an Accept-Language header value to a supported locale.
func (c *Catalog) Negotiate(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, index, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.fallback
	}
	return []language.Tag{language.English, language.Georgian}[index]
}

// Format resolves a message key for the given locale and formats it with args.
// Unknown keys fall back to English, then to the key itself.
func (c *Catalog) Format(tag language.Tag, key string, args ...any) string {
	table, ok := messages[tag]
	if !ok {
		table = messages[language.English]
	}
	template, ok := table[key]
	if !ok {
		template, ok = messages[language.English][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// LocalizeError rewrites a keyed domain error's message (and any field
// messages) into the given locale. Non-domain errors pass through untouched.
func (c *Catalog) LocalizeError(tag language.Tag, err error) error {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}

	localized := *domainErr
	if domainErr.Key != "" {
		localized.Message = c.Format(tag, domainErr.Key, domainErr.Args...)
	}
	if len(domainErr.Fields) > 0 {
		fields := make(map[string]string, len(domainErr.Fields))
		for field, key := range domainErr.Fields {
			fields[field] = c.Format(tag, key)
		}
		localized.Fields = fields
	}
	return &localized
}
