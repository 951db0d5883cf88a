package models

import (
	"fmt"
	"strings"
)

// Gender of a person. The string value doubles as the display string in
// projections.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender parses a case-insensitive gender value.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("invalid gender %q", s)
	}
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

func (g Gender) String() string { return string(g) }

// PhoneNumberType classifies a phone number.
type PhoneNumberType string

const (
	PhoneNumberMobile PhoneNumberType = "Mobile"
	PhoneNumberOffice PhoneNumberType = "Office"
	PhoneNumberHome   PhoneNumberType = "Home"
)

// ParsePhoneNumberType parses a case-insensitive phone number type.
func ParsePhoneNumberType(s string) (PhoneNumberType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mobile":
		return PhoneNumberMobile, nil
	case "office":
		return PhoneNumberOffice, nil
	case "home":
		return PhoneNumberHome, nil
	default:
		return "", fmt.Errorf("invalid phone number type %q", s)
	}
}

func (t PhoneNumberType) Valid() bool {
	return t == PhoneNumberMobile || t == PhoneNumberOffice || t == PhoneNumberHome
}

func (t PhoneNumberType) String() string { return string(t) }

// RelatedType classifies a relation edge between two persons.
type RelatedType string

const (
	RelatedParent  RelatedType = "Parent"
	RelatedSibling RelatedType = "Sibling"
	RelatedSpouse  RelatedType = "Spouse"
	RelatedFriend  RelatedType = "Friend"
)

// ParseRelatedType parses a case-insensitive relation type.
func ParseRelatedType(s string) (RelatedType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parent":
		return RelatedParent, nil
	case "sibling":
		return RelatedSibling, nil
	case "spouse":
		return RelatedSpouse, nil
	case "friend":
		return RelatedFriend, nil
	default:
		return "", fmt.Errorf("invalid related type %q", s)
	}
}

func (t RelatedType) Valid() bool {
	switch t {
	case RelatedParent, RelatedSibling, RelatedSpouse, RelatedFriend:
		return true
	}
	return false
}

func (t RelatedType) String() string { return string(t) }
