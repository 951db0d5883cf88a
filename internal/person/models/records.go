package models

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

func imageFileName(first, last string, id int64) string {
	return fmt.Sprintf("%s_%s_%d.jpg", first, last, id)
}

// PhoneNumberRecord is the read projection of an owned phone number.
type PhoneNumberRecord struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
}

// RelatedPersonRecord is the read projection of a person on the far end of a
// relation edge, tagged with the edge type.
type RelatedPersonRecord struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PersonalID  string `json:"personal_id"`
	RelatedType string `json:"related_type"`
}

// PersonRecord is the read projection of a person. BirthDate is rendered with
// DisplayDateLayout and City with the request locale. RelatedPersons holds the
// far ends of outgoing edges, RelatedToPersons of incoming ones; both are only
// populated on the details view.
type PersonRecord struct {
	ID               int64                 `json:"id"`
	FirstName        string                `json:"first_name"`
	LastName         string                `json:"last_name"`
	Gender           string                `json:"gender"`
	PersonalID       string                `json:"personal_id"`
	BirthDate        string                `json:"birth_date"`
	Age              int                   `json:"age"`
	CityID           int64                 `json:"city_id"`
	City             string                `json:"city,omitempty"`
	Image            *string               `json:"image"`
	PhoneNumbers     []PhoneNumberRecord   `json:"phone_numbers"`
	RelatedPersons   []RelatedPersonRecord `json:"related_persons,omitempty"`
	RelatedToPersons []RelatedPersonRecord `json:"related_to_persons,omitempty"`
}

// ListPersonsResponse is one page of person records with the unpaged total.
type ListPersonsResponse struct {
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Items      []PersonRecord `json:"items"`
}

// NewPersonRecord projects a person for the given locale. City may be nil when
// the reference row is missing; Image stays null until a photo is uploaded.
func NewPersonRecord(p *Person, city *City, tag language.Tag, now time.Time) PersonRecord {
	rec := PersonRecord{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Gender:     p.Gender.String(),
		PersonalID: p.PersonalID,
		BirthDate:  p.BirthDate.Format(DisplayDateLayout),
		Age:        p.Age(now),
		CityID:     p.CityID,
	}
	if p.Image != "" {
		image := p.Image
		rec.Image = &image
	}
	if city != nil {
		rec.City = city.DisplayName(tag)
	}
	for _, n := range p.PhoneNumbers {
		rec.PhoneNumbers = append(rec.PhoneNumbers, PhoneNumberRecord{
			ID:     n.ID,
			Number: n.Number,
			Type:   n.Type.String(),
		})
	}
	return rec
}

// NewRelatedPersonRecord projects the far end of an edge.
func NewRelatedPersonRecord(p *Person, edgeType RelatedType) RelatedPersonRecord {
	return RelatedPersonRecord{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PersonalID:  p.PersonalID,
		RelatedType: edgeType.String(),
	}
}
