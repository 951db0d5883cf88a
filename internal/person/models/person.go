package models

import (
	"time"
)

// Person is the aggregate root of the directory.
//
// Invariants:
//   - FirstName/LastName are 2-50 characters in a single script (Latin or
//     Georgian letters plus whitespace, never mixed)
//   - PersonalID is exactly 11 digits and unique across all persons
//   - BirthDate corresponds to an age of at least 18 at creation time
//   - at least one owned PhoneNumber exists after create and after update
//
// Relation edges are not part of the aggregate: they live in their own store
// keyed (PersonID, RelatedPersonID) and are loaded by query, so deleting a
// person must explicitly sever incident edges in the same transaction.
type Person struct {
	Entity
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	PersonalID   string        `json:"personal_id"`
	BirthDate    time.Time     `json:"birth_date"`
	CityID       int64         `json:"city_id"`
	Gender       Gender        `json:"gender"`
	Image        string        `json:"image,omitempty"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// PhoneNumber is owned exclusively by one Person; deleting the person deletes
// its numbers.
type PhoneNumber struct {
	ID          int64           `json:"id"`
	PersonID    int64           `json:"person_id"`
	Number      string          `json:"number"`
	Type        PhoneNumberType `json:"type"`
	CreatedDate time.Time       `json:"created_date"`
}

// NewPerson constructs a Person from a validated create request.
func NewPerson(req *CreatePersonRequest, now time.Time) *Person {
	p := &Person{
		Entity:     Entity{CreatedDate: now},
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		PersonalID: req.PersonalID,
		BirthDate:  req.BirthDate.Time,
		CityID:     req.CityID,
		Gender:     req.Gender,
	}
	for _, m := range req.PhoneNumbers {
		p.PhoneNumbers = append(p.PhoneNumbers, PhoneNumber{
			Number:      m.Number,
			Type:        m.Type,
			CreatedDate: now,
		})
	}
	return p
}

// ApplyUpdate overwrites the mutable fields from a validated update request.
// Phone numbers carrying the id of an existing owned number are updated in
// place; numbers without an id are added. Numbers referencing unknown ids are
// ignored.
func (p *Person) ApplyUpdate(req *UpdatePersonRequest, now time.Time) {
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.CityID = req.CityID
	p.Touch(now)

	for _, m := range req.PhoneNumbers {
		if m.ID == 0 {
			p.PhoneNumbers = append(p.PhoneNumbers, PhoneNumber{
				PersonID:    p.ID,
				Number:      m.Number,
				Type:        m.Type,
				CreatedDate: now,
			})
			continue
		}
		for i := range p.PhoneNumbers {
			if p.PhoneNumbers[i].ID == m.ID {
				p.PhoneNumbers[i].Number = m.Number
				p.PhoneNumbers[i].Type = m.Type
				break
			}
		}
	}
}

// ImageName derives the deterministic blob name for the person's photo.
func (p *Person) ImageName() string {
	return imageFileName(p.FirstName, p.LastName, p.ID)
}

// Age computes full years between the birth date and now.
func (p *Person) Age(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
