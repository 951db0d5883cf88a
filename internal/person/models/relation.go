package models

import "time"

// PersonRelation is a directed, typed edge from PersonID to RelatedPersonID.
// The pair is the identity: at most one edge exists per ordered pair, and
// PersonID never equals RelatedPersonID. A single edge is surfaced from both
// endpoints: the source lists it under RelatedPersons, the target under
// RelatedToPersons.
type PersonRelation struct {
	PersonID        int64       `json:"person_id"`
	RelatedPersonID int64       `json:"related_person_id"`
	Type            RelatedType `json:"type"`
	CreatedDate     time.Time   `json:"created_date"`
}

// Touches reports whether the edge references the given person on either end.
func (r PersonRelation) Touches(personID int64) bool {
	return r.PersonID == personID || r.RelatedPersonID == personID
}
