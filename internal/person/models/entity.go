package models

import "time"

// DisplayDateLayout is the projection format for birth dates (dd-MM-yyyy).
const DisplayDateLayout = "02-01-2006"

// Entity carries the surrogate key and tracking timestamps shared by all
// stored aggregates. IDs are assigned by the store on insert.
type Entity struct {
	ID          int64      `json:"id"`
	CreatedDate time.Time  `json:"created_date"`
	UpdatedDate *time.Time `json:"updated_date,omitempty"`
}

// Touch records a mutation timestamp.
func (e *Entity) Touch(now time.Time) {
	e.UpdatedDate = &now
}
