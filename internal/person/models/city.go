package models

import "golang.org/x/text/language"

// City is seeded reference data, immutable after initialization.
type City struct {
	Entity
	NameKa   string `json:"name_ka"`
	NameEn   string `json:"name_en"`
	Location string `json:"location"`
}

// DisplayName returns the city name for the given locale.
func (c *City) DisplayName(tag language.Tag) string {
	if tag == language.Georgian && c.NameKa != "" {
		return c.NameKa
	}
	return c.NameEn
}
