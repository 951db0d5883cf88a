// Package store seeds the reference and demo data the directory ships with.
package store

import (
	"context"
	"time"

	"personsdir/internal/person/models"
)

type cityWriter interface {
	Insert(ctx context.Context, c *models.City) error
}

type personWriter interface {
	Insert(ctx context.Context, p *models.Person) error
	FindByPersonalID(ctx context.Context, personalID string) (*models.Person, error)
}

// SeedCities installs the city reference rows. Inserts are idempotent, so
// re-running on startup is safe.
func SeedCities(ctx context.Context, cities cityWriter) error {
	now := time.Now()
	rows := []*models.City{
		{Entity: models.Entity{ID: 1, CreatedDate: now}, NameKa: "თბილისი", NameEn: "Tbilisi", Location: "41.7151,44.8271"},
		{Entity: models.Entity{ID: 2, CreatedDate: now}, NameKa: "ბათუმი", NameEn: "Batumi", Location: "41.6168,41.6367"},
		{Entity: models.Entity{ID: 3, CreatedDate: now}, NameKa: "ქუთაისი", NameEn: "Kutaisi", Location: "42.2679,42.6946"},
		{Entity: models.Entity{ID: 4, CreatedDate: now}, NameKa: "რუსთავი", NameEn: "Rustavi", Location: "41.5495,45.0368"},
	}
	for _, c := range rows {
		if err := cities.Insert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// SeedDemoPersons installs a demo person when the directory is empty, for
// local runs against the in-memory stores.
func SeedDemoPersons(ctx context.Context, persons personWriter) error {
	const demoPersonalID = "01010101123"
	if _, err := persons.FindByPersonalID(ctx, demoPersonalID); err == nil {
		return nil
	}

	now := time.Now()
	demo := &models.Person{
		Entity:     models.Entity{CreatedDate: now},
		FirstName:  "Giorgi",
		LastName:   "Khutsishvili",
		PersonalID: demoPersonalID,
		BirthDate:  time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		CityID:     1,
		Gender:     models.GenderMale,
		PhoneNumbers: []models.PhoneNumber{
			{Number: "599123456", Type: models.PhoneNumberMobile, CreatedDate: now},
		},
	}
	return persons.Insert(ctx, demo)
}
