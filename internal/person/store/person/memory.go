// Package person persists the person aggregate. The in-memory implementation
// backs tests and local runs; PostgreSQL is the production path.
package person

import (
	"context"
	"strings"
	"sync"

	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	"personsdir/pkg/platform/sentinel"
)

// InMemory keeps person aggregates in process memory. All reads and writes
// operate on deep copies so callers never alias store state.
type InMemory struct {
	mu           sync.RWMutex
	persons      map[int64]*models.Person
	byPersonalID map[string]int64
	nextID       int64
	nextPhoneID  int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		persons:      make(map[int64]*models.Person),
		byPersonalID: make(map[string]int64),
	}
}

func clonePerson(p *models.Person) *models.Person {
	cp := *p
	if p.UpdatedDate != nil {
		updated := *p.UpdatedDate
		cp.UpdatedDate = &updated
	}
	cp.PhoneNumbers = append([]models.PhoneNumber(nil), p.PhoneNumbers...)
	return &cp
}

// Insert stores a new person, assigning the person and phone number ids.
// A taken personal id yields sentinel.ErrConflict.
func (s *InMemory) Insert(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byPersonalID[p.PersonalID]; taken {
		return sentinel.ErrConflict
	}

	s.nextID++
	p.ID = s.nextID
	for i := range p.PhoneNumbers {
		s.nextPhoneID++
		p.PhoneNumbers[i].ID = s.nextPhoneID
		p.PhoneNumbers[i].PersonID = p.ID
	}

	s.persons[p.ID] = clonePerson(p)
	s.byPersonalID[p.PersonalID] = p.ID
	return nil
}

// Update replaces the stored aggregate, assigning ids to phone numbers added
// by the update.
func (s *InMemory) Update(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for i := range p.PhoneNumbers {
		if p.PhoneNumbers[i].ID == 0 {
			s.nextPhoneID++
			p.PhoneNumbers[i].ID = s.nextPhoneID
			p.PhoneNumbers[i].PersonID = p.ID
		}
	}
	s.persons[p.ID] = clonePerson(p)
	return nil
}

// SetImage records the URL the person's uploaded photo is served from.
func (s *InMemory) SetImage(_ context.Context, id int64, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Image = image
	return nil
}

// Delete removes the person and, through aggregate ownership, its phone
// numbers.
func (s *InMemory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPersonalID, p.PersonalID)
	delete(s.persons, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePerson(p), nil
}

func (s *InMemory) FindByPersonalID(_ context.Context, personalID string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPersonalID[strings.TrimSpace(personalID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePerson(s.persons[id]), nil
}

// FindByIDs loads the given persons, skipping unknown ids.
func (s *InMemory) FindByIDs(_ context.Context, ids []int64) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.persons[id]; ok {
			out = append(out, clonePerson(p))
		}
	}
	return out, nil
}

// List applies the query pipeline over the whole collection.
func (s *InMemory) List(_ context.Context, filter *query.Filter, page *query.Page) (*query.Result, error) {
	s.mu.RLock()
	all := make([]*models.Person, 0, len(s.persons))
	for _, p := range s.persons {
		all = append(all, clonePerson(p))
	}
	s.mu.RUnlock()

	return query.Apply(all, filter, page), nil
}
