// Package city persists the city reference data. Rows are seeded at startup
// and immutable afterwards, so reads dominate and a cache in front of the
// PostgreSQL store is safe.
package city

import (
	"context"
	"sort"
	"sync"

	"personsdir/internal/person/models"
	"personsdir/pkg/platform/sentinel"
)

// InMemory keeps the city table in process memory.
type InMemory struct {
	mu     sync.RWMutex
	cities map[int64]*models.City
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{cities: make(map[int64]*models.City)}
}

// Insert stores a city, assigning an id when absent.
func (s *InMemory) Insert(_ context.Context, c *models.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	cp := *c
	s.cities[c.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cities[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// List returns every city ordered by id.
func (s *InMemory) List(_ context.Context) ([]*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.City, 0, len(s.cities))
	for _, c := range s.cities {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
