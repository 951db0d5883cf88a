// Package relation persists the directed relation edges between persons. The
// ordered pair (PersonID, RelatedPersonID) is the edge identity.
package relation

import (
	"context"
	"sync"

	"personsdir/internal/person/models"
	"personsdir/pkg/platform/sentinel"
)

type edgeKey struct {
	personID  int64
	relatedID int64
}

// InMemory keeps relation edges in process memory.
type InMemory struct {
	mu    sync.RWMutex
	edges map[edgeKey]models.PersonRelation
}

func NewInMemory() *InMemory {
	return &InMemory{edges: make(map[edgeKey]models.PersonRelation)}
}

// Insert stores a new edge; a second edge for the same ordered pair yields
// sentinel.ErrConflict.
func (s *InMemory) Insert(_ context.Context, edge models.PersonRelation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{edge.PersonID, edge.RelatedPersonID}
	if _, taken := s.edges[key]; taken {
		return sentinel.ErrConflict
	}
	s.edges[key] = edge
	return nil
}

// Delete removes the edge for the ordered pair.
func (s *InMemory) Delete(_ context.Context, personID, relatedPersonID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{personID, relatedPersonID}
	if _, ok := s.edges[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *InMemory) Exists(_ context.Context, personID, relatedPersonID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[edgeKey{personID, relatedPersonID}]
	return ok, nil
}

// ListBySource returns edges whose source is personID.
func (s *InMemory) ListBySource(_ context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(func(e models.PersonRelation) bool { return e.PersonID == personID })
}

// ListByTarget returns edges whose target is personID.
func (s *InMemory) ListByTarget(_ context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(func(e models.PersonRelation) bool { return e.RelatedPersonID == personID })
}

// ListTouching returns edges referencing personID on either end.
func (s *InMemory) ListTouching(_ context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(func(e models.PersonRelation) bool { return e.Touches(personID) })
}

// ListByType returns every edge of the given relation type.
func (s *InMemory) ListByType(_ context.Context, edgeType models.RelatedType) ([]models.PersonRelation, error) {
	return s.list(func(e models.PersonRelation) bool { return e.Type == edgeType })
}

// ListBySources returns the outgoing edges of every given person in one call.
func (s *InMemory) ListBySources(_ context.Context, personIDs []int64) ([]models.PersonRelation, error) {
	wanted := make(map[int64]struct{}, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = struct{}{}
	}
	return s.list(func(e models.PersonRelation) bool {
		_, ok := wanted[e.PersonID]
		return ok
	})
}

// ListByTargets returns the incoming edges of every given person in one call.
func (s *InMemory) ListByTargets(_ context.Context, personIDs []int64) ([]models.PersonRelation, error) {
	wanted := make(map[int64]struct{}, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = struct{}{}
	}
	return s.list(func(e models.PersonRelation) bool {
		_, ok := wanted[e.RelatedPersonID]
		return ok
	})
}

// DeleteByPerson severs every edge touching the person and reports how many
// were removed.
func (s *InMemory) DeleteByPerson(_ context.Context, personID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, edge := range s.edges {
		if edge.Touches(personID) {
			delete(s.edges, key)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemory) list(match func(models.PersonRelation) bool) ([]models.PersonRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.PersonRelation{}
	for _, edge := range s.edges {
		if match(edge) {
			out = append(out, edge)
		}
	}
	return out, nil
}
