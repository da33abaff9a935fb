package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/filmorate/backend/internal/models"
)

// Entity is a record that a MemoryStore can hold.
type Entity[T any] interface {
	EntityID() int64
	WithEntityID(id int64) T
	Clone() T
}

// MemoryStore keeps entities in a map keyed by a store-assigned identifier.
// Identifiers start at 1 and are never reused. Every read and write copies
// the entity so callers never share state with the store.
type MemoryStore[T Entity[T]] struct {
	mu     sync.RWMutex
	items  map[int64]T
	nextID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore[T Entity[T]]() *MemoryStore[T] {
	return &MemoryStore[T]{items: make(map[int64]T), nextID: 1}
}

// Add assigns the next identifier to entity and stores it. Any identifier
// already set on entity is ignored.
func (s *MemoryStore[T]) Add(_ context.Context, entity T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := entity.WithEntityID(s.nextID).Clone()
	s.nextID++
	s.items[stored.EntityID()] = stored
	return stored.Clone(), nil
}

// Update replaces the stored entity with the same identifier.
func (s *MemoryStore[T]) Update(_ context.Context, entity T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.EntityID()
	if _, ok := s.items[id]; !ok {
		var zero T
		return zero, ErrNotFound
	}
	s.items[id] = entity.Clone()
	return entity.Clone(), nil
}

// Get returns the entity with the given identifier or ErrNotFound.
func (s *MemoryStore[T]) Get(_ context.Context, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return entity.Clone(), nil
}

// List returns a snapshot of every entity ordered by identifier.
func (s *MemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	out := make([]T, 0, len(s.items))
	for _, entity := range s.items {
		out = append(out, entity.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out, nil
}

// Delete removes the entity if present.
func (s *MemoryStore[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

var _ FilmRepository = (*MemoryStore[models.Film])(nil)
var _ UserRepository = (*MemoryStore[models.User])(nil)
