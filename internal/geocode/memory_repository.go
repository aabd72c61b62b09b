package geocode

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Entries are lost on restart; use PostgresRepository to share a cache across instances.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory geocode repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves the entry for a normalized address.
func (r *InMemoryRepository) Get(_ context.Context, address string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[address]
	if !ok {
		return nil, ErrEntryNotFound
	}

	cpy := *e
	return &cpy, nil
}

// Put inserts or replaces an entry, keeping the original CreatedAt.
func (r *InMemoryRepository) Put(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *entry
	if existing, ok := r.entries[entry.Address]; ok {
		cpy.CreatedAt = existing.CreatedAt
	}
	r.entries[entry.Address] = &cpy
	return nil
}

// DeleteOlderThan removes entries last updated before cutoff.
func (r *InMemoryRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for address, e := range r.entries {
		if e.UpdatedAt.Before(cutoff) {
			delete(r.entries, address)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of cached entries.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}
