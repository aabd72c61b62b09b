package geocode

import (
	"context"
	"time"
)

// Repository defines the interface for geocode cache persistence.
type Repository interface {
	// Get retrieves the entry for a normalized address.
	// Returns ErrEntryNotFound if the address has not been cached.
	Get(ctx context.Context, address string) (*Entry, error)

	// Put inserts or replaces the entry for entry.Address.
	Put(ctx context.Context, entry *Entry) error

	// DeleteOlderThan removes entries last updated before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of cached entries.
	Count(ctx context.Context) (int, error)
}
