// Package geocode caches address lookups in front of a routing.Geocoder.
package geocode

import (
	"errors"
	"strings"
	"time"

	"github.com/eldroute/eldroute/internal/routing"
)

// ErrEntryNotFound is returned by repositories when an address is not cached.
var ErrEntryNotFound = errors.New("geocode entry not found")

// Entry is a cached geocoding result.
type Entry struct {
	Address    string // Normalized form, see NormalizeAddress
	Coordinate routing.Coordinate
	Provider   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeAddress trims, collapses internal whitespace and lower-cases an
// address so that trivially different spellings share a cache entry.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
