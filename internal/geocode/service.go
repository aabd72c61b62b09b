package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/routing"
)

// ServiceConfig holds configuration for the geocode service.
type ServiceConfig struct {
	// Geocoder resolves addresses that are not cached (required).
	Geocoder routing.Geocoder

	// Repository stores resolved addresses (required).
	Repository Repository

	// Provider is recorded on new entries.
	Provider string

	// TTL is how long an entry is trusted before it is re-resolved (default: 30 days).
	TTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves addresses through a persistent cache. It implements routing.Geocoder.
type Service struct {
	geocoder routing.Geocoder
	repo     Repository
	provider string
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

var _ routing.Geocoder = (*Service)(nil)

// NewService creates a new geocode service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &Service{
		geocoder: cfg.Geocoder,
		repo:     cfg.Repository,
		provider: cfg.Provider,
		ttl:      ttl,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Geocode returns the coordinate for address, consulting the cache first.
// Cache failures are logged and never fail the lookup.
func (s *Service) Geocode(ctx context.Context, address string) (routing.Coordinate, error) {
	key := NormalizeAddress(address)
	if key == "" {
		return routing.Coordinate{}, &routing.Error{
			Provider: s.provider,
			Code:     "EMPTY_ADDRESS",
			Message:  "address must not be empty",
			Err:      routing.ErrAddressNotFound,
		}
	}

	entry, err := s.repo.Get(ctx, key)
	switch {
	case err == nil && s.now().Sub(entry.UpdatedAt) < s.ttl:
		s.logger.Debug().Str("address", key).Msg("geocode cache hit")
		return entry.Coordinate, nil
	case err == nil:
		s.logger.Debug().Str("address", key).Time("updated_at", entry.UpdatedAt).Msg("geocode cache entry expired")
	case !errors.Is(err, ErrEntryNotFound):
		s.logger.Warn().Err(err).Str("address", key).Msg("geocode cache read failed")
	}

	coord, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return routing.Coordinate{}, err
	}

	now := s.now()
	if err := s.repo.Put(ctx, &Entry{
		Address:    key,
		Coordinate: coord,
		Provider:   s.provider,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		s.logger.Warn().Err(err).Str("address", key).Msg("geocode cache write failed")
	}

	return coord, nil
}

// Prune removes entries older than the TTL.
func (s *Service) Prune(ctx context.Context) (int, error) {
	removed, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("pruned geocode cache")
	}
	return removed, nil
}

// Size returns the number of cached addresses.
func (s *Service) Size(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
