package weather

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/geo"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache observations (default: 10 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors
	// (default: 1 hour).
	StaleIfErrorTTL time.Duration
}

// Service provides weather observations with per-grid-cell caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	cache       map[geo.GridCell]*cachedObservation
	lastCleanup time.Time
}

type cachedObservation struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 1 * time.Hour
	}
	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[geo.GridCell]*cachedObservation),
	}
}

// CurrentConditions returns the observation for a coordinate's grid cell,
// cached per cell.
func (s *Service) CurrentConditions(ctx context.Context, coord geo.Coordinate) (*Observation, error) {
	if !coord.Valid() {
		return nil, ErrInvalidCoordinates
	}

	cell := geo.WeatherGridCell(coord)

	s.mu.RLock()
	if cached, ok := s.cache[cell]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.observation, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, cell)
}

// IsRaining resolves the rain signal for a coordinate. This is the
// fail-open entry point for evaluations: any provider or cache failure
// yields false instead of an error.
func (s *Service) IsRaining(ctx context.Context, coord geo.Coordinate) bool {
	obs, err := s.CurrentConditions(ctx, coord)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", coord.Lat).
			Float64("lon", coord.Lon).
			Msg("weather unavailable, assuming no rain")
		return false
	}
	return obs.Raining
}

func (s *Service) fetch(ctx context.Context, cell geo.GridCell) (*Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if cached, ok := s.cache[cell]; ok && time.Now().Before(cached.expiresAt) {
		return cached.observation, nil
	}

	obs, err := s.provider.CurrentConditions(ctx, cell)
	if err != nil {
		s.logger.Error().Err(err).
			Int("nx", cell.NX).
			Int("ny", cell.NY).
			Str("provider", s.provider.Name()).
			Msg("failed to fetch weather")

		if cached, ok := s.cache[cell]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale weather data due to provider error")
				return cached.observation, nil
			}
		}
		return nil, ErrProviderUnavailable
	}

	now := time.Now()
	s.cache[cell] = &cachedObservation{
		observation: obs,
		fetchedAt:   now,
		expiresAt:   now.Add(s.cacheTTL),
	}
	s.cleanupIfNeeded(now)

	return obs, nil
}

func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < 5*time.Minute {
		return
	}
	s.lastCleanup = now
	for cell, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, cell)
		}
	}
}

// InvalidateCache clears all cached observations.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[geo.GridCell]*cachedObservation)
}
