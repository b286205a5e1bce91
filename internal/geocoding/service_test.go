package geocoding_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/geocoding"
)

type mockProvider struct {
	mu        sync.Mutex
	callCount int
	coords    map[string]geo.Coordinate
	err       error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Geocode(_ context.Context, address string) (geo.Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return geo.Coordinate{}, m.err
	}
	coord, ok := m.coords[address]
	if !ok {
		return geo.Coordinate{}, geocoding.ErrAddressNotFound
	}
	return coord, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func newService(t *testing.T, provider geocoding.Provider, size int) *geocoding.Service {
	t.Helper()
	svc, err := geocoding.NewService(geocoding.ServiceConfig{
		Provider:  provider,
		Logger:    zerolog.Nop(),
		CacheSize: size,
	})
	require.NoError(t, err)
	return svc
}

func TestServiceGeocode(t *testing.T) {
	ctx := context.Background()
	seoul := geo.Coordinate{Lat: 37.5663, Lon: 126.9779}

	t.Run("repeated queries hit the cache", func(t *testing.T) {
		provider := &mockProvider{coords: map[string]geo.Coordinate{"city hall": seoul}}
		svc := newService(t, provider, 8)

		for i := 0; i < 5; i++ {
			coord, err := svc.Geocode(ctx, "city hall")
			require.NoError(t, err)
			assert.Equal(t, seoul, coord)
		}
		assert.Equal(t, 1, provider.calls())
	})

	t.Run("not found is not cached", func(t *testing.T) {
		provider := &mockProvider{coords: map[string]geo.Coordinate{}}
		svc := newService(t, provider, 8)

		_, err := svc.Geocode(ctx, "nowhere")
		assert.ErrorIs(t, err, geocoding.ErrAddressNotFound)
		_, err = svc.Geocode(ctx, "nowhere")
		assert.ErrorIs(t, err, geocoding.ErrAddressNotFound)
		assert.Equal(t, 2, provider.calls())
	})

	t.Run("empty address", func(t *testing.T) {
		svc := newService(t, &mockProvider{}, 8)
		_, err := svc.Geocode(ctx, "")
		assert.ErrorIs(t, err, geocoding.ErrEmptyAddress)
	})

	t.Run("capacity bounds the cache", func(t *testing.T) {
		provider := &mockProvider{coords: map[string]geo.Coordinate{}}
		for i := 0; i < 10; i++ {
			provider.coords[fmt.Sprintf("addr-%d", i)] = geo.Coordinate{Lat: float64(i), Lon: float64(i)}
		}
		svc := newService(t, provider, 4)

		for i := 0; i < 10; i++ {
			_, err := svc.Geocode(ctx, fmt.Sprintf("addr-%d", i))
			require.NoError(t, err)
		}
		assert.Equal(t, 4, svc.CacheLen())
	})
}
