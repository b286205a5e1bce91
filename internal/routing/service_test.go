package routing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/routing"
)

type mockProvider struct {
	coords []geo.Coordinate
	err    error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Polyline(context.Context, geo.Coordinate, geo.Coordinate, eta.Mode) ([]geo.Coordinate, error) {
	return m.coords, m.err
}

func TestPolyline(t *testing.T) {
	ctx := context.Background()
	start := geo.Coordinate{Lat: 37.5759, Lon: 126.9769}
	end := geo.Coordinate{Lat: 37.4979, Lon: 127.0276}

	t.Run("returns provider geometry", func(t *testing.T) {
		want := []geo.Coordinate{start, end}
		svc := routing.NewService(routing.ServiceConfig{
			Provider: &mockProvider{coords: want},
			Logger:   zerolog.Nop(),
		})
		assert.Equal(t, want, svc.Polyline(ctx, start, end, eta.ModeSubway))
	})

	t.Run("nil on provider failure", func(t *testing.T) {
		svc := routing.NewService(routing.ServiceConfig{
			Provider: &mockProvider{err: errors.New("down")},
			Logger:   zerolog.Nop(),
		})
		assert.Nil(t, svc.Polyline(ctx, start, end, eta.ModeWalk))
	})

	t.Run("nil without provider", func(t *testing.T) {
		svc := routing.NewService(routing.ServiceConfig{Logger: zerolog.Nop()})
		assert.Nil(t, svc.Polyline(ctx, start, end, eta.ModeBus))
	})
}
