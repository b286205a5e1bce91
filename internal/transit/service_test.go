package transit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/transit"
)

type mockProvider struct {
	busMinutes    int
	subwayMinutes int
	err           error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) NextBusMinutes(context.Context, string) (int, error) {
	return m.busMinutes, m.err
}

func (m *mockProvider) NextSubwayMinutes(context.Context, string) (int, error) {
	return m.subwayMinutes, m.err
}

func newService(provider transit.Provider) *transit.Service {
	return transit.NewService(transit.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})
}

func TestWaitMinutes(t *testing.T) {
	ctx := context.Background()
	stop := transit.Stop{BusStationID: "227000123", SubwayStation: "City Hall"}

	t.Run("walk has no platform wait", func(t *testing.T) {
		svc := newService(&mockProvider{busMinutes: 9})
		assert.Equal(t, 0, svc.WaitMinutes(ctx, eta.ModeWalk, stop))
	})

	t.Run("live arrivals pass through", func(t *testing.T) {
		svc := newService(&mockProvider{busMinutes: 7, subwayMinutes: 2})
		assert.Equal(t, 7, svc.WaitMinutes(ctx, eta.ModeBus, stop))
		assert.Equal(t, 2, svc.WaitMinutes(ctx, eta.ModeSubway, stop))
	})

	t.Run("unconfigured stop uses headway defaults", func(t *testing.T) {
		svc := newService(&mockProvider{busMinutes: 7, subwayMinutes: 2})
		assert.Equal(t, 5, svc.WaitMinutes(ctx, eta.ModeBus, transit.Stop{}))
		assert.Equal(t, 3, svc.WaitMinutes(ctx, eta.ModeSubway, transit.Stop{}))
	})

	t.Run("nil provider uses headway defaults", func(t *testing.T) {
		svc := newService(nil)
		assert.Equal(t, 5, svc.WaitMinutes(ctx, eta.ModeBus, stop))
		assert.Equal(t, 3, svc.WaitMinutes(ctx, eta.ModeSubway, stop))
	})

	t.Run("provider failure degrades pessimistically", func(t *testing.T) {
		svc := newService(&mockProvider{err: errors.New("down")})
		assert.Equal(t, 10, svc.WaitMinutes(ctx, eta.ModeBus, stop))
		assert.Equal(t, 5, svc.WaitMinutes(ctx, eta.ModeSubway, stop))
	})

	t.Run("clamps nonsense arrivals", func(t *testing.T) {
		svc := newService(&mockProvider{busMinutes: -4, subwayMinutes: 0})
		assert.Equal(t, 0, svc.WaitMinutes(ctx, eta.ModeBus, stop))
		assert.Equal(t, 1, svc.WaitMinutes(ctx, eta.ModeSubway, stop))
	})
}
