package eta_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
)

var (
	gwanghwamun = geo.Coordinate{Lat: 37.5759, Lon: 126.9769}
	gangnam     = geo.Coordinate{Lat: 37.4979, Lon: 127.0276}
)

// pointAtKm returns a coordinate roughly km kilometers east of gwanghwamun.
func pointAtKm(km float64) geo.Coordinate {
	// One degree of longitude at this latitude is about 88.3 km.
	return geo.Coordinate{Lat: gwanghwamun.Lat, Lon: gwanghwamun.Lon + km/88.3}
}

func TestBaselineMinutes(t *testing.T) {
	t.Run("never below one minute", func(t *testing.T) {
		for _, m := range eta.AllModes() {
			assert.Equal(t, 1, eta.BaselineMinutes(m, gwanghwamun, gwanghwamun), "mode %s", m)
		}
	})

	t.Run("known city pair", func(t *testing.T) {
		assert.Equal(t, 23, eta.BaselineMinutes(eta.ModeBus, gwanghwamun, gangnam))
		assert.Equal(t, 14, eta.BaselineMinutes(eta.ModeSubway, gwanghwamun, gangnam))
		// Walking the same span takes well over two hours.
		walk := eta.BaselineMinutes(eta.ModeWalk, gwanghwamun, gangnam)
		assert.Greater(t, walk, 120)
	})

	t.Run("non-decreasing in distance", func(t *testing.T) {
		for _, m := range eta.AllModes() {
			prev := 0
			for km := 0.0; km <= 20; km += 0.5 {
				got := eta.BaselineMinutes(m, gwanghwamun, pointAtKm(km))
				assert.GreaterOrEqual(t, got, prev, "mode %s at %.1f km", m, km)
				prev = got
			}
		}
	})
}

func TestCrossingCount(t *testing.T) {
	assert.Equal(t, 0, eta.CrossingCount(gwanghwamun, pointAtKm(0.5)))
	assert.Equal(t, 1, eta.CrossingCount(gwanghwamun, pointAtKm(0.7)))
	assert.Equal(t, 2, eta.CrossingCount(gwanghwamun, pointAtKm(1.3)))
	assert.Equal(t, 16, eta.CrossingCount(gwanghwamun, gangnam))
}

func TestSignalPenaltyMinutes(t *testing.T) {
	assert.Equal(t, 0, eta.SignalPenaltyMinutes(0))
	assert.Equal(t, 0, eta.SignalPenaltyMinutes(-3))
	// 60 s worst-case wait per crossing makes the penalty equal the count.
	assert.Equal(t, 16, eta.SignalPenaltyMinutes(16))
}

func TestCrossings(t *testing.T) {
	crossings := eta.Crossings(gwanghwamun, gangnam)
	require.Len(t, crossings, 16)
	for _, c := range crossings {
		assert.Equal(t, 60, c.MaxWaitSec)
		assert.True(t, c.Point.Valid())
	}
	assert.Nil(t, eta.Crossings(gwanghwamun, pointAtKm(0.3)))
}

func TestTrafficDelayMinutes(t *testing.T) {
	offPeak := time.Date(2025, 3, 3, 13, 0, 0, 0, time.Local)
	morningPeak := time.Date(2025, 3, 3, 8, 30, 0, 0, time.Local)
	eveningEdge := time.Date(2025, 3, 3, 19, 59, 0, 0, time.Local)

	t.Run("short trip off peak", func(t *testing.T) {
		assert.Equal(t, 3, eta.TrafficDelayMinutes(gwanghwamun, pointAtKm(1.5), offPeak))
	})

	t.Run("long trip off peak", func(t *testing.T) {
		assert.Equal(t, 8, eta.TrafficDelayMinutes(gwanghwamun, gangnam, offPeak))
	})

	t.Run("peak surcharge", func(t *testing.T) {
		assert.Equal(t, 15, eta.TrafficDelayMinutes(gwanghwamun, gangnam, morningPeak))
		// The 19:00 hour is still inside the evening window.
		assert.Equal(t, 15, eta.TrafficDelayMinutes(gwanghwamun, gangnam, eveningEdge))
	})
}

func TestWeatherPenaltyMinutes(t *testing.T) {
	assert.Equal(t, 5, eta.WeatherPenaltyMinutes(true))
	assert.Equal(t, 0, eta.WeatherPenaltyMinutes(false))
}

func TestModeFlags(t *testing.T) {
	assert.True(t, eta.ModeWalk.CrossesStreets())
	assert.True(t, eta.ModeBus.CrossesStreets())
	assert.False(t, eta.ModeSubway.CrossesStreets())

	assert.True(t, eta.ModeBus.RoadBound())
	assert.False(t, eta.ModeWalk.RoadBound())
	assert.False(t, eta.ModeSubway.RoadBound())
}

func TestParseMode(t *testing.T) {
	m, err := eta.ParseMode("subway")
	require.NoError(t, err)
	assert.Equal(t, eta.ModeSubway, m)

	_, err = eta.ParseMode("hoverboard")
	assert.ErrorIs(t, err, eta.ErrUnknownMode)
}

func TestSelectBestMode(t *testing.T) {
	t.Run("minimum wins", func(t *testing.T) {
		best, err := eta.SelectBestMode([]eta.Candidate{
			{Mode: eta.ModeWalk, Minutes: 144},
			{Mode: eta.ModeBus, Minutes: 47},
			{Mode: eta.ModeSubway, Minutes: 14},
		})
		require.NoError(t, err)
		assert.Equal(t, eta.ModeSubway, best.Mode)
		assert.Equal(t, 14, best.Minutes)
	})

	t.Run("ties are deterministic", func(t *testing.T) {
		candidates := []eta.Candidate{
			{Mode: eta.ModeBus, Minutes: 20},
			{Mode: eta.ModeSubway, Minutes: 20},
			{Mode: eta.ModeWalk, Minutes: 20},
		}
		for i := 0; i < 10; i++ {
			best, err := eta.SelectBestMode(candidates)
			require.NoError(t, err)
			assert.Equal(t, eta.ModeWalk, best.Mode)
		}
	})

	t.Run("subway beats bus on tie", func(t *testing.T) {
		best, err := eta.SelectBestMode([]eta.Candidate{
			{Mode: eta.ModeBus, Minutes: 18},
			{Mode: eta.ModeSubway, Minutes: 18},
		})
		require.NoError(t, err)
		assert.Equal(t, eta.ModeSubway, best.Mode)
	})

	t.Run("empty input is a configuration error", func(t *testing.T) {
		_, err := eta.SelectBestMode(nil)
		assert.ErrorIs(t, err, eta.ErrNoModes)
	})
}
