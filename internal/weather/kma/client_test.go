package kma_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
	"github.com/wakeroute/wakeroute/internal/weather/kma"
)

func newClient(t *testing.T, handler http.HandlerFunc) *kma.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return kma.NewClient(kma.ClientConfig{
		BaseURL:    srv.URL,
		ServiceKey: "test-key",
		HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: "kma-test", MaxRetries: 1}),
		Logger:     zerolog.Nop(),
	})
}

func forecastJSON(items string) string {
	return `{"response":{"body":{"items":{"item":[` + items + `]}}}}`
}

func TestCurrentConditions(t *testing.T) {
	ctx := context.Background()
	cell := geo.GridCell{NX: 60, NY: 127}

	t.Run("rain from precipitation type", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "60", r.URL.Query().Get("nx"))
			assert.Equal(t, "127", r.URL.Query().Get("ny"))
			_, _ = w.Write([]byte(forecastJSON(`{"category":"PTY","fcstValue":"1"},{"category":"POP","fcstValue":"20"}`)))
		})

		obs, err := client.CurrentConditions(ctx, cell)
		require.NoError(t, err)
		assert.True(t, obs.Raining)
		assert.Equal(t, "1", obs.PrecipType)
	})

	t.Run("rain from probability threshold", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(forecastJSON(`{"category":"PTY","fcstValue":"0"},{"category":"POP","fcstValue":"30"}`)))
		})

		obs, err := client.CurrentConditions(ctx, cell)
		require.NoError(t, err)
		assert.True(t, obs.Raining)
		assert.Equal(t, 30, obs.PrecipProbability)
	})

	t.Run("dry forecast", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(forecastJSON(`{"category":"PTY","fcstValue":"0"},{"category":"POP","fcstValue":"10"}`)))
		})

		obs, err := client.CurrentConditions(ctx, cell)
		require.NoError(t, err)
		assert.False(t, obs.Raining)
	})

	t.Run("empty payload is dry", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		obs, err := client.CurrentConditions(ctx, cell)
		require.NoError(t, err)
		assert.False(t, obs.Raining)
		assert.Equal(t, -1, obs.PrecipProbability)
	})

	t.Run("malformed values are skipped", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(forecastJSON(`{"category":"POP","fcstValue":"n/a"},{"category":"PTY","fcstValue":""}`)))
		})

		obs, err := client.CurrentConditions(ctx, cell)
		require.NoError(t, err)
		assert.False(t, obs.Raining)
	})
}
