// Package osrm implements the routing provider against the OSRM route
// service.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twpayne/go-polyline"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
	"github.com/wakeroute/wakeroute/internal/routing"
)

const defaultBaseURL = "https://router.project-osrm.org"

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint (for tests).
	BaseURL string

	// HTTPClient is the resilient outbound client. Required.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the OSRM route endpoint.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "osrm"
}

// profile maps a transport mode onto an OSRM routing profile. Bus and
// subway both fall back to driving; the polyline is cosmetic either way.
func profile(mode eta.Mode) string {
	if mode == eta.ModeWalk {
		return "walking"
	}
	return "driving"
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// Polyline fetches the route geometry between two points.
func (c *Client) Polyline(ctx context.Context, start, end geo.Coordinate, mode eta.Mode) ([]geo.Coordinate, error) {
	// OSRM takes lon,lat pairs.
	endpoint := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=polyline",
		c.baseURL, profile(mode), start.Lon, start.Lat, end.Lon, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", routing.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", routing.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		return nil, routing.ErrNoRouteFound
	}

	points, _, err := polyline.DecodeCoords([]byte(payload.Routes[0].Geometry))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	coords := make([]geo.Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, geo.Coordinate{Lat: p[0], Lon: p[1]})
	}

	c.logger.Debug().
		Str("profile", profile(mode)).
		Int("points", len(coords)).
		Msg("fetched route polyline")

	return coords, nil
}
