// Package nominatim implements the geocoding provider against the OSM
// Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint (for tests).
	BaseURL string

	// UserAgent is required by the Nominatim usage policy.
	UserAgent string

	// HTTPClient is the resilient outbound client. Required.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the Nominatim search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "wakeroute/1.0"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "nominatim"
}

// searchResult is the subset of the Nominatim response we consume. Lat
// and Lon are decimal strings in the wire format.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves an address via the search endpoint, taking the top
// ranked match.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	if strings.TrimSpace(address) == "" {
		return geo.Coordinate{}, geocoding.ErrEmptyAddress
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %s", geocoding.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("%w: status %d", geocoding.ErrProviderUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Coordinate{}, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return geo.Coordinate{}, geocoding.ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return geo.Coordinate{}, geocoding.ErrAddressNotFound
	}

	c.logger.Debug().
		Str("address", address).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("geocoded address")

	return coord, nil
}
