// Package kma implements the weather provider against the KMA village
// forecast API.
package kma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/geo"
	"github.com/wakeroute/wakeroute/internal/provider/resilience"
	"github.com/wakeroute/wakeroute/internal/weather"
)

const (
	defaultBaseURL = "https://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"

	// rainProbabilityThreshold is the POP percentage at or above which a
	// forecast counts as raining.
	rainProbabilityThreshold = 30
)

// ClientConfig holds configuration for the KMA client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint (for tests).
	BaseURL string

	// ServiceKey is the API credential. Required for live calls.
	ServiceKey string

	// HTTPClient is the resilient outbound client. Required.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger

	// Now overrides the clock (for tests).
	Now func() time.Time
}

// Client calls the village forecast endpoint.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new KMA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "kma"
}

// forecastResponse mirrors the fields of the village forecast payload we
// consume. Every field is optional on the wire; missing items simply
// yield no rain signal.
type forecastResponse struct {
	Response struct {
		Body struct {
			Items struct {
				Item []forecastItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type forecastItem struct {
	Category  string `json:"category"`
	FcstValue string `json:"fcstValue"`
}

// CurrentConditions fetches the village forecast for the grid cell and
// reduces it to a rain signal. Rain is reported when the precipitation
// type (PTY) is non-zero or the probability (POP) reaches the threshold.
func (c *Client) CurrentConditions(ctx context.Context, cell geo.GridCell) (*weather.Observation, error) {
	now := c.now()

	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1000")
	params.Set("dataType", "JSON")
	params.Set("base_date", now.Format("20060102"))
	params.Set("base_time", "0500")
	params.Set("nx", strconv.Itoa(cell.NX))
	params.Set("ny", strconv.Itoa(cell.NY))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getVilageFcst?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", weather.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", weather.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	obs := &weather.Observation{
		Cell:              cell,
		PrecipProbability: -1,
		FetchedAt:         now,
	}

	for _, item := range payload.Response.Body.Items.Item {
		switch item.Category {
		case "PTY":
			if v, err := strconv.Atoi(item.FcstValue); err == nil && v > 0 {
				obs.Raining = true
				obs.PrecipType = item.FcstValue
			}
		case "POP":
			v, err := strconv.Atoi(item.FcstValue)
			if err != nil {
				continue
			}
			if v > obs.PrecipProbability {
				obs.PrecipProbability = v
			}
			if v >= rainProbabilityThreshold {
				obs.Raining = true
			}
		}
	}

	c.logger.Debug().
		Int("nx", cell.NX).
		Int("ny", cell.NY).
		Bool("raining", obs.Raining).
		Int("precip_probability", obs.PrecipProbability).
		Msg("fetched village forecast")

	return obs, nil
}
