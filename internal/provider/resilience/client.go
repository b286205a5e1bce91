// Package resilience wraps outbound provider calls with retries and a
// circuit breaker so that one flaky upstream cannot stall evaluations.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Client errors.
var (
	// ErrCircuitOpen is returned while the breaker is rejecting calls.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ServerError marks a 5xx response so retries and the breaker treat it as
// a failure.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream for breaker state and logging.
	Name string

	// Timeout bounds each individual HTTP attempt (default: 8s).
	Timeout time.Duration

	// MaxRetries is the retry budget per request (default: 2).
	MaxRetries uint64

	// InitialInterval seeds the exponential backoff (default: 200ms).
	InitialInterval time.Duration

	// MaxInterval caps the backoff (default: 3s).
	MaxInterval time.Duration

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker (default: 5).
	FailureThreshold uint32

	// OpenDuration is how long the breaker stays open before probing
	// (default: 30s).
	OpenDuration time.Duration
}

// Client is an HTTP client with per-upstream circuit breaking and
// exponential backoff retries on transient failures.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a resilient client for one upstream.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenDuration == 0 {
		cfg.OpenDuration = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		cfg:        cfg,
	}
}

// Do executes the request. Network errors and 5xx responses are retried
// with exponential backoff until the retry budget runs out; an open
// breaker fails fast with ErrCircuitOpen. The caller owns the returned
// response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var resp *http.Response
	operation := func() error {
		r, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			attempt, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if attempt.StatusCode >= http.StatusInternalServerError {
				_ = attempt.Body.Close()
				return nil, &ServerError{StatusCode: attempt.StatusCode}
			}
			return attempt, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// DoWithContext executes the request with an explicit context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}
