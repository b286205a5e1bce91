// Package worker provides background job processing for WakeRoute.
package worker

import "time"

// RefreshConfig holds configuration for the route refresh job.
type RefreshConfig struct {
	// UserIDs are the users whose saved routes are refreshed. Derived
	// from the configured device keys.
	UserIDs []string

	// RoutesPerUser caps routes loaded per user.
	// Default: 200
	RoutesPerUser int

	// Concurrency is the number of concurrent evaluations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each evaluation.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is the cadence of the periodic refresh loop.
	// Default: 5 minutes
	Interval time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		RoutesPerUser: 200,
		Concurrency:   3,
		Timeout:       30 * time.Second,
		Interval:      5 * time.Minute,
	}
}

// withDefaults fills unset fields with their defaults.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.RoutesPerUser <= 0 {
		c.RoutesPerUser = def.RoutesPerUser
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	return c
}
