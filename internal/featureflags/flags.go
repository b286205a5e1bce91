// Package featureflags provides runtime kill switches for the evaluation
// pipeline. Flags degrade features without a redeploy; every consumer
// falls back to its default when the store is unreachable.
package featureflags

import "time"

// Well-known feature flag keys.
const (
	// FlagDisableCorrection turns off the historical ETA correction for
	// every evaluation, regardless of the request toggle.
	FlagDisableCorrection = "disable_correction"

	// FlagDisableWeatherPenalty ignores the rain signal. Useful when the
	// forecast provider misbehaves.
	FlagDisableWeatherPenalty = "disable_weather_penalty"

	// FlagDisableTransitWait skips live arrival lookups and their
	// fallback waits.
	FlagDisableTransitWait = "disable_transit_wait"

	// FlagDisableSubwayMode removes the subway from candidate modes, for
	// line-wide outages.
	FlagDisableSubwayMode = "disable_subway_mode"

	// FlagStatsLimit overrides the correction window size.
	FlagStatsLimit = "stats_limit"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// IntValue returns the flag value as an integer.
// Returns the default value if the flag is nil or not a number.
func (f *Flag) IntValue(defaultValue int) int {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case float64:
		// JSON unmarshals numbers as float64
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// StringValue returns the flag value as a string.
// Returns the default value if the flag is nil or not a string.
func (f *Flag) StringValue(defaultValue string) string {
	if f == nil {
		return defaultValue
	}
	if v, ok := f.Value.(string); ok {
		return v
	}
	return defaultValue
}

// DefaultFlags returns the default feature flags for the application.
// Everything degradable starts enabled.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	defaults := map[string]interface{}{
		FlagDisableCorrection:     false,
		FlagDisableWeatherPenalty: false,
		FlagDisableTransitWait:    false,
		FlagDisableSubwayMode:     false,
	}

	flags := make(map[string]*Flag, len(defaults))
	for key, value := range defaults {
		flags[key] = &Flag{Key: key, Value: value, UpdatedAt: now}
	}
	return flags
}
