// Package history persists predicted-versus-actual trip outcomes and
// derives the correction applied to new predictions.
package history

import (
	"errors"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// History errors.
var (
	// ErrInsufficientData indicates too few records to fit a trend model.
	ErrInsufficientData = errors.New("insufficient history for trend model")
)

// Record is one completed trip outcome. Records are append-only: once
// written they are never updated or deleted.
type Record struct {
	ID         int64
	RouteKey   string
	Mode       eta.Mode
	Predicted  int // minutes, >= 0
	Actual     int // minutes, >= 0
	RecordedAt time.Time
}

// CorrectionStats summarizes the prediction error for one (route, mode)
// bucket. Derived on demand from the log, never persisted, so it always
// reflects current records. A zero-sample result is the neutral
// correction.
type CorrectionStats struct {
	SampleCount int
	MeanError   float64 // mean(actual - predicted), minutes
	StdError    float64 // sample standard deviation, minutes
}

// Neutral reports whether the stats carry no signal.
func (s CorrectionStats) Neutral() bool {
	return s.SampleCount == 0
}

// Trend is the optional linear model actual = Slope*predicted + Intercept
// fitted over the full (route, mode) history.
type Trend struct {
	Slope     float64
	Intercept float64
	Samples   int
}
