package models

// OutcomeCreateRequest reports the actual duration of a completed trip.
type OutcomeCreateRequest struct {
	RouteKey         string `json:"routeKey"`
	Mode             Mode   `json:"mode"`
	PredictedMinutes int    `json:"predictedMinutes"`
	ActualMinutes    int    `json:"actualMinutes"`
}

// Outcome is a persisted trip outcome.
type Outcome struct {
	ID               int64     `json:"id"`
	RouteKey         string    `json:"routeKey"`
	Mode             Mode      `json:"mode"`
	PredictedMinutes int       `json:"predictedMinutes"`
	ActualMinutes    int       `json:"actualMinutes"`
	ErrorMinutes     int       `json:"errorMinutes"`
	RecordedAt       Timestamp `json:"recordedAt"`
}

// TrendSummary is the linear accuracy trend over a route's history.
type TrendSummary struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Samples   int     `json:"samples"`
}

// HistoryStats summarizes the recorded accuracy of a (route, mode) pair.
type HistoryStats struct {
	RouteKey   string            `json:"routeKey"`
	Mode       Mode              `json:"mode"`
	Correction CorrectionSummary `json:"correction"`
	Trend      *TrendSummary     `json:"trend,omitempty"`
}
