package models

// EvaluateRequest is the body of a commute evaluation call.
type EvaluateRequest struct {
	StartAddress       string `json:"startAddress"`
	EndAddress         string `json:"endAddress"`
	TargetArrivalLocal string `json:"targetArrivalLocal"`

	// Modes are the enabled transport modes. Empty is a validation error.
	Modes []Mode `json:"modes"`

	// UseCorrection applies the per-route historical correction.
	UseCorrection bool `json:"useCorrection,omitempty"`

	PrepMinutes         int  `json:"prepMinutes,omitempty"`
	SafetyMarginMinutes int  `json:"safetyMarginMinutes,omitempty"`
	ExtraMarginMinutes  int  `json:"extraMarginMinutes,omitempty"`
	RollForward         bool `json:"rollForward,omitempty"`

	// BusStationID and SubwayStation enable live platform wait lookups.
	BusStationID  *string `json:"busStationId,omitempty"`
	SubwayStation *string `json:"subwayStation,omitempty"`

	// AlarmLeadMinutes overrides the progressive alarm offsets.
	AlarmLeadMinutes []int `json:"alarmLeadMinutes,omitempty"`

	IncludePolyline bool `json:"includePolyline,omitempty"`
}

// PenaltyBreakdown itemizes the additive minute penalties of an evaluation.
type PenaltyBreakdown struct {
	WeatherMinutes int `json:"weatherMinutes"`
	TrafficMinutes int `json:"trafficMinutes"`
	SignalMinutes  int `json:"signalMinutes"`
}

// ModeCandidate is one evaluated transport mode.
type ModeCandidate struct {
	Mode    Mode `json:"mode"`
	Minutes int  `json:"minutes"`
}

// CorrectionSummary describes the historical error statistics applied to
// an evaluation.
type CorrectionSummary struct {
	SampleCount      int     `json:"sampleCount"`
	MeanErrorMinutes float64 `json:"meanErrorMinutes"`
	StdErrorMinutes  float64 `json:"stdErrorMinutes"`
}

// CrossingMarker is an approximate signal crossing along the trip.
type CrossingMarker struct {
	Point      Point `json:"point"`
	MaxWaitSec int   `json:"maxWaitSec"`
}

// Evaluation is the full result of a commute evaluation.
type Evaluation struct {
	RouteKey string `json:"routeKey"`

	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	DistanceKm float64 `json:"distanceKm"`

	Mode                Mode `json:"mode"`
	EtaMinutes          int  `json:"etaMinutes"`
	CorrectedEtaMinutes int  `json:"correctedEtaMinutes"`
	WaitMinutes         int  `json:"waitMinutes"`

	Raining   bool             `json:"raining"`
	Penalties PenaltyBreakdown `json:"penalties"`

	Candidates []ModeCandidate    `json:"candidates"`
	Correction *CorrectionSummary `json:"correction,omitempty"`

	Crossings []CrossingMarker `json:"crossings,omitempty"`
	Polyline  []Point          `json:"polyline,omitempty"`

	TotalMinutes          int         `json:"totalMinutes"`
	WakeAt                Timestamp   `json:"wakeAt"`
	UpdateIntervalSeconds int         `json:"updateIntervalSeconds"`
	Alarms                []Timestamp `json:"alarms,omitempty"`

	GeneratedAt Timestamp `json:"generatedAt"`
}
