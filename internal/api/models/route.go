package models

// Route represents a saved commute route.
type Route struct {
	ID                  string  `json:"id"`
	Label               string  `json:"label"`
	StartAddress        string  `json:"startAddress"`
	EndAddress          string  `json:"endAddress"`
	TargetArrivalLocal  string  `json:"targetArrivalLocal"`
	Modes               []Mode  `json:"modes"`
	UseCorrection       bool    `json:"useCorrection"`
	PrepMinutes         int     `json:"prepMinutes"`
	SafetyMarginMinutes int     `json:"safetyMarginMinutes"`
	ExtraMarginMinutes  int     `json:"extraMarginMinutes"`
	BusStationID        *string `json:"busStationId,omitempty"`
	SubwayStation       *string `json:"subwayStation,omitempty"`
	RouteKey            string  `json:"routeKey"`

	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// RouteCreateRequest creates a saved route.
type RouteCreateRequest struct {
	Label               string  `json:"label"`
	StartAddress        string  `json:"startAddress"`
	EndAddress          string  `json:"endAddress"`
	TargetArrivalLocal  string  `json:"targetArrivalLocal"`
	Modes               []Mode  `json:"modes"`
	UseCorrection       bool    `json:"useCorrection,omitempty"`
	PrepMinutes         int     `json:"prepMinutes,omitempty"`
	SafetyMarginMinutes int     `json:"safetyMarginMinutes,omitempty"`
	ExtraMarginMinutes  int     `json:"extraMarginMinutes,omitempty"`
	BusStationID        *string `json:"busStationId,omitempty"`
	SubwayStation       *string `json:"subwayStation,omitempty"`
}

// RouteUpdateRequest partially updates a saved route.
type RouteUpdateRequest struct {
	Label               *string `json:"label,omitempty"`
	StartAddress        *string `json:"startAddress,omitempty"`
	EndAddress          *string `json:"endAddress,omitempty"`
	TargetArrivalLocal  *string `json:"targetArrivalLocal,omitempty"`
	Modes               []Mode  `json:"modes,omitempty"`
	UseCorrection       *bool   `json:"useCorrection,omitempty"`
	PrepMinutes         *int    `json:"prepMinutes,omitempty"`
	SafetyMarginMinutes *int    `json:"safetyMarginMinutes,omitempty"`
	ExtraMarginMinutes  *int    `json:"extraMarginMinutes,omitempty"`
	BusStationID        *string `json:"busStationId,omitempty"`
	SubwayStation       *string `json:"subwayStation,omitempty"`
}

// PagedRoutes is a page of saved routes.
type PagedRoutes struct {
	Items []Route           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
