package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wakeroute/wakeroute/internal/api/middleware"
	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/api/response"
	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/geocoding"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/route"
	"github.com/wakeroute/wakeroute/internal/schedule"
	"github.com/wakeroute/wakeroute/internal/transit"
)

// EvaluateHandler handles commute evaluation endpoints.
type EvaluateHandler struct {
	planner *planner.Service
	routes  *route.Service
	metrics *middleware.EvaluationMetrics
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(p *planner.Service, routes *route.Service, metrics *middleware.EvaluationMetrics) *EvaluateHandler {
	return &EvaluateHandler{
		planner: p,
		routes:  routes,
		metrics: metrics,
	}
}

// Evaluate handles POST /v1/commute:evaluate - ad-hoc commute evaluation.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var input models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	req, fieldErrors := buildPlannerRequest(&input)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	h.run(w, r, req)
}

// EvaluateRoute handles POST /v1/routes/{routeId}:evaluate - evaluation
// of a saved route using its stored margins and stations.
func (h *EvaluateHandler) EvaluateRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	if routeID == "" {
		response.BadRequest(w, r, "routeId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	saved, err := h.routes.GetDomain(r.Context(), userID, routeID)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to load route")
		return
	}

	req := planner.Request{
		StartAddress:  saved.StartAddress,
		EndAddress:    saved.EndAddress,
		TargetArrival: saved.TargetArrival,
		Modes:         saved.Modes,
		UseCorrection: saved.UseCorrection,
		Schedule: schedule.Config{
			PrepMinutes:         saved.PrepMinutes,
			SafetyMarginMinutes: saved.SafetyMarginMinutes,
			ExtraMarginMinutes:  saved.ExtraMarginMinutes,
			RollForward:         true,
		},
	}
	if saved.BusStationID != nil {
		req.Stop.BusStationID = *saved.BusStationID
	}
	if saved.SubwayStation != nil {
		req.Stop.SubwayStation = *saved.SubwayStation
	}

	h.run(w, r, req)
}

// run executes an evaluation and writes the result or the mapped error.
func (h *EvaluateHandler) run(w http.ResponseWriter, r *http.Request, req planner.Request) {
	result, err := h.planner.Evaluate(r.Context(), req)
	if err != nil {
		writeEvaluateError(w, r, err)
		return
	}

	eval := toEvaluation(result)

	h.metrics.RecordEvaluation(r.Context(), string(eval.Mode), eval.CorrectedEtaMinutes,
		eval.CorrectedEtaMinutes != eval.EtaMinutes)

	// Results go stale at the decision's own refresh cadence
	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, r, http.StatusOK, eval)
}

// buildPlannerRequest validates the API request and converts it into a
// planner request.
func buildPlannerRequest(input *models.EvaluateRequest) (planner.Request, []models.FieldError) {
	var fieldErrors []models.FieldError

	if input.StartAddress == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "startAddress", Message: "is required"})
	}
	if input.EndAddress == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "endAddress", Message: "is required"})
	}
	if input.TargetArrivalLocal == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "targetArrivalLocal", Message: "is required"})
	}
	if len(input.Modes) == 0 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "modes", Message: "at least one mode is required"})
	}

	modes := make([]eta.Mode, 0, len(input.Modes))
	for _, m := range input.Modes {
		parsed, err := route.ParseAPIMode(m)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "modes",
				Message: "unknown mode: " + string(m),
			})
			continue
		}
		modes = append(modes, parsed)
	}

	if len(fieldErrors) > 0 {
		return planner.Request{}, fieldErrors
	}

	req := planner.Request{
		StartAddress:  input.StartAddress,
		EndAddress:    input.EndAddress,
		TargetArrival: input.TargetArrivalLocal,
		Modes:         modes,
		UseCorrection: input.UseCorrection,
		Schedule: schedule.Config{
			PrepMinutes:         input.PrepMinutes,
			SafetyMarginMinutes: input.SafetyMarginMinutes,
			ExtraMarginMinutes:  input.ExtraMarginMinutes,
			RollForward:         input.RollForward,
		},
		AlarmLevels:     input.AlarmLeadMinutes,
		IncludePolyline: input.IncludePolyline,
	}
	if input.BusStationID != nil {
		req.Stop = transit.Stop{BusStationID: *input.BusStationID}
	}
	if input.SubwayStation != nil {
		req.Stop.SubwayStation = *input.SubwayStation
	}

	return req, nil
}

// writeEvaluateError maps planner errors onto problem responses.
func writeEvaluateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrMissingEndpoint):
		response.BadRequest(w, r, "start and end addresses are required", nil)
	case errors.Is(err, eta.ErrNoModes):
		response.BadRequest(w, r, "no transport mode enabled", nil)
	case errors.Is(err, schedule.ErrInvalidArrivalTime):
		response.BadRequest(w, r, "target arrival time must be in HH:mm format", []models.FieldError{
			{Field: "targetArrivalLocal", Message: "must be HH:mm"},
		})
	case errors.Is(err, geocoding.ErrEmptyAddress):
		response.BadRequest(w, r, "address is empty", nil)
	case errors.Is(err, geocoding.ErrAddressNotFound):
		response.BadRequest(w, r, "address could not be resolved", nil)
	default:
		response.ServiceUnavailable(w, r, "evaluation temporarily unavailable")
	}
}

// toEvaluation converts an evaluation result into its API representation.
func toEvaluation(res *planner.Result) models.Evaluation {
	eval := models.Evaluation{
		RouteKey:   res.RouteKey,
		Start:      models.Point{Lat: res.Start.Lat, Lon: res.Start.Lon},
		End:        models.Point{Lat: res.End.Lat, Lon: res.End.Lon},
		DistanceKm: res.DistanceKm,

		Mode:                route.APIMode(res.ChosenMode),
		EtaMinutes:          res.BaseMinutes,
		CorrectedEtaMinutes: res.CorrectedMinutes,
		WaitMinutes:         res.WaitMinutes,

		Raining: res.Raining,
		Penalties: models.PenaltyBreakdown{
			WeatherMinutes: res.Penalties.WeatherMinutes,
			TrafficMinutes: res.Penalties.TrafficMinutes,
			SignalMinutes:  res.Penalties.SignalMinutes,
		},

		TotalMinutes:          res.Decision.TotalMinutes,
		WakeAt:                models.Timestamp(res.Decision.WakeAt),
		UpdateIntervalSeconds: res.Decision.UpdateIntervalSeconds,

		GeneratedAt: models.Timestamp(res.GeneratedAt),
	}

	eval.Candidates = make([]models.ModeCandidate, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		eval.Candidates = append(eval.Candidates, models.ModeCandidate{
			Mode:    route.APIMode(c.Mode),
			Minutes: c.Minutes,
		})
	}

	if !res.Correction.Neutral() {
		eval.Correction = &models.CorrectionSummary{
			SampleCount:      res.Correction.SampleCount,
			MeanErrorMinutes: res.Correction.MeanError,
			StdErrorMinutes:  res.Correction.StdError,
		}
	}

	for _, c := range res.Crossings {
		eval.Crossings = append(eval.Crossings, models.CrossingMarker{
			Point:      models.Point{Lat: c.Point.Lat, Lon: c.Point.Lon},
			MaxWaitSec: c.MaxWaitSec,
		})
	}

	for _, p := range res.Polyline {
		eval.Polyline = append(eval.Polyline, models.Point{Lat: p.Lat, Lon: p.Lon})
	}

	for _, a := range res.Decision.Alarms {
		eval.Alarms = append(eval.Alarms, models.Timestamp(a))
	}

	return eval
}
