package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/api/response"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/route"
)

// OutcomeHandler handles trip outcome endpoints.
type OutcomeHandler struct {
	service *history.Service
}

// NewOutcomeHandler creates a new OutcomeHandler.
func NewOutcomeHandler(service *history.Service) *OutcomeHandler {
	return &OutcomeHandler{service: service}
}

// CreateOutcome handles POST /v1/outcomes - record a completed trip.
func (h *OutcomeHandler) CreateOutcome(w http.ResponseWriter, r *http.Request) {
	var input models.OutcomeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if input.RouteKey == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "routeKey", Message: "is required"})
	}
	mode, err := route.ParseAPIMode(input.Mode)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "mode", Message: "unknown mode: " + string(input.Mode)})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	rec, err := h.service.RecordOutcome(r.Context(), input.RouteKey, mode, input.PredictedMinutes, input.ActualMinutes)
	if err != nil {
		response.ServiceUnavailable(w, r, "failed to record outcome")
		return
	}

	response.JSON(w, r, http.StatusCreated, toOutcome(rec))
}

// GetStats handles GET /v1/history/{routeKey}/stats?mode=SUBWAY - the
// correction statistics and trend for a (route, mode) pair.
func (h *OutcomeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	routeKey := chi.URLParam(r, "routeKey")
	if routeKey == "" {
		response.BadRequest(w, r, "routeKey is required", nil)
		return
	}

	apiMode := models.Mode(r.URL.Query().Get("mode"))
	mode, err := route.ParseAPIMode(apiMode)
	if err != nil {
		response.BadRequest(w, r, "mode query parameter is required", []models.FieldError{
			{Field: "mode", Message: "must be one of WALK, BUS, SUBWAY"},
		})
		return
	}

	stats := h.service.CorrectionStats(r.Context(), routeKey, mode)

	result := models.HistoryStats{
		RouteKey: routeKey,
		Mode:     apiMode,
		Correction: models.CorrectionSummary{
			SampleCount:      stats.SampleCount,
			MeanErrorMinutes: stats.MeanError,
			StdErrorMinutes:  stats.StdError,
		},
	}

	trend, err := h.service.FitLinearTrend(r.Context(), routeKey, mode)
	if err == nil {
		result.Trend = &models.TrendSummary{
			Slope:     trend.Slope,
			Intercept: trend.Intercept,
			Samples:   trend.Samples,
		}
	} else if !errors.Is(err, history.ErrInsufficientData) {
		response.InternalError(w, r, "failed to compute trend")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// toOutcome converts a history record into its API representation.
func toOutcome(rec *history.Record) models.Outcome {
	return models.Outcome{
		ID:               rec.ID,
		RouteKey:         rec.RouteKey,
		Mode:             route.APIMode(rec.Mode),
		PredictedMinutes: rec.Predicted,
		ActualMinutes:    rec.Actual,
		ErrorMinutes:     rec.Actual - rec.Predicted,
		RecordedAt:       models.Timestamp(rec.RecordedAt),
	}
}
