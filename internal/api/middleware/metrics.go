package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wakeroute/wakeroute/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			}
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(attrs...))

			wrapped := newStatusWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()

			attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)))
			if wrapped.statusCode >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			m.responseSize.Record(r.Context(), wrapped.written, metric.WithAttributes(attrs...))
		})
	}
}

// EvaluationMetrics holds metrics for the commute evaluation pipeline.
type EvaluationMetrics struct {
	evaluationTotal   metric.Int64Counter
	etaMinutes        metric.Int64Histogram
	correctionApplied metric.Int64Counter
}

// NewEvaluationMetrics creates metrics for monitoring evaluations.
func NewEvaluationMetrics() (*EvaluationMetrics, error) {
	meter := otel.Meter(meterName)

	evaluationTotal, err := meter.Int64Counter(
		"commute.evaluation.total",
		metric.WithDescription("Total number of commute evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	etaMinutes, err := meter.Int64Histogram(
		"commute.evaluation.eta_minutes",
		metric.WithDescription("Corrected ETA of the chosen mode in minutes"),
		metric.WithUnit("min"),
	)
	if err != nil {
		return nil, err
	}

	correctionApplied, err := meter.Int64Counter(
		"commute.evaluation.correction_applied",
		metric.WithDescription("Evaluations that applied a historical correction"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	return &EvaluationMetrics{
		evaluationTotal:   evaluationTotal,
		etaMinutes:        etaMinutes,
		correctionApplied: correctionApplied,
	}, nil
}

// RecordEvaluation records one completed evaluation.
func (m *EvaluationMetrics) RecordEvaluation(ctx context.Context, mode string, etaMinutes int, corrected bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("commute.mode", mode))
	m.evaluationTotal.Add(ctx, 1, attrs)
	m.etaMinutes.Record(ctx, int64(etaMinutes), attrs)
	if corrected {
		m.correctionApplied.Add(ctx, 1, attrs)
	}
}
