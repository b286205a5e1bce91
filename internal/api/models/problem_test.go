package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/api/models"
)

func TestProblemWrite(t *testing.T) {
	rec := httptest.NewRecorder()

	p := models.NewBadRequest("req_123", "body failed validation", []models.FieldError{
		{Field: "targetArrivalLocal", Message: "must be in HH:mm format"},
	})
	p.WithInstance("/v1/commute:evaluate")
	p.Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_123", rec.Header().Get("X-Request-Id"))

	var decoded models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, models.ProblemTypeValidation, decoded.Type)
	assert.Equal(t, "req_123", decoded.TraceID)
	assert.Equal(t, "/v1/commute:evaluate", decoded.Instance)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "targetArrivalLocal", decoded.Errors[0].Field)
}

func TestProblemConstructors(t *testing.T) {
	cases := []struct {
		name    string
		problem *models.Problem
		status  int
	}{
		{"unauthorized", models.NewUnauthorized("t", "missing token"), http.StatusUnauthorized},
		{"not found", models.NewNotFound("t", "no such route"), http.StatusNotFound},
		{"conflict", models.NewConflict("t", "duplicate"), http.StatusConflict},
		{"rate limited", models.NewTooManyRequests("t", "slow down"), http.StatusTooManyRequests},
		{"internal", models.NewInternalError("t", "boom"), http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("t", "down"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.problem.Status)
			assert.NotEmpty(t, tc.problem.Type)
			assert.NotEmpty(t, tc.problem.Title)
		})
	}
}

func TestTimestampJSON(t *testing.T) {
	raw := []byte(`"2025-03-03T06:00:00Z"`)
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal(raw, &ts))

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(out))
}
