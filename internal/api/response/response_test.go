package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wakeroute/wakeroute/internal/api/middleware"
	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/api/response"
)

// requestWithContext runs a request through the RequestID middleware so the
// context carries a request ID, the way handlers see it in the router chain.
func requestWithContext(t *testing.T, method, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(rec, req)

	return processedReq, httptest.NewRecorder()
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var problem models.Problem
	if err := json.NewDecoder(rec.Body).Decode(&problem); err != nil {
		t.Fatalf("failed to decode Problem response: %v", err)
	}
	return problem
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/routes")

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if requestID := rec.Header().Get("X-Request-Id"); len(requestID) < 10 {
		t.Errorf("expected X-Request-Id header with a valid ID, got %q", requestID)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", contentType)
	}
}

func TestJSON_WithoutRequestID(t *testing.T) {
	// Request never passed through the RequestID middleware
	req := httptest.NewRequest(http.MethodGet, "/v1/routes", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if requestID := rec.Header().Get("X-Request-Id"); requestID != "" {
		t.Errorf("expected no X-Request-Id header when not in context, got %q", requestID)
	}
}

func TestJSON_NilData(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/routes")

	response.JSON(rec, req, http.StatusOK, nil)

	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got %q", rec.Body.String())
	}
}

func TestCreated_IncludesLocation(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/routes")

	response.Created(rec, req, "/v1/routes/rt_abc123", map[string]string{"id": "rt_abc123"})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
	if location := rec.Header().Get("Location"); location != "/v1/routes/rt_abc123" {
		t.Errorf("expected Location /v1/routes/rt_abc123, got %q", location)
	}
}

func TestNoContent(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodDelete, "/v1/routes/rt_abc123")

	response.NoContent(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for 204, got %q", rec.Body.String())
	}
}

func TestBadRequest_IncludesFieldErrorsAndInstance(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/routes")

	fieldErrors := []models.FieldError{
		{Field: "startAddress", Message: "is required"},
	}
	response.BadRequest(rec, req, "validation failed", fieldErrors)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	problem := decodeProblem(t, rec)
	if problem.TraceID == "" {
		t.Error("expected traceId to be set in Problem response")
	}
	if problem.Instance != "/v1/routes" {
		t.Errorf("expected instance /v1/routes, got %q", problem.Instance)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "startAddress" {
		t.Errorf("expected field errors to round-trip, got %+v", problem.Errors)
	}
}

func TestErrorHelpers_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter, r *http.Request)
		wantStatus int
	}{
		{
			name:       "unauthorized",
			write:      func(w http.ResponseWriter, r *http.Request) { response.Unauthorized(w, r, "invalid token") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "route not found") },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict",
			write:      func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "route already exists") },
			wantStatus: http.StatusConflict,
		},
		{
			name:       "too many requests",
			write:      func(w http.ResponseWriter, r *http.Request) { response.TooManyRequests(w, r, "slow down") },
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "internal error",
			write:      func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "something went wrong") },
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "service unavailable",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.ServiceUnavailable(w, r, "provider down")
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := requestWithContext(t, http.MethodGet, "/v1/routes")

			tt.write(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			problem := decodeProblem(t, rec)
			if problem.Status != tt.wantStatus {
				t.Errorf("expected problem status %d, got %d", tt.wantStatus, problem.Status)
			}
			if problem.TraceID == "" {
				t.Error("expected traceId to be set")
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/routes", http.NoBody)
	req.Header.Set("X-Request-Id", "req_client_supplied")
	rec := httptest.NewRecorder()

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(rec, req)

	rec = httptest.NewRecorder()
	response.JSON(rec, processedReq, http.StatusOK, map[string]string{"status": "ok"})

	if got := rec.Header().Get("X-Request-Id"); got != "req_client_supplied" {
		t.Errorf("expected response X-Request-Id to match client's, got %q", got)
	}
}
