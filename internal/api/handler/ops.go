// Package handler provides HTTP handlers for the WakeRoute API.
package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/api/response"
)

// DependencyCheck probes one backing dependency for readiness.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	commit    string
	buildTime string
	checks    []DependencyCheck
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, commit, buildTime string, checks []DependencyCheck) *OpsHandler {
	return &OpsHandler{
		version:   version,
		commit:    commit,
		buildTime: buildTime,
		checks:    checks,
	}
}

// HealthCheck handles GET /healthz - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version": h.version,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /readyz - readiness including dependencies.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatusOK
	details := make(map[string]interface{}, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			status = models.HealthStatusDegraded
			details[check.Name] = err.Error()
			continue
		}
		details[check.Name] = "ok"
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}

	code := http.StatusOK
	if status != models.HealthStatusOK {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem status overview.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	overall := models.HealthStatusOK
	subsystems := make([]models.SubsystemStatus, 0, len(h.checks))
	for _, check := range h.checks {
		sub := models.SubsystemStatus{Name: check.Name, Status: models.HealthStatusOK}
		if err := check.Check(ctx); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusDegraded
			sub.Detail = &detail
			overall = models.HealthStatusDegraded
		}
		subsystems = append(subsystems, sub)
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
		Providers:  []models.ProviderStatus{},
	}
	response.JSON(w, r, http.StatusOK, status)
}

// Version handles GET /v1/ops/version - build information.
func (h *OpsHandler) Version(w http.ResponseWriter, r *http.Request) {
	info := models.VersionInfo{
		Version:   h.version,
		Commit:    h.commit,
		BuiltAt:   h.buildTime,
		GoVersion: runtime.Version(),
	}
	response.JSON(w, r, http.StatusOK, info)
}
