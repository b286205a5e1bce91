package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/api/response"
	"github.com/wakeroute/wakeroute/internal/route"
)

const defaultRouteListLimit = 50

// RouteHandler handles saved route endpoints.
type RouteHandler struct {
	service *route.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *route.Service) *RouteHandler {
	return &RouteHandler{service: service}
}

// ListRoutes handles GET /v1/routes - list the caller's saved routes.
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	limit := defaultRouteListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	routes, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list routes")
		return
	}

	response.JSON(w, r, http.StatusOK, routes)
}

// CreateRoute handles POST /v1/routes - save a route.
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RouteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	created, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		var vErr *route.ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(w, r, "validation error", vErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to create route")
		return
	}

	location := fmt.Sprintf("/v1/routes/%s", created.ID)
	response.Created(w, r, location, created)
}

// GetRoute handles GET /v1/routes/{routeId} - fetch one saved route.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	if routeID == "" {
		response.BadRequest(w, r, "routeId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	rt, err := h.service.Get(r.Context(), userID, routeID)
	if err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to load route")
		return
	}

	response.JSON(w, r, http.StatusOK, rt)
}

// UpdateRoute handles PATCH /v1/routes/{routeId} - partial update.
func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	if routeID == "" {
		response.BadRequest(w, r, "routeId is required", nil)
		return
	}

	var input models.RouteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	updated, err := h.service.Update(r.Context(), userID, routeID, &input)
	if err != nil {
		var vErr *route.ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(w, r, "validation error", vErr.Errors)
			return
		}
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to update route")
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// DeleteRoute handles DELETE /v1/routes/{routeId}.
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	if routeID == "" {
		response.BadRequest(w, r, "routeId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, routeID); err != nil {
		if errors.Is(err, route.ErrRouteNotFound) {
			response.NotFound(w, r, "route not found")
			return
		}
		response.InternalError(w, r, "failed to delete route")
		return
	}

	response.NoContent(w, r)
}
