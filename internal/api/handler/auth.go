package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wakeroute/wakeroute/internal/api/response"
	"github.com/wakeroute/wakeroute/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Pair handles POST /v1/auth/pair - exchange a pre-shared device key for
// an access token.
func (h *AuthHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req auth.PairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if req.DeviceKey == "" {
		response.BadRequest(w, r, "deviceKey is required", nil)
		return
	}

	tokenResp, err := h.authService.Pair(r.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownDeviceKey) {
			response.Unauthorized(w, r, "unknown device key")
			return
		}
		response.InternalError(w, r, "pairing failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}
