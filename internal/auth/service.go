package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service errors.
var (
	ErrUnknownDeviceKey = errors.New("unknown device key")
)

// PairRequest exchanges a pre-shared device key for an access token.
type PairRequest struct {
	DeviceKey string `json:"deviceKey"`
}

// TokenResponse is the issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWT *JWTService

	// DeviceKeys maps pre-shared pairing keys to user IDs. Parsed from
	// "key:user,key:user" configuration.
	DeviceKeys map[string]string

	Logger zerolog.Logger
}

// Service issues and validates access tokens.
type Service struct {
	jwt        *JWTService
	deviceKeys map[string]string
	logger     zerolog.Logger
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwt:        cfg.JWT,
		deviceKeys: cfg.DeviceKeys,
		logger:     cfg.Logger,
	}
}

// ParseDeviceKeys parses a "key:user,key:user" configuration string.
func ParseDeviceKeys(s string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, user, ok := strings.Cut(pair, ":")
		if !ok || key == "" || user == "" {
			continue
		}
		keys[key] = user
	}
	return keys
}

// Pair exchanges a device key for an access token.
func (s *Service) Pair(_ context.Context, req *PairRequest) (*TokenResponse, error) {
	userID, ok := s.lookupDeviceKey(req.DeviceKey)
	if !ok {
		return nil, ErrUnknownDeviceKey
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Time("expires_at", expiresAt).Msg("device paired")

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		UserID:      userID,
	}, nil
}

// ValidateAccessToken validates a bearer token and returns the user ID.
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	claims, err := s.jwt.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// lookupDeviceKey compares in constant time against every configured key.
func (s *Service) lookupDeviceKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	var userID string
	found := false
	for candidate, user := range s.deviceKeys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			userID = user
			found = true
		}
	}
	return userID, found
}
