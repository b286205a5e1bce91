package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeroute/wakeroute/internal/auth"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key-for-unit-tests",
		Issuer:     "https://api.wakeroute.dev",
		Audience:   "wakeroute-api",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newJWTService()

	token, expiresAt, err := svc.GenerateAccessToken("usr_1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "usr_1", claims.Subject)
}

func TestValidateAccessToken(t *testing.T) {
	svc := newJWTService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{
			SigningKey: "a-different-key",
			Issuer:     "https://api.wakeroute.dev",
			Audience:   "wakeroute-api",
		})
		token, _, err := other.GenerateAccessToken("usr_1")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{
			SigningKey: "test-signing-key-for-unit-tests",
			Issuer:     "https://api.wakeroute.dev",
			Audience:   "someone-else",
		})
		token, _, err := other.GenerateAccessToken("usr_1")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
	})
}

func TestPair(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(auth.ServiceConfig{
		JWT:        newJWTService(),
		DeviceKeys: auth.ParseDeviceKeys("bedside-clock-key:usr_alex, phone-key:usr_sam"),
	})

	t.Run("known key issues a token", func(t *testing.T) {
		resp, err := svc.Pair(ctx, &auth.PairRequest{DeviceKey: "bedside-clock-key"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "usr_alex", resp.UserID)

		userID, err := svc.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "usr_alex", userID)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		_, err := svc.Pair(ctx, &auth.PairRequest{DeviceKey: "burglar"})
		assert.ErrorIs(t, err, auth.ErrUnknownDeviceKey)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		_, err := svc.Pair(ctx, &auth.PairRequest{DeviceKey: ""})
		assert.ErrorIs(t, err, auth.ErrUnknownDeviceKey)
	})
}

func TestParseDeviceKeys(t *testing.T) {
	keys := auth.ParseDeviceKeys(" a:u1, b:u2,, malformed , c: ,:u3 ")
	assert.Equal(t, map[string]string{"a": "u1", "b": "u2"}, keys)
}
