package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() JWTService {
	return NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testService()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "nora@example.com", "doctor")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(24*3600), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "nora@example.com", claims.Email)
	assert.Equal(t, "doctor", claims.Role)
}

func TestValidateRefreshToken(t *testing.T) {
	svc := testService()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "nora@example.com", "patient")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAccessAndRefreshSecretsDiffer(t *testing.T) {
	svc := testService()

	pair, err := svc.GenerateTokenPair(uuid.New(), "a@b.c", "admin")
	require.NoError(t, err)

	// An access token cannot pass refresh validation and vice versa.
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := testService()

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
