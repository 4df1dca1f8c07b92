package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointplay-backend/internal/services"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := services.NewJWTService("secret", time.Hour)

	token, expiresAt, err := svc.GenerateToken("profile-1", "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := services.NewJWTService("secret", time.Hour)
	other := services.NewJWTService("other", time.Hour)

	token, _, err := other.GenerateToken("profile-1", "sess-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	expired := services.NewJWTService("secret", -time.Minute)
	token, _, err = expired.GenerateToken("profile-1", "sess-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
