package helpers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venduo/marketplace-identity/pkg/helpers"
)

func TestJWTRoundtrip(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, exp, err := m.GenerateAccessToken("user-1", "vendor")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "vendor", claims.Role)

	refresh, _, err := m.GenerateRefreshToken("user-1", "vendor")
	require.NoError(t, err)
	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "customer")
	require.NoError(t, err)

	// A refresh-side parse must reject an access token and vice versa.
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)

	other := helpers.NewJWTManager("different", "different", time.Minute, time.Hour)
	_, err = other.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "customer")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	_, err := m.ParseAccessToken("not.a.token")
	assert.Error(t, err)
}
