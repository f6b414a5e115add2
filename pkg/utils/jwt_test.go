//go:build !integration

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.GenerateJWT("user-1", "vendor")
	require.NoError(t, err)

	claims, err := issuer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "vendor", claims.Role)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).GenerateJWT("user-1", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).ParseJWT(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	token, err := NewTokenIssuer("secret", -time.Minute).GenerateJWT("user-1", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).ParseJWT(token)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPassword("hunter22", string(hash)))
	assert.False(t, CheckPassword("hunter23", string(hash)))
}
