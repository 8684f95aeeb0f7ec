package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, err := TokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestTokenExpiryRejectsGarbage(t *testing.T) {
	_, err := TokenExpiry("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenExpiryRequiresExpClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = TokenExpiry(token)
	assert.Error(t, err)
}
