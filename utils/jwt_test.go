package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("u-1", "seller", "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "seller", claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	good, err := GenerateToken("u-1", "buyer", "s3cret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("u-1", "buyer", "s3cret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(good, "other")
	assert.Error(t, err)
	_, err = ParseToken(expired, "s3cret")
	assert.Error(t, err)
	_, err = ParseToken("garbage", "s3cret")
	assert.Error(t, err)
}
