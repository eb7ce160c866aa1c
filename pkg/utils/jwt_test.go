package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateToken("Rider@Example.com", "Rafi", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTVerifier("secret").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "rider@example.com", claims.Email)
	assert.Equal(t, "Rafi", claims.Name)
}

func TestJWTRejectsBadTokens(t *testing.T) {
	v := NewJWTVerifier("secret")
	ctx := context.Background()

	other, err := GenerateToken("a@example.com", "", "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken("a@example.com", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(ctx, noEmail)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
