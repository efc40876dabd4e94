package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret")

	token, expiresAt, err := m.IssueToken("42", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID())
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Len(t, claims.ID, 22)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewTokenManager("other").IssueToken("1", time.Hour)
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("issue without subject", func(t *testing.T) {
		_, _, err := m.IssueToken("", time.Hour)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	userID, ok := UserIDFromContext(WithUserID(context.Background(), "7"))
	require.True(t, ok)
	assert.Equal(t, "7", userID)
}
