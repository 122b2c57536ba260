package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("super-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-123", "someone@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "someone@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestTokenManagerExpired(t *testing.T) {
	tm := NewTokenManager("super-secret", time.Millisecond)

	token, _, err := tm.GenerateToken("user-123", "someone@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenManagerWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("right-secret", time.Hour).GenerateToken("u1", "a@b.co")
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenManagerMalformed(t *testing.T) {
	tm := NewTokenManager("super-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.ParseToken(token)
		assert.Error(t, err, "token %q should not parse", token)
	}
}

func TestTokenManagerDefaultTTL(t *testing.T) {
	tm := NewTokenManager("super-secret", 0)
	assert.Equal(t, time.Hour, tm.TTL())
}
