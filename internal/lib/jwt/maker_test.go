package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute, 24*time.Hour)

	tests := []struct {
		name   string
		userID string
		email  string
	}{
		{name: "regular user", userID: "7c1f8e4a-2d0b-4a57-9a55-2f1c0e1d9b10", email: "shop@example.com"},
		{name: "plus address", userID: "1b5e2b0e-4b7a-4e1d-8f4d-0d6e5f2a9c33", email: "owner+receipts@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, err := maker.GenerateAccessToken(tt.userID, tt.email)
			require.NoError(t, err)
			refresh, err := maker.GenerateRefreshToken(tt.userID, tt.email)
			require.NoError(t, err)
			assert.NotEqual(t, access, refresh)

			claims, err := maker.ParseAccessToken(access)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID())
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, TypeAccess, claims.TokenType)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)

			claims, err = maker.ParseRefreshToken(refresh)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID())
			assert.Equal(t, TypeRefresh, claims.TokenType)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_RejectsWrongType(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Minute, time.Hour)

	access, err := maker.GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)
	refresh, err := maker.GenerateRefreshToken("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = maker.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = maker.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTMaker_ParseAccessToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute, time.Hour)

	validToken, err := maker.GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	expired, err := NewJWTMaker(testSecret, -time.Hour, time.Hour).GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	wrongSecret, err := NewJWTMaker("wrong_secret_key", time.Hour, time.Hour).GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	noSubject, err := maker.GenerateAccessToken("", "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expired},
		{name: "wrong secret key", token: wrongSecret},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseAccessToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_Expiration(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Second, time.Hour)

	token, err := maker.GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = maker.ParseAccessToken(token)
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	_, err = maker.ParseAccessToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}
