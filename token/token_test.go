package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-scenario-client/storage"
	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/stretchr/testify/require"
)

func TestStorageHolder(t *testing.T) {
	s := storage.NewInMemory()
	h := token.NewStorageHolder(s)

	require.Empty(t, h.Token())

	require.NoError(t, h.SetToken("tok-1"))
	require.Equal(t, "tok-1", h.Token())

	// storage is the source of truth
	require.NoError(t, s.Set(storage.TokenKey, "tok-2"))
	require.Equal(t, "tok-2", h.Token())

	require.NoError(t, h.SetToken(""))
	require.Empty(t, h.Token())

	require.NoError(t, h.SetToken("tok-3"))
	require.NoError(t, h.Clear())
	require.NoError(t, h.Clear())
	require.Empty(t, h.Token())
}

func TestInspect(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "scenario-api",
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("not-checked"))
	require.NoError(t, err)

	for _, raw := range []string{signed, "Bearer " + signed} {
		claims, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "user-42", claims.Subject)
		require.Equal(t, "scenario-api", claims.Issuer)
		require.True(t, claims.ExpiresAt.Equal(expires))
		require.False(t, claims.Expired(time.Now()))
		require.True(t, claims.Expired(expires.Add(time.Minute)))
	}
}

func TestInspectOpaqueToken(t *testing.T) {
	_, err := token.Inspect("not-a-jwt")
	require.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = token.Inspect("")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
