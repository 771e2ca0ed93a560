package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken_Claims(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "BUYER", "wallet-abc", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	require.EqualValues(t, 42, claims["sub"])
	require.Equal(t, "BUYER", claims["role"])
	require.Equal(t, "wallet-abc", claims["wallet"])
}

func TestNewAccessToken_WrongSecret(t *testing.T) {
	at, err := NewAccessToken("right", 1, "ADMIN", "w", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	require.Error(t, err)
}
