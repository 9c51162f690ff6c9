package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/domain"
	"github.com/lindero/lindero-auth/internal/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSignAndVerify(t *testing.T) {
	issuer := token.NewIssuer(testSecret, "https://auth.test", time.Minute)
	user := domain.User{ID: 42, Email: "a@b.com", Name: "Ana"}

	raw, err := issuer.Sign(user)
	require.NoError(t, err)

	userID, claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
	require.Equal(t, "a@b.com", claims.Email)
	require.Equal(t, "Ana", claims.Name)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := token.NewIssuer(testSecret, "https://auth.test", time.Minute)
	raw, err := issuer.Sign(domain.User{ID: 1})
	require.NoError(t, err)

	other := token.NewIssuer([]byte("another-secret-another-secret-xx"), "https://auth.test", time.Minute)
	_, _, err = other.Verify(raw)
	require.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := token.NewIssuer(testSecret, "https://auth.test", -time.Minute)
	raw, err := issuer.Sign(domain.User{ID: 1})
	require.NoError(t, err)

	_, _, err = issuer.Verify(raw)
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	live := token.NewIssuer(testSecret, "https://auth.test", time.Hour)
	raw, err := live.Sign(domain.User{ID: 1})
	require.NoError(t, err)
	require.False(t, token.Expired(raw, now))
	require.True(t, token.Expired(raw, now.Add(2*time.Hour)))

	stale := token.NewIssuer(testSecret, "https://auth.test", -time.Hour)
	raw, err = stale.Sign(domain.User{ID: 1})
	require.NoError(t, err)
	require.True(t, token.Expired(raw, now))
}

func TestExpiredFailSafe(t *testing.T) {
	// Unparsable tokens must count as expired, never as valid.
	for _, garbage := range []string{"", "nope", "a.b.c", "header.payload"} {
		require.True(t, token.Expired(garbage, time.Now()))
	}
}
