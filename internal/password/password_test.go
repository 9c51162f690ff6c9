package password_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/password"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := password.Hash("secret1")
	require.NoError(t, err)
	require.Contains(t, encoded, "$argon2id$")

	ok, err := password.Verify("secret1", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = password.Verify("wrong", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := password.Hash("secret1")
	require.NoError(t, err)
	b, err := password.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plain", "$argon2id$v=19$garbage", "$bcrypt$x$y$z$w"} {
		_, err := password.Verify("secret1", bad)
		require.ErrorIs(t, err, password.ErrMalformedHash)
	}
}
