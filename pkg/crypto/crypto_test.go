package crypto

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.True(t, VerifyPassword(hash, "s3cret-pass"))
	require.False(t, VerifyPassword(hash, "wrong-pass"))
}

func TestGenerateTokenLengthAndUniqueness(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestGenerateResetCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)

	for i := 0; i < 200; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
	}
}
