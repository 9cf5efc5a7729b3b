package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashVerifyPassword(t *testing.T) {
	digest, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", digest)

	require.True(t, VerifyPassword("s3cret-pass", digest))
	require.False(t, VerifyPassword("wrong-pass", digest))
	require.False(t, VerifyPassword("s3cret-pass", "not-a-digest"))
}

func TestHashVerifyToken(t *testing.T) {
	// A realistic signed JWT length, far beyond bcrypt's 72-byte limit.
	token := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 12)
	require.Greater(t, len(token), 72)

	digest, err := HashToken(token)
	require.NoError(t, err)

	require.True(t, VerifyToken(token, digest))
	require.False(t, VerifyToken(token+"tampered", digest))
	require.False(t, VerifyToken(token, "not-a-digest"))
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
		seen[code] = true
	}
	// 20 draws from a million-value space should not all collide.
	require.Greater(t, len(seen), 1)
}
