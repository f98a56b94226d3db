package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(24)
	require.NoError(t, err)
	assert.Len(t, pw, 24)

	assert.True(t, strings.ContainsAny(pw, "abcdefghijklmnopqrstuvwxyz"), "missing lowercase: %s", pw)
	assert.True(t, strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"), "missing uppercase: %s", pw)
	assert.True(t, strings.ContainsAny(pw, "0123456789"), "missing digit: %s", pw)
	assert.True(t, strings.ContainsAny(pw, "!@#%&*?"), "missing symbol: %s", pw)
}

func TestGeneratePasswordMinimumLength(t *testing.T) {
	_, err := GeneratePassword(3)
	assert.Error(t, err)

	pw, err := GeneratePassword(4)
	require.NoError(t, err)
	assert.Len(t, pw, 4)
}

func TestGeneratePasswordIsShellSafe(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword(24)
		require.NoError(t, err)
		assert.NotContainsf(t, pw, "'", "password must avoid shell quoting hazards: %s", pw)
		assert.NotContainsf(t, pw, `"`, "password must avoid shell quoting hazards: %s", pw)
		assert.NotContainsf(t, pw, "$", "password must avoid shell quoting hazards: %s", pw)
		assert.NotContainsf(t, pw, "`", "password must avoid shell quoting hazards: %s", pw)
	}
}

func TestGeneratePasswordIsRandom(t *testing.T) {
	a, err := GeneratePassword(24)
	require.NoError(t, err)
	b, err := GeneratePassword(24)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
