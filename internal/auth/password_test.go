package auth

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.NoError(t, CheckPassword("correct horse battery staple", hash))
	assert.ErrorIs(t, CheckPassword("wrong password", hash), ErrInvalidPassword)
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	// bcrypt silently truncates beyond 72 bytes; we reject instead
	_, err := HashPassword(strings.Repeat("a", 73), 4)
	assert.Error(t, err)
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("password123", 4)
	require.NoError(t, err)
	second, err := HashPassword("password123", 4)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	require.NoError(t, err)

	raw, err := hex.DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}
