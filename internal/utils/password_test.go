package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse1")
	require.NoError(t, err)
	assert.NotEqual(t, "correcthorse1", hash)

	assert.True(t, CheckPasswordHash("correcthorse1", hash))
	assert.False(t, CheckPasswordHash("wrongpassword1", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("abcdefg1"))
	assert.NoError(t, ValidatePassword("longEnough42"))

	assert.Error(t, ValidatePassword("short1"), "too short")
	assert.Error(t, ValidatePassword("lettersonly"), "no digits")
	assert.Error(t, ValidatePassword("12345678"), "no letters")
}
