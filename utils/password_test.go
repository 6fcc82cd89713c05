package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrongpassword"))
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := HashPassword("password123")
	require.NoError(t, err)
	h2, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
