package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	service := &HashService{}

	hash, err := service.HashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "testpassword", hash)

	_, err = service.HashPassword("")
	assert.EqualError(t, err, "password cannot be empty")
}

func TestComparePassword(t *testing.T) {
	service := &HashService{}

	hash, err := service.HashPassword("testpassword")
	require.NoError(t, err)

	assert.True(t, service.ComparePassword(hash, "testpassword"))
	assert.False(t, service.ComparePassword(hash, "wrongpassword"))
	assert.False(t, service.ComparePassword("not-a-hash", "testpassword"))
}
