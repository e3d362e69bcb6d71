package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("pw12345678")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "pw12345678", h)

	assert.True(t, CheckPassword(h, "pw12345678"))
	assert.False(t, CheckPassword(h, "pw12345679"))
	assert.False(t, CheckPassword(h, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("pw12345678")
	require.NoError(t, err)
	h2, err := HashPassword("pw12345678")
	require.NoError(t, err)

	// bcrypt salts every hash, equal inputs must not collide.
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "pw12345678"))
	assert.True(t, CheckPassword(h2, "pw12345678"))
}
