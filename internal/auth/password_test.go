package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	for _, plaintext := range []string{"secret1", "correct horse battery staple", "päss wörd"} {
		hash, err := HashPassword(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, hash)
		assert.True(t, CheckPassword(hash, plaintext))
		assert.False(t, CheckPassword(hash, plaintext+"x"))
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	require.Error(t, err)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("", "secret"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "secret"))
}
