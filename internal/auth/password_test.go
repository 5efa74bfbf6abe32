package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, salt, err := Hash("hunter2")
	require.NoError(t, err)
	assert.Len(t, hash, 2*keyLen, "hex-encoded 128-bit key")
	assert.Len(t, salt, 2*saltLen)

	assert.True(t, Verify("hunter2", hash, salt))
	assert.False(t, Verify("hunter3", hash, salt))
	assert.False(t, Verify("", hash, salt))
}

func TestHashSaltsAreUnique(t *testing.T) {
	h1, s1, err := Hash("pw")
	require.NoError(t, err)
	h2, s2, err := Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2, "same password, different salt, different key")
}

func TestVerifyRejectsCorruptEncoding(t *testing.T) {
	hash, salt, err := Hash("pw")
	require.NoError(t, err)

	assert.False(t, Verify("pw", "not hex", salt))
	assert.False(t, Verify("pw", hash, "not hex"))
	assert.False(t, Verify("pw", hash[:2*keyLen-2], salt), "truncated hash never matches")
}
