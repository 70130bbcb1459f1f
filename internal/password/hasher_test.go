package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("longenough")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough", digest)

	assert.True(t, h.Verify("longenough", digest))
	assert.False(t, h.Verify("longenougH", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHash_SaltsEveryCall(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("whatever", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("whatever", ""))
}

func TestHash_TooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", MaxLength+1))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxLength))
	assert.NoError(t, err)
}

func TestNewHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewHasher(12).Cost())
}
