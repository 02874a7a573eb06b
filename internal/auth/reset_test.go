package auth

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenGenerator_Generate(t *testing.T) {
	clock := newClock()
	g := NewResetTokenGenerator(15 * time.Minute).WithClock(clock.Now)

	tok, err := g.Generate()
	require.NoError(t, err)

	raw, err := hex.DecodeString(tok.Plaintext)
	require.NoError(t, err)
	assert.Len(t, raw, 20)

	assert.NotEqual(t, tok.Plaintext, tok.Hash)
	assert.Equal(t, g.Hash(tok.Plaintext), tok.Hash)
	assert.Equal(t, clock.Now().Add(15*time.Minute), tok.ExpiresAt)
}

func TestResetTokenGenerator_Unique(t *testing.T) {
	g := NewResetTokenGenerator(time.Minute)
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		tok, err := g.Generate()
		require.NoError(t, err)
		_, dup := seen[tok.Plaintext]
		require.False(t, dup)
		seen[tok.Plaintext] = struct{}{}
	}
}

func TestResetTokenGenerator_HashIsDeterministic(t *testing.T) {
	g := NewResetTokenGenerator(time.Minute)

	assert.Equal(t, g.Hash("abc"), g.Hash("abc"))
	assert.NotEqual(t, g.Hash("abc"), g.Hash("abd"))
	assert.Len(t, g.Hash("abc"), 64)
}
