package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const resetTokenBytes = 20

// ResetToken is a freshly generated password reset token. Plaintext is handed to
// the user once; only Hash and ExpiresAt are persisted.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenGenerator creates single-use reset tokens valid for a fixed window.
type ResetTokenGenerator struct {
	ttl time.Duration
	now func() time.Time
}

func NewResetTokenGenerator(ttl time.Duration) *ResetTokenGenerator {
	return &ResetTokenGenerator{ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used to compute expiries.
func (g *ResetTokenGenerator) WithClock(now func() time.Time) *ResetTokenGenerator {
	g.now = now
	return g
}

func (g *ResetTokenGenerator) Generate() (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, fmt.Errorf("failed to read random bytes: %w", err)
	}

	plaintext := hex.EncodeToString(buf)
	return ResetToken{
		Plaintext: plaintext,
		Hash:      g.Hash(plaintext),
		ExpiresAt: g.now().Add(g.ttl),
	}, nil
}

// Hash derives the stored lookup value for a plaintext token.
func (g *ResetTokenGenerator) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func (g *ResetTokenGenerator) Now() time.Time {
	return g.now()
}
