package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. The salt is generated
// per call and embedded in the digest, so digests are self-contained.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs outside the
// bcrypt range are clamped to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// NewTestHasher returns a Hasher with the minimum bcrypt cost. Hashing at
// production cost takes hundreds of milliseconds per call, which adds up
// fast in a test suite.
func NewTestHasher() *Hasher {
	return &Hasher{cost: bcrypt.MinCost}
}

// Hash returns the bcrypt digest of password. It fails only on resource
// errors or when the password exceeds 72 bytes, which bcrypt would
// otherwise silently truncate.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", fmt.Errorf("password exceeds 72 bytes")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A mismatch is a normal
// false result, not an error. The comparison is constant-time.
func (h *Hasher) Verify(password string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
