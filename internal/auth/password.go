package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretLength is the longest secret bcrypt accepts.
const MaxSecretLength = 72

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher builds a hasher; out of range costs fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the self-describing bcrypt hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxSecretLength {
		return "", ErrSecretTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrSecretTooLong
		}
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether secret matches hashed. Malformed hashes never match.
// bcrypt ignores key bytes past MaxSecretLength, so longer secrets never match.
func (h *Hasher) Verify(secret, hashed string) bool {
	if secret == "" || hashed == "" || len(secret) > MaxSecretLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
