// Package hashing wraps the slow password-hashing collaborator behind a
// narrow interface so services never touch the algorithm directly.
package hashing

import "golang.org/x/crypto/bcrypt"

// Hasher produces and verifies opaque password hashes.
type Hasher interface {
	// Hash returns an opaque, salted hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the stored opaque hash.
	Verify(plaintext string, hash string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a BcryptHasher. A cost of 0 selects
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
