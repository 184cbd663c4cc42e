package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into stored digests and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Matches(digest, password string) bool
}

// NewHasher returns the hasher for the configured scheme ("sha256" or "bcrypt").
func NewHasher(scheme string, bcryptCost int) (Hasher, error) {
	switch scheme {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// SHA256Hasher stores the unsalted hex SHA-256 of the password. It is kept for
// compatibility with existing account rows; prefer BcryptHasher for new deployments.
type SHA256Hasher struct{}

// Hash returns the 64-character hex digest.
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Matches compares in constant time.
func (h SHA256Hasher) Matches(digest, password string) bool {
	computed, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher hashes with bcrypt at the configured cost.
type BcryptHasher struct {
	Cost int
}

// Hash hashes a plaintext password with configured cost.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches verifies a password against its hashed value.
func (BcryptHasher) Matches(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
