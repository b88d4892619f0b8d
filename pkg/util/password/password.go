package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHash = errors.New("invalid password hash format")
	ErrMismatch    = errors.New("password does not match")
	ErrTooLong     = errors.New("password exceeds 72 bytes")
)

// DefaultCost is the bcrypt work factor used when no cost is configured.
const DefaultCost = 10

var defaultCost = DefaultCost

// Hash generates a bcrypt hash of the password using the default cost.
func Hash(password string) (string, error) {
	return HashWithCost(password, defaultCost)
}

// HashWithCost generates a bcrypt hash of the password with a custom work factor.
func HashWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify compares a password against a bcrypt hash.
// Returns nil if they match, ErrMismatch if they don't, or ErrInvalidHash
// if the stored hash is malformed.
func Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}

	return ErrInvalidHash
}

// NeedsRehash checks if a hash was created with an outdated cost.
// Returns true if the hash should be regenerated with the current default cost.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}

	return cost != defaultCost
}

// Generate creates a random password of the specified length.
// Uses URL-safe base64 characters (a-z, A-Z, 0-9, -, _).
func Generate(length int) string {
	if length <= 0 {
		length = 16
	}

	// Generate enough random bytes to produce the desired length after base64 encoding
	byteLen := (length*6 + 7) / 8
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("failed to generate random password: %w", err))
	}

	encoded := base64.RawURLEncoding.EncodeToString(b)
	if len(encoded) > length {
		return encoded[:length]
	}
	return encoded
}

// Match is a convenience wrapper that returns true if password matches hash.
func Match(hash, password string) bool {
	return Verify(hash, password) == nil
}
