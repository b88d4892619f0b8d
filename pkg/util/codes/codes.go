package codes

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("invalid code length")
)

const (
	// SessionTokenByteLength is the number of random bytes for auth session
	// tokens (produces 64 hex chars).
	SessionTokenByteLength = 32

	// ResetTokenByteLength is the number of random bytes for password reset
	// tokens (produces 64 hex chars).
	ResetTokenByteLength = 32

	// ResetOTPLength is the number of digits in a password reset one-time code.
	ResetOTPLength = 6
)

// GenerateSessionToken creates the opaque identifier for an auth session.
// Returns a 64-character hex string.
func GenerateSessionToken() (string, error) {
	return GenerateSecureToken(SessionTokenByteLength)
}

// GenerateResetToken creates a secure token for password reset URLs.
// Returns a 64-character hex string.
func GenerateResetToken() (string, error) {
	return GenerateSecureToken(ResetTokenByteLength)
}

// GenerateResetOTP creates the numeric one-time code for a password reset.
func GenerateResetOTP() (string, error) {
	return GenerateNumericCode(ResetOTPLength)
}

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// GenerateNumericCode creates a numeric-only code of specified length.
func GenerateNumericCode(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}

	max := new(big.Int)
	max.Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	format := fmt.Sprintf("%%0%dd", length)
	return fmt.Sprintf(format, n), nil
}

// NormalizeCode normalizes a code for comparison (trim whitespace, lowercase hex).
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
