// Package utils provides PIN hashing and normalization helpers.
package utils

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// HashPIN hashes a plain PIN using bcrypt.
func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPINHash compares a plain PIN with a bcrypt hash. bcrypt's comparison
// is constant-time with respect to the candidate.
func CheckPINHash(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// NormalizePIN canonicalizes a PIN candidate to its string form. PINs are
// credentials, never numbers: "0123" and "123" are different PINs, so no
// numeric coercion happens anywhere.
func NormalizePIN(pin string) string {
	return strings.TrimSpace(pin)
}

// ValidPINFormat reports whether a PIN consists of 4 to 6 digits.
func ValidPINFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}
