package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// NumberPrefix is the fixed prefix of every account number.
const NumberPrefix = "BANK-"

var numberPattern = regexp.MustCompile(`^BANK-\d{7}$`)

// NewNumber generates a random account number of the form BANK- followed by
// seven digits. Uniqueness is enforced by the store; callers retry on
// collision.
func NewNumber() string {
	// 1000000..9999999, never a leading zero
	n, err := rand.Int(rand.Reader, big.NewInt(9000000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("account number generation: %v", err))
	}
	return fmt.Sprintf("%s%d", NumberPrefix, n.Int64()+1000000)
}

// ValidNumber reports whether s is a well-formed account number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
