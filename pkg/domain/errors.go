// Package domain holds the error taxonomy shared by services, the
// transaction engine, and the web layer.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAmountNotPositive is returned when an operation amount is not a
	// positive finite value. No state is touched.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrInvalidPIN is returned when PIN verification fails.
	ErrInvalidPIN = errors.New("invalid PIN")

	// ErrAccountLocked is returned when the acting account is locked out
	// after repeated failed PIN attempts.
	ErrAccountLocked = errors.New("account is locked")

	// ErrRecipientLocked is returned when the transfer recipient is
	// currently locked out.
	ErrRecipientLocked = errors.New("recipient account is locked")

	// ErrInsufficientFunds is returned when a withdrawal or transfer would
	// drive the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound is returned when a requested account or transaction does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrRecipientNotFound is returned when the transfer recipient account
	// number does not resolve.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrSelfTransfer is returned when a transfer names the sender as its
	// own recipient.
	ErrSelfTransfer = errors.New("cannot transfer to same account")

	// ErrUsernameTaken is returned when registration reuses an existing
	// username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidPINFormat is returned when a PIN does not consist of 4 to 6
	// digits.
	ErrInvalidPINFormat = errors.New("PIN must be 4 to 6 digits")

	// ErrUnauthorized is returned when a session credential is missing,
	// invalid, or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPersistence is returned in place of raw store errors. The detail
	// is logged internally, never surfaced to the caller.
	ErrPersistence = errors.New("persistence failure")
)

// InvalidPINError carries the remaining-attempt count after a failed PIN
// verification. It unwraps to ErrInvalidPIN.
type InvalidPINError struct {
	Remaining int
}

func (e *InvalidPINError) Error() string {
	if e.Remaining == 1 {
		return "invalid PIN: 1 attempt left"
	}
	return fmt.Sprintf("invalid PIN: %d attempts left", e.Remaining)
}

func (e *InvalidPINError) Unwrap() error {
	return ErrInvalidPIN
}
