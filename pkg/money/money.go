// Package money provides a Money value object for account balances and
// transaction amounts. Amounts are stored as an integer number of cents to
// avoid floating point drift in balance arithmetic.
package money

import (
	"errors"
	"fmt"
	"math"
)

// Amount represents a monetary amount as an integer in the smallest currency
// unit (cents).
type Amount = int64

var (
	// ErrAmountNotFinite is returned when an amount is NaN or infinite.
	ErrAmountNotFinite = errors.New("amount must be a finite number")

	// ErrAmountOverflow is returned when an operation would overflow the
	// safe integer range.
	ErrAmountOverflow = errors.New("amount exceeds maximum safe value")
)

// maxSafe bounds amounts so that additions of two valid amounts can never
// overflow int64.
const maxSafe = math.MaxInt64 / 4

// Money represents a monetary value.
//
// Invariants:
//   - The amount is always stored in the smallest currency unit (cents).
//   - Construction from a float rejects NaN and infinities.
type Money struct {
	amount Amount
}

// Zero is the zero monetary value.
var Zero = Money{}

// New creates a Money value from a float amount expressed in main units
// (e.g. 10.50 becomes 1050 cents). The amount is rounded half away from zero
// to the nearest cent.
func New(amount float64) (m Money, err error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		err = ErrAmountNotFinite
		return
	}
	cents := math.Round(amount * 100)
	if cents > maxSafe || cents < -maxSafe {
		err = ErrAmountOverflow
		return
	}
	m = Money{amount: Amount(cents)}
	return
}

// FromCents creates a Money value directly from the smallest currency unit.
// Used for hydrating persisted values.
func FromCents(cents Amount) Money {
	return Money{amount: cents}
}

// Cents returns the amount in the smallest currency unit.
func (m Money) Cents() Amount {
	return m.amount
}

// Float returns the amount in main units (e.g. 1050 cents becomes 10.50).
func (m Money) Float() float64 {
	return float64(m.amount) / 100
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns the sum of two Money values.
func (m Money) Add(other Money) (Money, error) {
	sum := m.amount + other.amount
	if sum > maxSafe || sum < -maxSafe {
		return Zero, ErrAmountOverflow
	}
	return Money{amount: sum}, nil
}

// Sub returns the difference of two Money values.
func (m Money) Sub(other Money) (Money, error) {
	diff := m.amount - other.amount
	if diff > maxSafe || diff < -maxSafe {
		return Zero, ErrAmountOverflow
	}
	return Money{amount: diff}, nil
}

// LessThan reports whether m is strictly less than other.
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// Equals reports whether two Money values are equal.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount
}

// MulRate returns the amount multiplied by a fractional rate, rounded half
// away from zero to the nearest cent. Used for fee computation.
func (m Money) MulRate(rate float64) (Money, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Zero, ErrAmountNotFinite
	}
	product := math.Round(float64(m.amount) * rate)
	if product > maxSafe || product < -maxSafe {
		return Zero, ErrAmountOverflow
	}
	return Money{amount: Amount(product)}, nil
}

// String formats the amount in main units with two decimal places.
func (m Money) String() string {
	return fmt.Sprintf("%.2f", m.Float())
}
