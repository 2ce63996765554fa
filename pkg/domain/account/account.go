// Package account defines the Account aggregate, its lockout state machine,
// and the immutable Transaction ledger record.
package account

import (
	"errors"
	"time"

	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/google/uuid"
)

// Account represents a user's bank account. It is the aggregate root for
// balance and lockout state.
//
// Invariants:
//   - Balance is never negative at any committed state.
//   - FailedAttempts is non-negative and resets to zero on a successful PIN
//     verification or lazy lock expiry.
//   - AccountNumber is unique and immutable after creation.
type Account struct {
	ID             uuid.UUID
	Username       string
	PINHash        string
	Number         string
	Balance        money.Money
	FailedAttempts int
	Locked         bool
	LockUntil      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Builder provides a fluent API for constructing Account instances, ensuring
// only valid accounts are built.
type Builder struct {
	id        uuid.UUID
	username  string
	pinHash   string
	number    string
	balance   money.Money
	createdAt time.Time
}

// New creates a new Builder with a fresh UUID, a generated account number,
// and a zero balance.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		number:    NewNumber(),
		createdAt: time.Now().UTC(),
	}
}

// WithID sets the ID for the account being built. Used for hydration.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUsername sets the username. This is a mandatory field.
func (b *Builder) WithUsername(username string) *Builder {
	b.username = username
	return b
}

// WithPINHash sets the hashed PIN credential. This is a mandatory field.
func (b *Builder) WithPINHash(hash string) *Builder {
	b.pinHash = hash
	return b
}

// WithNumber overrides the generated account number. Used for hydration.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithBalance sets the opening balance.
func (b *Builder) WithBalance(balance money.Money) *Builder {
	b.balance = balance
	return b
}

// Build finalizes construction, validating all invariants.
func (b *Builder) Build() (*Account, error) {
	if b.username == "" {
		return nil, errors.New("username is required")
	}
	if b.pinHash == "" {
		return nil, errors.New("PIN hash is required")
	}
	if !ValidNumber(b.number) {
		return nil, errors.New("invalid account number format")
	}
	if b.balance.IsNegative() {
		return nil, errors.New("opening balance cannot be negative")
	}
	return &Account{
		ID:        b.id,
		Username:  b.username,
		PINHash:   b.pinHash,
		Number:    b.number,
		Balance:   b.balance,
		CreatedAt: b.createdAt,
		UpdatedAt: b.createdAt,
	}, nil
}

// LockedOut reports whether the account is locked out at the given time.
// A set lock whose expiry has passed does not count; callers observing an
// expired lock must call ResetLockout and persist before proceeding.
func (a *Account) LockedOut(now time.Time) bool {
	return a.Locked && a.LockUntil != nil && a.LockUntil.After(now)
}

// LockExpired reports whether a previously engaged lock has lapsed. Expiry
// is evaluated lazily on access, not by a background sweep.
func (a *Account) LockExpired(now time.Time) bool {
	return a.Locked && (a.LockUntil == nil || !a.LockUntil.After(now))
}

// RegisterFailedAttempt increments the failed-attempt counter. When the
// counter reaches threshold the account locks until now + lockFor. It
// returns the number of attempts left before (or at) lockout, zero when the
// lock engages. The caller must persist the account before reporting the
// failure.
func (a *Account) RegisterFailedAttempt(now time.Time, threshold int, lockFor time.Duration) (remaining int) {
	a.FailedAttempts++
	if a.FailedAttempts >= threshold {
		until := now.Add(lockFor)
		a.Locked = true
		a.LockUntil = &until
		return 0
	}
	return threshold - a.FailedAttempts
}

// ResetLockout clears the failed-attempt counter and any lock. Applied after
// a successful PIN verification and on lazy lock expiry.
func (a *Account) ResetLockout() {
	a.FailedAttempts = 0
	a.Locked = false
	a.LockUntil = nil
}

// CanDebit reports whether the balance covers the given amount.
func (a *Account) CanDebit(amount money.Money) bool {
	return !amount.GreaterThan(a.Balance)
}
