package account_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuildsValidAccount(t *testing.T) {
	t.Parallel()
	opening := money.FromCents(100000)
	a, err := account.New().
		WithUsername("alice").
		WithPINHash("hash").
		WithBalance(opening).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Username)
	assert.True(t, a.Balance.Equals(opening))
	assert.NotEqual(t, a.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Regexp(t, regexp.MustCompile(`^BANK-\d{7}$`), a.Number)
	assert.Zero(t, a.FailedAttempts)
	assert.False(t, a.Locked)
}

func TestBuilderRequiresMandatoryFields(t *testing.T) {
	t.Parallel()
	_, err := account.New().WithPINHash("hash").Build()
	assert.Error(t, err)

	_, err = account.New().WithUsername("alice").Build()
	assert.Error(t, err)
}

func TestBuilderRejectsNegativeOpeningBalance(t *testing.T) {
	t.Parallel()
	_, err := account.New().
		WithUsername("alice").
		WithPINHash("hash").
		WithBalance(money.FromCents(-1)).
		Build()
	assert.Error(t, err)
}

func TestBuilderRejectsMalformedNumber(t *testing.T) {
	t.Parallel()
	_, err := account.New().
		WithUsername("alice").
		WithPINHash("hash").
		WithNumber("ACCT-1234567").
		Build()
	assert.Error(t, err)
}

func TestNewNumberFormat(t *testing.T) {
	t.Parallel()
	pattern := regexp.MustCompile(`^BANK-\d{7}$`)
	for range 100 {
		assert.Regexp(t, pattern, account.NewNumber())
	}
}

func TestRegisterFailedAttemptCountsDown(t *testing.T) {
	t.Parallel()
	a := testAccount(t)
	now := time.Now()

	assert.Equal(t, 2, a.RegisterFailedAttempt(now, 3, 30*time.Minute))
	assert.Equal(t, 1, a.RegisterFailedAttempt(now, 3, 30*time.Minute))
	assert.False(t, a.Locked)

	remaining := a.RegisterFailedAttempt(now, 3, 30*time.Minute)
	assert.Zero(t, remaining)
	assert.True(t, a.Locked)
	require.NotNil(t, a.LockUntil)
	assert.Equal(t, now.Add(30*time.Minute), *a.LockUntil)
	assert.True(t, a.LockedOut(now))
}

func TestLockExpiresLazily(t *testing.T) {
	t.Parallel()
	a := testAccount(t)
	now := time.Now()
	for range 3 {
		a.RegisterFailedAttempt(now, 3, 30*time.Minute)
	}
	require.True(t, a.LockedOut(now))

	later := now.Add(31 * time.Minute)
	assert.False(t, a.LockedOut(later))
	assert.True(t, a.LockExpired(later))

	a.ResetLockout()
	assert.Zero(t, a.FailedAttempts)
	assert.False(t, a.Locked)
	assert.Nil(t, a.LockUntil)
}

func TestResetLockoutAfterSuccess(t *testing.T) {
	t.Parallel()
	a := testAccount(t)
	now := time.Now()
	a.RegisterFailedAttempt(now, 3, 30*time.Minute)
	a.ResetLockout()

	// The counter starts over: two more failures do not lock.
	assert.Equal(t, 2, a.RegisterFailedAttempt(now, 3, 30*time.Minute))
	assert.Equal(t, 1, a.RegisterFailedAttempt(now, 3, 30*time.Minute))
	assert.False(t, a.Locked)
}

func TestCanDebit(t *testing.T) {
	t.Parallel()
	a := testAccount(t)
	a.Balance = money.FromCents(1000)

	assert.True(t, a.CanDebit(money.FromCents(1000)))
	assert.True(t, a.CanDebit(money.FromCents(999)))
	assert.False(t, a.CanDebit(money.FromCents(1001)))
}

func testAccount(t *testing.T) *account.Account {
	t.Helper()
	a, err := account.New().
		WithUsername("alice").
		WithPINHash("hash").
		Build()
	require.NoError(t, err)
	return a
}
