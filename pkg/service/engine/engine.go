// Package engine implements the transaction engine: the single place where
// account balances are mutated and ledger entries are appended. Every
// operation authenticates the caller's PIN under the lockout policy, applies
// its mutations inside one unit of work, and serializes concurrent access
// per account.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/pkg/domain"
	"github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/amirasaad/pinbank/pkg/locking"
	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/amirasaad/pinbank/pkg/repository"
	"github.com/amirasaad/pinbank/pkg/utils"
	"github.com/google/uuid"
)

// Receipt is the result of a successful balance mutation.
type Receipt struct {
	NewBalance  money.Money
	Transaction *account.Transaction
}

// BalanceView is the read-only result of a balance inquiry.
type BalanceView struct {
	AccountNumber string
	Balance       money.Money
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Used by tests to simulate
// lock expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLockRegistry makes the engine serialize account access through the
// given registry instead of a private one. The application shares one
// registry between the engine and the auth service.
func WithLockRegistry(locks *locking.Registry) Option {
	return func(e *Engine) { e.locks = locks }
}

// Engine orchestrates PIN verification, lockout policy, balance mutation,
// fee computation, and ledger appends.
//
// Concurrency: operations against the same account are serialized by a
// per-account mutex; a transfer acquires both accounts' mutexes in ascending
// ID order so opposing transfers between the same pair cannot deadlock.
// Balances are never cached: each operation re-reads state after acquiring
// the lock.
type Engine struct {
	uow    repository.UnitOfWork
	cfg    *config.Bank
	logger *slog.Logger
	now    func() time.Time
	locks  *locking.Registry
}

// New creates a transaction engine with the given policy configuration.
func New(uow repository.UnitOfWork, cfg *config.Bank, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		uow:    uow,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		locks:  locking.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deposit adds funds to the account and appends a Deposit ledger entry.
func (e *Engine) Deposit(
	ctx context.Context,
	accountID uuid.UUID,
	amount money.Money,
	pin string,
) (r *Receipt, err error) {
	log := e.logger.With("op", "deposit", "accountID", accountID)
	if err = validateAmount(amount); err != nil {
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	unlock := e.locks.Lock(accountID)
	defer unlock()

	// Once writes start they must not be abandoned mid-commit.
	commitCtx := context.WithoutCancel(ctx)
	if _, err = e.authenticate(commitCtx, accountID, pin); err != nil {
		return
	}

	err = e.uow.Do(commitCtx, func(uow repository.UnitOfWork) error {
		accounts, ledger, err := repos(uow)
		if err != nil {
			return err
		}
		a, err := accounts.Get(commitCtx, accountID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		newBalance, err := a.Balance.Add(amount)
		if err != nil {
			return err
		}
		now := e.now()
		a.Balance = newBalance
		a.UpdatedAt = now
		tx := account.NewDeposit(a.ID, amount, newBalance, now)
		if err := accounts.Update(commitCtx, a); err != nil {
			return err
		}
		if err := ledger.Append(commitCtx, tx); err != nil {
			return err
		}
		r = &Receipt{NewBalance: newBalance, Transaction: tx}
		return nil
	})
	if err != nil {
		r = nil
		err = e.mapStoreErr(log, err)
		return
	}
	log.Info("deposit committed", "amount", amount, "newBalance", r.NewBalance)
	return
}

// Withdraw removes funds from the account and appends a Withdrawal ledger
// entry. Fails with ErrInsufficientFunds before any mutation when the
// balance does not cover the amount.
func (e *Engine) Withdraw(
	ctx context.Context,
	accountID uuid.UUID,
	amount money.Money,
	pin string,
) (r *Receipt, err error) {
	log := e.logger.With("op", "withdraw", "accountID", accountID)
	if err = validateAmount(amount); err != nil {
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	unlock := e.locks.Lock(accountID)
	defer unlock()

	commitCtx := context.WithoutCancel(ctx)
	if _, err = e.authenticate(commitCtx, accountID, pin); err != nil {
		return
	}

	err = e.uow.Do(commitCtx, func(uow repository.UnitOfWork) error {
		accounts, ledger, err := repos(uow)
		if err != nil {
			return err
		}
		a, err := accounts.Get(commitCtx, accountID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if !a.CanDebit(amount) {
			return domain.ErrInsufficientFunds
		}
		newBalance, err := a.Balance.Sub(amount)
		if err != nil {
			return err
		}
		now := e.now()
		a.Balance = newBalance
		a.UpdatedAt = now
		tx := account.NewWithdrawal(a.ID, amount, newBalance, now)
		if err := accounts.Update(commitCtx, a); err != nil {
			return err
		}
		if err := ledger.Append(commitCtx, tx); err != nil {
			return err
		}
		r = &Receipt{NewBalance: newBalance, Transaction: tx}
		return nil
	})
	if err != nil {
		r = nil
		err = e.mapStoreErr(log, err)
		return
	}
	log.Info("withdrawal committed", "amount", amount, "newBalance", r.NewBalance)
	return
}

// Transfer moves funds from the sender to the account identified by
// recipientNumber. The fee is absorbed from the sender's side: the sender is
// debited amount - fee and the recipient is credited the full nominal
// amount. Both balance mutations and both ledger legs commit as one unit.
func (e *Engine) Transfer(
	ctx context.Context,
	senderID uuid.UUID,
	recipientNumber string,
	amount money.Money,
	pin string,
) (r *Receipt, err error) {
	log := e.logger.With("op", "transfer", "senderID", senderID, "recipient", recipientNumber)
	if err = validateAmount(amount); err != nil {
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}

	// Resolve the recipient before taking locks; identity is immutable so a
	// stale read here is harmless. State is re-read under the locks.
	accounts, err := e.uow.AccountRepository()
	if err != nil {
		return nil, e.mapStoreErr(log, err)
	}
	recipient, err := accounts.GetByNumber(ctx, recipientNumber)
	if err != nil {
		return nil, e.mapStoreErr(log, err)
	}
	if recipient == nil {
		return nil, domain.ErrRecipientNotFound
	}
	if recipient.ID == senderID {
		return nil, domain.ErrSelfTransfer
	}

	unlock := e.locks.LockPair(senderID, recipient.ID)
	defer unlock()

	commitCtx := context.WithoutCancel(ctx)
	if _, err = e.authenticate(commitCtx, senderID, pin); err != nil {
		return
	}

	recipientID := recipient.ID
	err = e.uow.Do(commitCtx, func(uow repository.UnitOfWork) error {
		accounts, ledger, err := repos(uow)
		if err != nil {
			return err
		}
		sender, err := accounts.Get(commitCtx, senderID)
		if err != nil {
			return err
		}
		if sender == nil {
			return domain.ErrNotFound
		}
		recipient, err := accounts.Get(commitCtx, recipientID)
		if err != nil {
			return err
		}
		if recipient == nil {
			return domain.ErrRecipientNotFound
		}
		now := e.now()
		if recipient.LockExpired(now) {
			recipient.ResetLockout()
		}
		if recipient.LockedOut(now) {
			return domain.ErrRecipientLocked
		}

		fee, err := amount.MulRate(e.cfg.TransferFeeRate)
		if err != nil {
			return err
		}
		debit, err := amount.Sub(fee)
		if err != nil {
			return err
		}
		if !sender.CanDebit(debit) {
			return domain.ErrInsufficientFunds
		}
		senderBalance, err := sender.Balance.Sub(debit)
		if err != nil {
			return err
		}
		recipientBalance, err := recipient.Balance.Add(amount)
		if err != nil {
			return err
		}

		sender.Balance = senderBalance
		sender.UpdatedAt = now
		recipient.Balance = recipientBalance
		recipient.UpdatedAt = now

		senderLeg := account.NewTransferLeg(
			sender.ID, amount, fee, senderBalance,
			sender.Number, recipient.Number, now,
		)
		recipientLeg := account.NewTransferLeg(
			recipient.ID, amount, money.Zero, recipientBalance,
			sender.Number, recipient.Number, now,
		)

		if err := accounts.Update(commitCtx, sender); err != nil {
			return err
		}
		if err := accounts.Update(commitCtx, recipient); err != nil {
			return err
		}
		if err := ledger.Append(commitCtx, senderLeg); err != nil {
			return err
		}
		if err := ledger.Append(commitCtx, recipientLeg); err != nil {
			return err
		}
		r = &Receipt{NewBalance: senderBalance, Transaction: senderLeg}
		return nil
	})
	if err != nil {
		r = nil
		err = e.mapStoreErr(log, err)
		return
	}
	log.Info("transfer committed",
		"amount", amount,
		"fee", r.Transaction.Fee,
		"senderBalance", r.NewBalance,
	)
	return
}

// GetBalance returns the account's current balance. Read-only.
func (e *Engine) GetBalance(ctx context.Context, accountID uuid.UUID) (*BalanceView, error) {
	accounts, err := e.uow.AccountRepository()
	if err != nil {
		return nil, e.mapStoreErr(e.logger, err)
	}
	a, err := accounts.Get(ctx, accountID)
	if err != nil {
		return nil, e.mapStoreErr(e.logger, err)
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return &BalanceView{AccountNumber: a.Number, Balance: a.Balance}, nil
}

// GetStatement returns the account's ledger entries most-recent-first. A
// limit of zero means the full ledger. Read-only: re-querying without
// intervening writes yields an identical sequence.
func (e *Engine) GetStatement(
	ctx context.Context,
	accountID uuid.UUID,
	limit int,
) ([]*account.Transaction, error) {
	ledger, err := e.uow.TransactionRepository()
	if err != nil {
		return nil, e.mapStoreErr(e.logger, err)
	}
	txs, err := ledger.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, e.mapStoreErr(e.logger, err)
	}
	return txs, nil
}

// authenticate verifies the PIN under the lockout policy. Lockout
// transitions (attempt increments, lock engagement, lazy expiry resets) are
// committed even when authentication fails, so they survive restarts and are
// visible to concurrent requests. Must be called with the account's mutex
// held.
func (e *Engine) authenticate(
	ctx context.Context,
	accountID uuid.UUID,
	pin string,
) (*account.Account, error) {
	var (
		acct    *account.Account
		authErr error
	)
	err := e.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		now := e.now()
		if a.LockExpired(now) {
			a.ResetLockout()
			if err := accounts.Update(ctx, a); err != nil {
				return err
			}
		}
		if a.LockedOut(now) {
			authErr = domain.ErrAccountLocked
			return nil
		}
		if !utils.CheckPINHash(utils.NormalizePIN(pin), a.PINHash) {
			remaining := a.RegisterFailedAttempt(now, e.cfg.LockoutThreshold, e.cfg.LockDuration)
			// commit the counter even though the operation fails
			if err := accounts.Update(ctx, a); err != nil {
				return err
			}
			authErr = &domain.InvalidPINError{Remaining: remaining}
			return nil
		}
		if a.FailedAttempts > 0 {
			a.ResetLockout()
			if err := accounts.Update(ctx, a); err != nil {
				return err
			}
		}
		acct = a
		return nil
	})
	if err != nil {
		return nil, e.mapStoreErr(e.logger.With("op", "authenticate"), err)
	}
	if authErr != nil {
		return nil, authErr
	}
	return acct, nil
}

func validateAmount(amount money.Money) error {
	if !amount.IsPositive() {
		return domain.ErrAmountNotPositive
	}
	return nil
}

func repos(uow repository.UnitOfWork) (repository.AccountRepository, repository.TransactionRepository, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := uow.TransactionRepository()
	if err != nil {
		return nil, nil, err
	}
	return accounts, ledger, nil
}

// passthrough lists the errors callers are meant to see as-is. Anything else
// coming out of the store is logged and reported as ErrPersistence.
var passthrough = []error{
	domain.ErrAmountNotPositive,
	domain.ErrInvalidPIN,
	domain.ErrAccountLocked,
	domain.ErrRecipientLocked,
	domain.ErrInsufficientFunds,
	domain.ErrNotFound,
	domain.ErrRecipientNotFound,
	domain.ErrSelfTransfer,
	money.ErrAmountOverflow,
	money.ErrAmountNotFinite,
}

func (e *Engine) mapStoreErr(log *slog.Logger, err error) error {
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	log.Error("store operation failed", "error", err)
	return domain.ErrPersistence
}
