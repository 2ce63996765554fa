// Package fixtures provides an in-memory store implementing the repository
// contracts for tests. Do runs its function against a snapshot-backed state:
// an error from the function restores the snapshot, mirroring a database
// rollback. Error fields allow injecting store failures mid-transaction.
package fixtures

import (
	"context"
	"sync"

	"github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/amirasaad/pinbank/pkg/repository"
	"github.com/google/uuid"
)

// Store is an in-memory repository.UnitOfWork. The zero value is not usable;
// create one with NewStore.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account.Account
	ledger   []*account.Transaction

	// Injectable failures. When set, the corresponding write fails with the
	// given error on its next use inside a unit of work.
	CreateErr error
	UpdateErr error
	AppendErr error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{accounts: make(map[uuid.UUID]*account.Account)}
}

// Seed inserts an account directly, bypassing any unit of work.
func (s *Store) Seed(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = copyAccount(a)
}

// Account returns the stored state of an account, or nil.
func (s *Store) Account(id uuid.UUID) *account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAccount(s.accounts[id])
}

// LedgerSize reports the total number of ledger entries across all accounts.
func (s *Store) LedgerSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

// Do runs fn against the live state under the store lock. If fn returns an
// error, every mutation it made is rolled back.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapAccounts := make(map[uuid.UUID]*account.Account, len(s.accounts))
	for id, a := range s.accounts {
		snapAccounts[id] = copyAccount(a)
	}
	snapLedger := make([]*account.Transaction, len(s.ledger))
	copy(snapLedger, s.ledger)

	if err := fn(&txStore{s}); err != nil {
		s.accounts = snapAccounts
		s.ledger = snapLedger
		return err
	}
	return nil
}

// AccountRepository returns a repository over the live state.
func (s *Store) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepo{store: s, locking: true}, nil
}

// TransactionRepository returns a repository over the live state.
func (s *Store) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{store: s, locking: true}, nil
}

// txStore is the unit-of-work view handed to Do callbacks. Its repositories
// skip locking: the store lock is already held for the whole transaction.
type txStore struct {
	store *Store
}

func (t *txStore) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(t)
}

func (t *txStore) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepo{store: t.store}, nil
}

func (t *txStore) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{store: t.store}, nil
}

type accountRepo struct {
	store   *Store
	locking bool
}

func (r *accountRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *accountRepo) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	defer r.lock()()
	return copyAccount(r.store.accounts[id]), nil
}

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	defer r.lock()()
	for _, a := range r.store.accounts {
		if a.Username == username {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *accountRepo) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	defer r.lock()()
	for _, a := range r.store.accounts {
		if a.Number == number {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (r *accountRepo) Create(ctx context.Context, a *account.Account) error {
	defer r.lock()()
	if err := r.store.CreateErr; err != nil {
		r.store.CreateErr = nil
		return err
	}
	r.store.accounts[a.ID] = copyAccount(a)
	return nil
}

func (r *accountRepo) Update(ctx context.Context, a *account.Account) error {
	defer r.lock()()
	if err := r.store.UpdateErr; err != nil {
		r.store.UpdateErr = nil
		return err
	}
	r.store.accounts[a.ID] = copyAccount(a)
	return nil
}

type transactionRepo struct {
	store   *Store
	locking bool
}

func (r *transactionRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *transactionRepo) Append(ctx context.Context, tx *account.Transaction) error {
	defer r.lock()()
	if err := r.store.AppendErr; err != nil {
		r.store.AppendErr = nil
		return err
	}
	cp := *tx
	r.store.ledger = append(r.store.ledger, &cp)
	return nil
}

func (r *transactionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*account.Transaction, error) {
	defer r.lock()()
	var out []*account.Transaction
	for i := len(r.store.ledger) - 1; i >= 0; i-- {
		if r.store.ledger[i].AccountID != accountID {
			continue
		}
		cp := *r.store.ledger[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func copyAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.LockUntil != nil {
		until := *a.LockUntil
		cp.LockUntil = &until
	}
	return &cp
}
