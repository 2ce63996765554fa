// Package repository defines the persistence contracts consumed by the
// services and the transaction engine.
package repository

import (
	"context"

	"github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access.
// Lookups return (nil, nil) when no record matches.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
}

// TransactionRepository defines the interface for the append-only ledger.
// Entries are never updated or deleted.
type TransactionRepository interface {
	Append(ctx context.Context, tx *account.Transaction) error
	// ListByAccount returns the account's ledger entries most-recent-first.
	// A limit of zero means no limit.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*account.Transaction, error)
}

// UnitOfWork provides a transaction boundary and repository access in one
// abstraction. Repositories obtained inside Do share the same store session,
// so every write within one Do call commits or rolls back as a unit.
// Repositories obtained outside Do operate on plain sessions.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
}
