// Package repository provides the gorm-backed unit of work.
package repository

import (
	"context"

	infraaccount "github.com/amirasaad/pinbank/infra/repository/account"
	infratransaction "github.com/amirasaad/pinbank/infra/repository/transaction"
	"github.com/amirasaad/pinbank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides a transaction boundary and repository access in one
// abstraction. Repositories handed out inside Do are bound to the same
// database transaction, so a transfer's two balance updates and two ledger
// appends commit or roll back as a single unit.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction, providing a UoW whose
// repositories share that transaction's session.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// AccountRepository returns an account repository bound to the current
// session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return infraaccount.New(u.session()), nil
}

// TransactionRepository returns a ledger repository bound to the current
// session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return infratransaction.New(u.session()), nil
}

// session returns the transaction session inside Do, the plain session
// outside.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
