// Package transaction implements the gorm-backed append-only ledger.
package transaction

import (
	"context"

	domainaccount "github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/amirasaad/pinbank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// New creates a ledger repository using the provided *gorm.DB session.
func New(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Append implements repository.TransactionRepository.
func (r *transactionRepository) Append(ctx context.Context, tx *domainaccount.Transaction) error {
	m := mapDomainToModel(tx)
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListByAccount implements repository.TransactionRepository.
func (r *transactionRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit int,
) ([]*domainaccount.Transaction, error) {
	q := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*domainaccount.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDomain(&rows[i]))
	}
	return result, nil
}

func mapDomainToModel(tx *domainaccount.Transaction) Transaction {
	return Transaction{
		ID:              tx.ID,
		AccountID:       tx.AccountID,
		Type:            string(tx.Type),
		Amount:          tx.Amount.Cents(),
		Fee:             tx.Fee.Cents(),
		BalanceAfter:    tx.BalanceAfter.Cents(),
		SenderNumber:    tx.SenderNumber,
		RecipientNumber: tx.RecipientNumber,
		CreatedAt:       tx.CreatedAt,
	}
}

func mapModelToDomain(m *Transaction) *domainaccount.Transaction {
	return domainaccount.NewTransactionFromData(
		m.ID,
		m.AccountID,
		domainaccount.TransactionType(m.Type),
		money.FromCents(m.Amount),
		money.FromCents(m.Fee),
		money.FromCents(m.BalanceAfter),
		m.SenderNumber,
		m.RecipientNumber,
		m.CreatedAt,
	)
}
