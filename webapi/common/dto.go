package common

import (
	"time"

	"github.com/amirasaad/pinbank/pkg/domain/account"
)

// TransactionDTO is the wire representation of a ledger entry.
type TransactionDTO struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Fee             float64   `json:"fee,omitempty"`
	BalanceAfter    float64   `json:"balance_after"`
	SenderNumber    string    `json:"sender_account,omitempty"`
	RecipientNumber string    `json:"recipient_account,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ToTransactionDTO maps a ledger entry to its wire representation.
func ToTransactionDTO(tx *account.Transaction) *TransactionDTO {
	return &TransactionDTO{
		ID:              tx.ID.String(),
		Type:            string(tx.Type),
		Amount:          tx.Amount.Float(),
		Fee:             tx.Fee.Float(),
		BalanceAfter:    tx.BalanceAfter.Float(),
		SenderNumber:    tx.SenderNumber,
		RecipientNumber: tx.RecipientNumber,
		Timestamp:       tx.CreatedAt,
	}
}

// ToTransactionDTOs maps a ledger slice, preserving order.
func ToTransactionDTOs(txs []*account.Transaction) []*TransactionDTO {
	dtos := make([]*TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, ToTransactionDTO(tx))
	}
	return dtos
}
