package account

import (
	"time"

	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/google/uuid"
)

// TransactionType identifies the kind of ledger entry.
type TransactionType string

// Ledger entry types.
const (
	TypeDeposit    TransactionType = "Deposit"
	TypeWithdrawal TransactionType = "Withdrawal"
	TypeTransfer   TransactionType = "Transfer"
)

// Transaction is an immutable, append-only ledger entry owned by exactly one
// account. A transfer produces two entries, one per ledger, referencing the
// same logical event; each carries the owning account's own post-operation
// balance.
type Transaction struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Type            TransactionType
	Amount          money.Money
	Fee             money.Money
	BalanceAfter    money.Money
	SenderNumber    string // set for transfers only
	RecipientNumber string // set for transfers only
	CreatedAt       time.Time
}

// NewDeposit creates a deposit ledger entry.
func NewDeposit(accountID uuid.UUID, amount, balanceAfter money.Money, at time.Time) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Type:         TypeDeposit,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}
}

// NewWithdrawal creates a withdrawal ledger entry.
func NewWithdrawal(accountID uuid.UUID, amount, balanceAfter money.Money, at time.Time) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Type:         TypeWithdrawal,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}
}

// NewTransferLeg creates one side of a transfer event. The fee is recorded
// on the sender's leg only; the recipient's leg carries a zero fee.
func NewTransferLeg(
	accountID uuid.UUID,
	amount, fee, balanceAfter money.Money,
	senderNumber, recipientNumber string,
	at time.Time,
) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		AccountID:       accountID,
		Type:            TypeTransfer,
		Amount:          amount,
		Fee:             fee,
		BalanceAfter:    balanceAfter,
		SenderNumber:    senderNumber,
		RecipientNumber: recipientNumber,
		CreatedAt:       at,
	}
}

// NewTransactionFromData hydrates a Transaction from raw data. This bypasses
// invariants and should only be used by repositories and test fixtures.
func NewTransactionFromData(
	id, accountID uuid.UUID,
	txType TransactionType,
	amount, fee, balanceAfter money.Money,
	senderNumber, recipientNumber string,
	created time.Time,
) *Transaction {
	return &Transaction{
		ID:              id,
		AccountID:       accountID,
		Type:            txType,
		Amount:          amount,
		Fee:             fee,
		BalanceAfter:    balanceAfter,
		SenderNumber:    senderNumber,
		RecipientNumber: recipientNumber,
		CreatedAt:       created,
	}
}
