package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents a persisted ledger entry. Rows are append-only:
// nothing updates or deletes them after creation.
type Transaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Type            string    `gorm:"type:varchar(16);not null"`
	Amount          int64     `gorm:"not null"`
	Fee             int64     `gorm:"not null;default:0"`
	BalanceAfter    int64     `gorm:"not null"`
	SenderNumber    string    `gorm:"type:varchar(12)"`
	RecipientNumber string    `gorm:"type:varchar(12)"`
	CreatedAt       time.Time `gorm:"index"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}
