package account

import (
	"time"

	"github.com/google/uuid"
)

// Account represents an account record in the database. The balance is
// stored in the smallest currency unit.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	PINHash        string    `gorm:"type:varchar(72);not null;column:pin_hash"`
	Number         string    `gorm:"type:varchar(12);uniqueIndex;not null"`
	Balance        int64     `gorm:"not null;default:0"`
	FailedAttempts int       `gorm:"not null;default:0"`
	Locked         bool      `gorm:"not null;default:false"`
	LockUntil      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}
