// Package account implements the gorm-backed AccountRepository.
package account

import (
	"context"
	"errors"

	domainaccount "github.com/amirasaad/pinbank/pkg/domain/account"
	"github.com/amirasaad/pinbank/pkg/money"
	"github.com/amirasaad/pinbank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// New creates an account repository using the provided *gorm.DB session.
func New(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Get implements repository.AccountRepository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domainaccount.Account, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername implements repository.AccountRepository.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domainaccount.Account, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByNumber implements repository.AccountRepository.
func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*domainaccount.Account, error) {
	return r.first(ctx, "number = ?", number)
}

func (r *accountRepository) first(ctx context.Context, query string, arg any) (*domainaccount.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapModelToDomain(&m), nil
}

// Create implements repository.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, a *domainaccount.Account) error {
	m := mapDomainToModel(a)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Update implements repository.AccountRepository.
func (r *accountRepository) Update(ctx context.Context, a *domainaccount.Account) error {
	updates := map[string]any{
		"balance":         a.Balance.Cents(),
		"failed_attempts": a.FailedAttempts,
		"locked":          a.Locked,
		"lock_until":      a.LockUntil,
		"updated_at":      a.UpdatedAt,
	}
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", a.ID).
		Updates(updates).Error
}

func mapDomainToModel(a *domainaccount.Account) Account {
	return Account{
		ID:             a.ID,
		Username:       a.Username,
		PINHash:        a.PINHash,
		Number:         a.Number,
		Balance:        a.Balance.Cents(),
		FailedAttempts: a.FailedAttempts,
		Locked:         a.Locked,
		LockUntil:      a.LockUntil,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func mapModelToDomain(m *Account) *domainaccount.Account {
	return &domainaccount.Account{
		ID:             m.ID,
		Username:       m.Username,
		PINHash:        m.PINHash,
		Number:         m.Number,
		Balance:        money.FromCents(m.Balance),
		FailedAttempts: m.FailedAttempts,
		Locked:         m.Locked,
		LockUntil:      m.LockUntil,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
