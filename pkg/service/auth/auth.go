// Package auth provides registration, PIN login under the lockout policy,
// and JWT session credentials.
package auth

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
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dummyHash keeps PIN comparison time constant when the username does not
// resolve, to avoid a username-probing timing side channel.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// numberAttempts bounds account-number collision retries at registration.
const numberAttempts = 5

// LoginResult carries the session credential and profile returned on a
// successful login.
type LoginResult struct {
	Token         string
	AccountID     uuid.UUID
	AccountNumber string
	Balance       money.Money
	History       []*account.Transaction
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service's time source. Used by tests to simulate
// lock expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLockRegistry makes the service serialize account access through the
// given registry. The application passes the same registry to the
// transaction engine, so a login racing a transaction still sees a
// consistent failed-attempt counter.
func WithLockRegistry(locks *locking.Registry) Option {
	return func(s *Service) { s.locks = locks }
}

// Service implements registration and login.
type Service struct {
	uow    repository.UnitOfWork
	jwtCfg *config.Jwt
	cfg    *config.Bank
	logger *slog.Logger
	now    func() time.Time
	locks  *locking.Registry
}

// New creates an auth service.
func New(
	uow repository.UnitOfWork,
	jwtCfg *config.Jwt,
	cfg *config.Bank,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		uow:    uow,
		jwtCfg: jwtCfg,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		locks:  locking.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new account with a hashed PIN, a generated account
// number, and the initial deposit as opening balance.
func (s *Service) Register(
	ctx context.Context,
	username, pin string,
	initialDeposit float64,
) (a *account.Account, err error) {
	log := s.logger.With("context", "Register", "username", username)
	pin = utils.NormalizePIN(pin)
	if !utils.ValidPINFormat(pin) {
		return nil, domain.ErrInvalidPINFormat
	}
	opening, err := money.New(initialDeposit)
	if err != nil {
		return nil, err
	}
	if opening.IsNegative() {
		return nil, domain.ErrAmountNotPositive
	}
	hash, err := utils.HashPIN(pin)
	if err != nil {
		log.Error("PIN hashing failed", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		existing, err := accounts.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrUsernameTaken
		}
		// Numbers are random; retry the rare collision.
		for range numberAttempts {
			candidate, err := account.New().
				WithUsername(username).
				WithPINHash(hash).
				WithBalance(opening).
				Build()
			if err != nil {
				return err
			}
			taken, err := accounts.GetByNumber(ctx, candidate.Number)
			if err != nil {
				return err
			}
			if taken != nil {
				continue
			}
			if err := accounts.Create(ctx, candidate); err != nil {
				return err
			}
			a = candidate
			return nil
		}
		return errors.New("could not allocate a unique account number")
	})
	if err != nil {
		a = nil
		log.Error("registration failed", "error", err)
		return
	}
	log.Info("account registered", "accountNumber", a.Number)
	return
}

// Login verifies the PIN under the lockout policy and issues a session
// token. Failed attempts are persisted even though the login itself fails,
// so the counter survives restarts.
func (s *Service) Login(
	ctx context.Context,
	username, pin string,
) (res *LoginResult, err error) {
	log := s.logger.With("context", "Login", "username", username)
	pin = utils.NormalizePIN(pin)

	// Resolve the identity before taking the lock; it is immutable. Lockout
	// state is re-read under the lock.
	reader, err := s.uow.AccountRepository()
	if err != nil {
		return nil, domain.ErrPersistence
	}
	known, err := reader.GetByUsername(ctx, username)
	if err != nil {
		log.Error("login lookup failed", "error", err)
		return nil, domain.ErrPersistence
	}
	if known == nil {
		_ = utils.CheckPINHash(pin, dummyHash)
		log.Warn("login rejected", "error", domain.ErrNotFound)
		return nil, domain.ErrNotFound
	}

	// The failed-attempt counter is a read-modify-write; serialize it with
	// the engine's operations on the same account.
	unlock := s.locks.Lock(known.ID)
	defer unlock()

	var (
		acct    *account.Account
		authErr error
	)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.Get(ctx, known.ID)
		if err != nil {
			return err
		}
		if a == nil {
			authErr = domain.ErrNotFound
			return nil
		}
		now := s.now()
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
		if !utils.CheckPINHash(pin, a.PINHash) {
			remaining := a.RegisterFailedAttempt(now, s.cfg.LockoutThreshold, s.cfg.LockDuration)
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
		log.Error("login failed", "error", err)
		return nil, domain.ErrPersistence
	}
	if authErr != nil {
		log.Warn("login rejected", "error", authErr)
		return nil, authErr
	}

	token, err := s.GenerateToken(acct)
	if err != nil {
		log.Error("token generation failed", "error", err)
		return nil, err
	}
	ledger, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, domain.ErrPersistence
	}
	history, err := ledger.ListByAccount(ctx, acct.ID, 10)
	if err != nil {
		log.Error("history lookup failed", "error", err)
		return nil, domain.ErrPersistence
	}

	log.Info("login successful", "accountID", acct.ID)
	return &LoginResult{
		Token:         token,
		AccountID:     acct.ID,
		AccountNumber: acct.Number,
		Balance:       acct.Balance,
		History:       history,
	}, nil
}

// GenerateToken issues a signed session credential for the account.
func (s *Service) GenerateToken(a *account.Account) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["account_id"] = a.ID.String()
	claims["username"] = a.Username
	claims["exp"] = s.now().Add(s.jwtCfg.Expiry).Unix()
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// CurrentAccountID extracts the authenticated account identity from a
// verified token. Handlers pass the result explicitly to every engine
// operation; there is no ambient request-scoped user.
func (s *Service) CurrentAccountID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	raw, ok := claims["account_id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}
