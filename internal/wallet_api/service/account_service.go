package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash. The limit
// counts bytes, so 72 multibyte characters can exceed it.
var ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)

const maxPasswordBytes = 72

const (
	demoFirstName = "Demo"
	demoLastName  = "User"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	ledger   Ledger
	hashCost int
	logger   *slog.Logger
}

// NewAccountService creates a new account service. A hashCost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func NewAccountService(logger *slog.Logger, ledger Ledger, hashCost int) AccountService {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &AccountServiceImpl{
		ledger:   ledger,
		hashCost: hashCost,
		logger:   logger,
	}
}

// Register hashes the password and creates the account
func (s *AccountServiceImpl) Register(ctx context.Context, firstName, lastName, email, password string) (*account.Account, error) {
	if len(password) > maxPasswordBytes {
		registrationsTotal.WithLabelValues(outcomeFailure).Inc()
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		registrationsTotal.WithLabelValues(outcomeFailure).Inc()
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc, err := s.ledger.CreateAccount(ctx, strings.TrimSpace(firstName), strings.TrimSpace(lastName), email, string(hash))
	registrationsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail{}) {
			s.logger.Warn("Registration with an existing email", "email", account.NormalizeEmail(email))
			return nil, err
		}
		s.logger.Error("Failed to register account", "error", err)
		return nil, err
	}

	s.logger.Info("Account registered", "account_id", acc.ID)
	return acc, nil
}

// Authenticate checks the password against the stored bcrypt hash
func (s *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (*account.Account, error) {
	acc, err := s.ledger.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrEmailNotFound{}) {
			signInsTotal.WithLabelValues(outcomeFailure).Inc()
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up account for sign-in", "error", err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		signInsTotal.WithLabelValues(outcomeFailure).Inc()
		s.logger.Info("Sign-in rejected", "account_id", acc.ID)
		return nil, ErrInvalidCredentials
	}

	signInsTotal.WithLabelValues(outcomeSuccess).Inc()
	return acc, nil
}

// GetAccount retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.ledger.FindAccountByID(ctx, id)
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	accounts, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", "error", err)
		return nil, err
	}
	return accounts, nil
}

// SeedDemoAccount registers the demo account on first start and tops its
// balance up to the configured amount. An existing account is left alone so
// that restarts against a durable store do not reset it.
func (s *AccountServiceImpl) SeedDemoAccount(ctx context.Context, email, password string, balance decimal.Decimal) (*account.Account, error) {
	existing, err := s.ledger.FindAccountByEmail(ctx, email)
	if err == nil {
		s.logger.Info("Demo account already present", "account_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, account.ErrEmailNotFound{}) {
		return nil, fmt.Errorf("failed to look up demo account: %w", err)
	}

	acc, err := s.Register(ctx, demoFirstName, demoLastName, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to create demo account: %w", err)
	}

	acc, err = s.ledger.CorrectBalance(ctx, acc.ID, balance)
	if err != nil {
		return nil, fmt.Errorf("failed to set demo balance: %w", err)
	}

	s.logger.Info("Demo account seeded", "account_id", acc.ID, "balance", acc.Balance.StringFixed(2))
	return acc, nil
}
