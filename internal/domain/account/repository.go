package account

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

// Repository is the authoritative store of accounts, keyed by ID with a
// uniqueness constraint on email.
type Repository interface {
	Get(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Create allocates the next ID and assigns the configured starting balance.
	Create(ctx context.Context, firstName, lastName, email, passwordHash string) (*Account, error)

	// SetBalance overwrites the stored balance. It does not check the sign;
	// that belongs to the caller.
	SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*Account, error)

	// ListAll returns accounts in insertion order.
	ListAll(ctx context.Context) ([]*Account, error)

	// LockForUpdate reads an account and, inside a unit of work, holds it
	// exclusively until the unit ends.
	LockForUpdate(ctx context.Context, id int64) (*Account, error)
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID int64
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + strconv.FormatInt(e.AccountID, 10)
}

// Is matches any ErrAccountNotFound when the target carries no ID.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == 0 || t.AccountID == e.AccountID
}

// ErrEmailNotFound indicates no account is registered under the email
type ErrEmailNotFound struct {
	Email string
}

func (e ErrEmailNotFound) Error() string {
	return "account not found for email: " + e.Email
}

func (e ErrEmailNotFound) Is(target error) bool {
	t, ok := target.(ErrEmailNotFound)
	if !ok {
		return false
	}
	return t.Email == "" || t.Email == e.Email
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "account with email already exists: " + e.Email
}

func (e ErrDuplicateEmail) Is(target error) bool {
	t, ok := target.(ErrDuplicateEmail)
	if !ok {
		return false
	}
	return t.Email == "" || t.Email == e.Email
}
