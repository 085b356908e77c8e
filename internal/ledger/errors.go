package ledger

import (
	"errors"
	"fmt"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive with at most two decimal places")
	ErrSameAccount     = errors.New("sender and receiver must be different accounts")
	ErrNegativeBalance = errors.New("balance must not be negative")
	ErrBalanceLimit    = errors.New("balance would exceed the maximum storable amount")
)

// Party names the side of a movement an error refers to.
type Party string

const (
	PartySender   Party = "sender"
	PartyReceiver Party = "receiver"
)

// ErrAccountNotFound reports which side of a movement did not resolve.
type ErrAccountNotFound struct {
	AccountID int64
	Party     Party
}

func (e ErrAccountNotFound) Error() string {
	return fmt.Sprintf("%s account not found: %d", e.Party, e.AccountID)
}

// Is matches any ErrAccountNotFound when the target is the zero value, and
// otherwise compares only the fields the target sets.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID != 0 && t.AccountID != e.AccountID {
		return false
	}
	return t.Party == "" || t.Party == e.Party
}

// Unwrap lets callers that only know the account package match this error.
func (e ErrAccountNotFound) Unwrap() error {
	return account.ErrAccountNotFound{AccountID: e.AccountID}
}

// ErrInsufficientBalance indicates the debited account cannot cover the amount
type ErrInsufficientBalance struct {
	AccountID int64
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance on account %d: balance %s, amount %s",
		e.AccountID, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

func (e ErrInsufficientBalance) Is(target error) bool {
	t, ok := target.(ErrInsufficientBalance)
	if !ok {
		return false
	}
	return t.AccountID == 0 || t.AccountID == e.AccountID
}
