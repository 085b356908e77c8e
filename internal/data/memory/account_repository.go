package memory

import (
	"context"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	s  *Store
	tx *memTx
}

func (r *accountRepository) Get(_ context.Context, id int64) (*account.Account, error) {
	var (
		out *account.Account
		err error
	)
	guard(r.s, r.tx, false, func() {
		acc, ok := r.s.accounts[id]
		if !ok {
			err = account.ErrAccountNotFound{AccountID: id}
			return
		}
		out = acc.Clone()
	})
	return out, err
}

func (r *accountRepository) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	normalized := account.NormalizeEmail(email)

	var (
		out *account.Account
		err error
	)
	guard(r.s, r.tx, false, func() {
		id, ok := r.s.emails[normalized]
		if !ok {
			err = account.ErrEmailNotFound{Email: normalized}
			return
		}
		out = r.s.accounts[id].Clone()
	})
	return out, err
}

func (r *accountRepository) Create(_ context.Context, firstName, lastName, email, passwordHash string) (*account.Account, error) {
	normalized := account.NormalizeEmail(email)

	var (
		out *account.Account
		err error
	)
	guard(r.s, r.tx, true, func() {
		if _, exists := r.s.emails[normalized]; exists {
			err = account.ErrDuplicateEmail{Email: normalized}
			return
		}

		r.s.lastAccountID++
		now := r.s.clock().UTC()
		acc := &account.Account{
			ID:           r.s.lastAccountID,
			FirstName:    firstName,
			LastName:     lastName,
			Email:        normalized,
			PasswordHash: passwordHash,
			Balance:      r.s.startingBalance,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.s.accounts[acc.ID] = acc
		r.s.emails[normalized] = acc.ID
		r.s.accountOrder = append(r.s.accountOrder, acc.ID)

		onRollback(r.tx, func() {
			delete(r.s.accounts, acc.ID)
			delete(r.s.emails, normalized)
			r.s.accountOrder = r.s.accountOrder[:len(r.s.accountOrder)-1]
			r.s.lastAccountID--
		})
		out = acc.Clone()
	})
	return out, err
}

func (r *accountRepository) SetBalance(_ context.Context, id int64, balance decimal.Decimal) (*account.Account, error) {
	var (
		out *account.Account
		err error
	)
	guard(r.s, r.tx, true, func() {
		acc, ok := r.s.accounts[id]
		if !ok {
			err = account.ErrAccountNotFound{AccountID: id}
			return
		}

		prevBalance, prevUpdatedAt := acc.Balance, acc.UpdatedAt
		acc.Balance = balance
		acc.UpdatedAt = r.s.clock().UTC()

		onRollback(r.tx, func() {
			acc.Balance = prevBalance
			acc.UpdatedAt = prevUpdatedAt
		})
		out = acc.Clone()
	})
	return out, err
}

func (r *accountRepository) ListAll(_ context.Context) ([]*account.Account, error) {
	var out []*account.Account
	guard(r.s, r.tx, false, func() {
		out = make([]*account.Account, 0, len(r.s.accountOrder))
		for _, id := range r.s.accountOrder {
			out = append(out, r.s.accounts[id].Clone())
		}
	})
	return out, nil
}

// LockForUpdate is a plain read: inside a unit of work the store lock is
// already held exclusively.
func (r *accountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	return r.Get(ctx, id)
}

var _ account.Repository = (*accountRepository)(nil)
