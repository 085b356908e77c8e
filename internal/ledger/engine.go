// Package ledger moves money between accounts. Every movement validates,
// adjusts balances and appends its transaction record as one unit: readers
// see either all of it or none of it.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/paywallet-ledger/internal/domain/shared"
	"github.com/paywallet-ledger/internal/domain/store"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount from SenderID to ReceiverID. SenderID is the
// authenticated caller; resolving it is the boundary's job.
type TransferRequest struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
	Note       *string
	Type       transaction.Type
}

type Engine struct {
	store         store.Store
	locks         *accountLocker
	publishEvents bool
}

type Option func(*Engine)

// WithEventPublishing writes a transaction.recorded outbox message in the
// same unit of work as every movement.
func WithEventPublishing(enabled bool) Option {
	return func(e *Engine) {
		e.publishEvents = enabled
	}
}

func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		locks: newAccountLocker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// movement is one balance change. A nil side is an external counterparty.
type movement struct {
	senderID   *int64
	receiverID *int64
	amount     decimal.Decimal
	note       *string
	txType     transaction.Type
}

func (m movement) accountIDs() []int64 {
	ids := make([]int64, 0, 2)
	if m.senderID != nil {
		ids = append(ids, *m.senderID)
	}
	if m.receiverID != nil {
		ids = append(ids, *m.receiverID)
	}
	return ids
}

// Transfer validates req in this order, first failure wins: amount, type,
// distinct accounts, sender exists, receiver exists, sender balance.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (*transaction.Transaction, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	txType, err := transaction.ParseType(string(req.Type))
	if err != nil {
		return nil, err
	}

	if req.SenderID == req.ReceiverID {
		return nil, ErrSameAccount
	}

	senderID, receiverID := req.SenderID, req.ReceiverID
	return e.execute(ctx, movement{
		senderID:   &senderID,
		receiverID: &receiverID,
		amount:     req.Amount,
		note:       req.Note,
		txType:     txType,
	})
}

// Recharge credits accountID from an external source.
func (e *Engine) Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return e.execute(ctx, movement{
		receiverID: &accountID,
		amount:     amount,
		note:       note,
		txType:     transaction.TypeRecharge,
	})
}

// PayBill debits accountID towards an external biller.
func (e *Engine) PayBill(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return e.execute(ctx, movement{
		senderID: &accountID,
		amount:   amount,
		note:     note,
		txType:   transaction.TypeBill,
	})
}

func (e *Engine) execute(ctx context.Context, m movement) (*transaction.Transaction, error) {
	unlock := e.locks.lock(m.accountIDs()...)
	defer unlock()

	var recorded *transaction.Transaction
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		parties, err := lockParties(ctx, tx.Accounts(), m)
		if err != nil {
			return err
		}

		if m.senderID != nil {
			sender := parties[*m.senderID]
			if !sender.CanDebit(m.amount) {
				return ErrInsufficientBalance{AccountID: sender.ID, Balance: sender.Balance, Amount: m.amount}
			}
			if _, err := tx.Accounts().SetBalance(ctx, sender.ID, sender.Balance.Sub(m.amount)); err != nil {
				return fmt.Errorf("failed to debit account %d: %w", sender.ID, err)
			}
		}

		if m.receiverID != nil {
			receiver := parties[*m.receiverID]
			credited := receiver.Balance.Add(m.amount)
			if !transaction.WithinAmountLimits(credited) {
				return ErrBalanceLimit
			}
			if _, err := tx.Accounts().SetBalance(ctx, receiver.ID, credited); err != nil {
				return fmt.Errorf("failed to credit account %d: %w", receiver.ID, err)
			}
		}

		recorded, err = tx.Transactions().Append(ctx, transaction.Draft{
			SenderID:   m.senderID,
			ReceiverID: m.receiverID,
			Amount:     m.amount,
			Note:       m.note,
			Type:       m.txType,
		})
		if err != nil {
			return fmt.Errorf("failed to append transaction: %w", err)
		}

		if !e.publishEvents {
			return nil
		}

		message, err := outbox.NewMessage(transaction.NewRecordedEvent(recorded, shared.CorrelationIDFromContext(ctx)))
		if err != nil {
			return fmt.Errorf("failed to build outbox message for transaction %d: %w", recorded.ID, err)
		}
		if err := tx.Outbox().Create(ctx, message); err != nil {
			return fmt.Errorf("failed to create outbox message for transaction %d: %w", recorded.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

// lockParties locks the movement's accounts in ascending ID order, then
// reports a missing sender before a missing receiver.
func lockParties(ctx context.Context, accounts account.Repository, m movement) (map[int64]*account.Account, error) {
	ids := m.accountIDs()
	if len(ids) == 2 && ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}

	parties := make(map[int64]*account.Account, len(ids))
	for _, id := range ids {
		acc, err := accounts.LockForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound{}) {
				continue
			}
			return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		parties[id] = acc
	}

	if m.senderID != nil && parties[*m.senderID] == nil {
		return nil, ErrAccountNotFound{AccountID: *m.senderID, Party: PartySender}
	}
	if m.receiverID != nil && parties[*m.receiverID] == nil {
		return nil, ErrAccountNotFound{AccountID: *m.receiverID, Party: PartyReceiver}
	}
	return parties, nil
}

// CorrectBalance overwrites an account's balance outside the transfer flow,
// for seeding and administrative fixes. No transaction is recorded.
func (e *Engine) CorrectBalance(ctx context.Context, accountID int64, balance decimal.Decimal) (*account.Account, error) {
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if !transaction.WithinAmountLimits(balance) {
		return nil, ErrBalanceLimit
	}

	unlock := e.locks.lock(accountID)
	defer unlock()

	var updated *account.Account
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Accounts().LockForUpdate(ctx, accountID); err != nil {
			return err
		}
		var err error
		updated, err = tx.Accounts().SetBalance(ctx, accountID, balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Engine) CreateAccount(ctx context.Context, firstName, lastName, email, passwordHash string) (*account.Account, error) {
	return e.store.Accounts().Create(ctx, firstName, lastName, email, passwordHash)
}

func (e *Engine) FindAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	return e.store.Accounts().GetByEmail(ctx, email)
}

func (e *Engine) FindAccountByID(ctx context.Context, id int64) (*account.Account, error) {
	return e.store.Accounts().Get(ctx, id)
}

// ListTransactionsFor returns the account's transactions, newest first.
func (e *Engine) ListTransactionsFor(ctx context.Context, accountID int64) ([]*transaction.Transaction, error) {
	return e.store.Transactions().ListByAccount(ctx, accountID)
}

func (e *Engine) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return e.store.Accounts().ListAll(ctx)
}
