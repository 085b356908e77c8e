package memory

import (
	"context"

	"github.com/paywallet-ledger/internal/domain/transaction"
)

type transactionRepository struct {
	s  *Store
	tx *memTx
}

func (r *transactionRepository) Append(_ context.Context, draft transaction.Draft) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	guard(r.s, r.tx, true, func() {
		ts := r.s.clock().UTC()
		if ts.Before(r.s.lastTimestamp) {
			ts = r.s.lastTimestamp
		}

		record := &transaction.Transaction{
			ID:         int64(len(r.s.transactions) + 1),
			SenderID:   cloneID(draft.SenderID),
			ReceiverID: cloneID(draft.ReceiverID),
			Amount:     draft.Amount,
			Note:       cloneNote(draft.Note),
			Timestamp:  ts,
			Type:       draft.Type,
		}

		prevLast := r.s.lastTimestamp
		r.s.transactions = append(r.s.transactions, record)
		r.s.lastTimestamp = ts

		onRollback(r.tx, func() {
			r.s.transactions = r.s.transactions[:len(r.s.transactions)-1]
			r.s.lastTimestamp = prevLast
		})
		out = cloneTransaction(record)
	})
	return out, nil
}

func (r *transactionRepository) Get(_ context.Context, id int64) (*transaction.Transaction, error) {
	var (
		out *transaction.Transaction
		err error
	)
	guard(r.s, r.tx, false, func() {
		if id < 1 || id > int64(len(r.s.transactions)) {
			err = transaction.ErrTransactionNotFound{TransactionID: id}
			return
		}
		out = cloneTransaction(r.s.transactions[id-1])
	})
	return out, err
}

// ListByAccount walks the log backwards; IDs and timestamps grow together so
// this is newest first.
func (r *transactionRepository) ListByAccount(_ context.Context, accountID int64) ([]*transaction.Transaction, error) {
	out := []*transaction.Transaction{}
	guard(r.s, r.tx, false, func() {
		for i := len(r.s.transactions) - 1; i >= 0; i-- {
			if t := r.s.transactions[i]; t.Involves(accountID) {
				out = append(out, cloneTransaction(t))
			}
		}
	})
	return out, nil
}

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	cp := *t
	cp.SenderID = cloneID(t.SenderID)
	cp.ReceiverID = cloneID(t.ReceiverID)
	cp.Note = cloneNote(t.Note)
	return &cp
}

func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneNote(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ transaction.Repository = (*transactionRepository)(nil)
