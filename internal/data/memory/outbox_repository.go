package memory

import (
	"context"
	"time"

	"github.com/paywallet-ledger/internal/domain/outbox"
)

type outboxRepository struct {
	s  *Store
	tx *memTx
}

func (r *outboxRepository) Create(_ context.Context, message *outbox.Message) error {
	guard(r.s, r.tx, true, func() {
		message.ID = int64(len(r.s.outbox) + 1)
		cp := *message
		r.s.outbox = append(r.s.outbox, &cp)

		onRollback(r.tx, func() {
			r.s.outbox = r.s.outbox[:len(r.s.outbox)-1]
		})
	})
	return nil
}

func (r *outboxRepository) GetPending(_ context.Context, limit int) ([]*outbox.Message, error) {
	var out []*outbox.Message
	guard(r.s, r.tx, false, func() {
		for _, m := range r.s.outbox {
			if limit > 0 && len(out) >= limit {
				return
			}
			if m.Status == outbox.StatusPending {
				cp := *m
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}

func (r *outboxRepository) UpdateStatus(_ context.Context, id int64, status outbox.Status) error {
	var err error
	guard(r.s, r.tx, true, func() {
		m, ok := r.find(id)
		if !ok {
			err = outbox.ErrMessageNotFound{ID: id}
			return
		}
		prevStatus, prevAttempt := m.Status, m.LastAttemptAt
		now := time.Now().UTC()
		m.Status = status
		m.LastAttemptAt = &now

		onRollback(r.tx, func() {
			m.Status = prevStatus
			m.LastAttemptAt = prevAttempt
		})
	})
	return err
}

func (r *outboxRepository) IncrementAttempts(_ context.Context, id int64) error {
	var err error
	guard(r.s, r.tx, true, func() {
		m, ok := r.find(id)
		if !ok {
			err = outbox.ErrMessageNotFound{ID: id}
			return
		}
		prevAttempts, prevAttempt := m.Attempts, m.LastAttemptAt
		m.IncrementAttempts()

		onRollback(r.tx, func() {
			m.Attempts = prevAttempts
			m.LastAttemptAt = prevAttempt
		})
	})
	return err
}

func (r *outboxRepository) GetByTransactionID(_ context.Context, transactionID int64) (*outbox.Message, error) {
	var (
		out *outbox.Message
		err = error(outbox.ErrMessageNotFound{TransactionID: transactionID})
	)
	guard(r.s, r.tx, false, func() {
		for _, m := range r.s.outbox {
			if m.TransactionID == transactionID {
				cp := *m
				out, err = &cp, nil
				return
			}
		}
	})
	return out, err
}

func (r *outboxRepository) find(id int64) (*outbox.Message, bool) {
	if id < 1 || id > int64(len(r.s.outbox)) {
		return nil, false
	}
	return r.s.outbox[id-1], true
}

var _ outbox.Repository = (*outboxRepository)(nil)
