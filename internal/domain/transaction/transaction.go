package transaction

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Type tags what a transaction represents.
type Type string

const (
	TypeTransfer Type = "transfer"
	TypeBill     Type = "bill"
	TypeRecharge Type = "recharge"
)

var (
	typesMu sync.RWMutex
	types   = map[Type]struct{}{
		TypeTransfer: {},
		TypeBill:     {},
		TypeRecharge: {},
	}
)

// RegisterType adds a type tag to the accepted set.
func RegisterType(t Type) {
	typesMu.Lock()
	defer typesMu.Unlock()
	types[t] = struct{}{}
}

// IsValid reports whether t is a registered type tag.
func (t Type) IsValid() bool {
	typesMu.RLock()
	defer typesMu.RUnlock()
	_, ok := types[t]
	return ok
}

// Types returns the registered tags in lexical order.
func Types() []Type {
	typesMu.RLock()
	defer typesMu.RUnlock()
	out := make([]Type, 0, len(types))
	for t := range types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseType normalizes s into a registered Type. An empty string means transfer.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeTransfer, nil
	}
	t := Type(s)
	if !t.IsValid() {
		return "", ErrInvalidType{Type: s}
	}
	return t, nil
}

// Transaction is an immutable ledger record. A nil SenderID or ReceiverID
// stands for an external counterparty (a recharge source or a biller).
type Transaction struct {
	ID         int64           `json:"id"`
	SenderID   *int64          `json:"sender_id"`
	ReceiverID *int64          `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Type       Type            `json:"type"`
}

// Draft is a transaction before the store assigns its ID and timestamp.
type Draft struct {
	SenderID   *int64
	ReceiverID *int64
	Amount     decimal.Decimal
	Note       *string
	Type       Type
}

// Involves reports whether accountID is the sender or the receiver.
func (t *Transaction) Involves(accountID int64) bool {
	return isID(t.SenderID, accountID) || isID(t.ReceiverID, accountID)
}

// IsIncomingFor reports whether accountID received the funds.
func (t *Transaction) IsIncomingFor(accountID int64) bool {
	return isID(t.ReceiverID, accountID)
}

// CounterpartyOf returns the other side of the transaction as seen by accountID.
func (t *Transaction) CounterpartyOf(accountID int64) *int64 {
	if t.IsIncomingFor(accountID) {
		return t.SenderID
	}
	return t.ReceiverID
}

// NoteText returns the note or an empty string.
func (t *Transaction) NoteText() string {
	if t.Note == nil {
		return ""
	}
	return *t.Note
}

// OptionalNote turns blank input into a nil note.
func OptionalNote(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isID(p *int64, id int64) bool {
	return p != nil && *p == id
}
