// Package history builds the display view of an account's transactions:
// names resolved against the roster, then filtered, sorted and paginated.
// Build is a pure function of its inputs.
package history

import (
	"slices"
	"time"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// UnknownName stands in for a counterparty that is external or unresolved.
const UnknownName = "Unknown"

// Entry is one transaction as seen by the requesting account.
type Entry struct {
	ID               int64            `json:"id"`
	SenderID         *int64           `json:"sender_id"`
	ReceiverID       *int64           `json:"receiver_id"`
	Amount           decimal.Decimal  `json:"amount"`
	Note             *string          `json:"note,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	Type             transaction.Type `json:"type"`
	SenderName       string           `json:"sender_name"`
	ReceiverName     string           `json:"receiver_name"`
	CounterpartyID   *int64           `json:"counterparty_id"`
	CounterpartyName string           `json:"counterparty_name"`
	IsIncoming       bool             `json:"is_incoming"`
}

type Page struct {
	Items      []Entry `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalItems int     `json:"total_items"`
	TotalPages int     `json:"total_pages"`
}

// Build annotates, filters, sorts and paginates txs for requestingID.
// Pagination comes last. Inputs are not modified.
func Build(requestingID int64, txs []*transaction.Transaction, roster []*account.Account, q Query) Page {
	names := make(map[int64]string, len(roster))
	for _, acc := range roster {
		names[acc.ID] = acc.FullName()
	}

	entries := make([]Entry, 0, len(txs))
	for _, tx := range txs {
		entry := annotate(requestingID, tx, names)
		if q.matches(entry) {
			entries = append(entries, entry)
		}
	}

	slices.SortStableFunc(entries, q.compare)

	return paginate(entries, q.Page, q.PageSize)
}

func annotate(requestingID int64, tx *transaction.Transaction, names map[int64]string) Entry {
	entry := Entry{
		ID:           tx.ID,
		SenderID:     tx.SenderID,
		ReceiverID:   tx.ReceiverID,
		Amount:       tx.Amount,
		Note:         tx.Note,
		Timestamp:    tx.Timestamp,
		Type:         tx.Type,
		SenderName:   resolveName(tx.SenderID, names),
		ReceiverName: resolveName(tx.ReceiverID, names),
		IsIncoming:   tx.IsIncomingFor(requestingID),
	}
	entry.CounterpartyID = tx.CounterpartyOf(requestingID)
	entry.CounterpartyName = resolveName(entry.CounterpartyID, names)
	return entry
}

func resolveName(id *int64, names map[int64]string) string {
	if id == nil {
		return UnknownName
	}
	if name, ok := names[*id]; ok && name != "" {
		return name
	}
	return UnknownName
}

func (q Query) matches(e Entry) bool {
	switch q.Direction {
	case DirectionSent:
		if e.IsIncoming {
			return false
		}
	case DirectionReceived:
		if !e.IsIncoming {
			return false
		}
	}

	if len(q.Types) > 0 && !slices.Contains(q.Types, e.Type) {
		return false
	}
	if q.From != nil && e.Timestamp.Before(*q.From) {
		return false
	}
	if q.To != nil && e.Timestamp.After(*q.To) {
		return false
	}
	if q.MinAmount != nil && e.Amount.LessThan(*q.MinAmount) {
		return false
	}
	if q.MaxAmount != nil && e.Amount.GreaterThan(*q.MaxAmount) {
		return false
	}
	return true
}

// compare orders by the chosen key, then by ID in the same direction so that
// equal keys never depend on input order.
func (q Query) compare(a, b Entry) int {
	byID := cmpInt64(a.ID, b.ID)
	byTime := a.Timestamp.Compare(b.Timestamp)
	byAmount := a.Amount.Cmp(b.Amount)

	switch q.Sort {
	case SortOldest:
		return firstNonZero(byTime, byID)
	case SortAmountDesc:
		return firstNonZero(-byAmount, -byID)
	case SortAmountAsc:
		return firstNonZero(byAmount, byID)
	default:
		return firstNonZero(-byTime, -byID)
	}
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func paginate(entries []Entry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	items := []Entry{}
	if start < total {
		end := min(start+pageSize, total)
		items = entries[start:end]
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
