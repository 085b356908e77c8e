package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// DefaultPageSize matches the history screen's six cards per page.
const DefaultPageSize = 6

// Direction filters by which side of the transaction the viewer was on.
type Direction string

const (
	DirectionAll      Direction = "all"
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

type Sort string

const (
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
	SortAmountDesc Sort = "amount_desc"
	SortAmountAsc  Sort = "amount_asc"
)

// Query holds optional filters, a sort order and the page to return. The
// zero value lists everything newest first on page 1.
type Query struct {
	Direction Direction
	Types     []transaction.Type
	From      *time.Time
	To        *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Sort      Sort
	Page      int
	PageSize  int
}

// ErrInvalidQuery reports an unparseable history parameter
type ErrInvalidQuery struct {
	Field string
	Value string
}

func (e ErrInvalidQuery) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func (e ErrInvalidQuery) Is(target error) bool {
	t, ok := target.(ErrInvalidQuery)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DirectionAll, nil
	case DirectionAll, DirectionSent, DirectionReceived:
		return d, nil
	default:
		return "", ErrInvalidQuery{Field: "direction", Value: s}
	}
}

// ParseSort also accepts the hyphenated names used by the web client.
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return SortNewest, nil
	case "oldest":
		return SortOldest, nil
	case "amount_desc", "amount-desc", "amount-high":
		return SortAmountDesc, nil
	case "amount_asc", "amount-asc", "amount-low":
		return SortAmountAsc, nil
	default:
		return "", ErrInvalidQuery{Field: "sort", Value: s}
	}
}

// ParseTypes parses a comma separated list of type tags. "all" or an empty
// string means no type filter.
func ParseTypes(s string) ([]transaction.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}

	var types []transaction.Type
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := transaction.ParseType(part)
		if err != nil {
			return nil, ErrInvalidQuery{Field: "type", Value: part}
		}
		types = append(types, t)
	}
	return types, nil
}

// ParseAmountRange turns a named bucket ("0-500", "500-2000", "2000+") into
// inclusive bounds. "all" or "" means unbounded.
func ParseAmountRange(s string) (minAmount, maxAmount *decimal.Decimal, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil, nil
	}

	if strings.HasSuffix(s, "+") {
		lo, perr := decimal.NewFromString(strings.TrimSuffix(s, "+"))
		if perr != nil || !validBound(lo) {
			return nil, nil, ErrInvalidQuery{Field: "amountRange", Value: s}
		}
		return &lo, nil, nil
	}

	loStr, hiStr, ok := strings.Cut(s, "-")
	if !ok {
		return nil, nil, ErrInvalidQuery{Field: "amountRange", Value: s}
	}
	lo, loErr := decimal.NewFromString(loStr)
	hi, hiErr := decimal.NewFromString(hiStr)
	if loErr != nil || hiErr != nil || !validBound(lo) || !validBound(hi) || hi.LessThan(lo) {
		return nil, nil, ErrInvalidQuery{Field: "amountRange", Value: s}
	}
	return &lo, &hi, nil
}

// ParseAmountBound parses a minAmount or maxAmount parameter.
func ParseAmountBound(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !validBound(d) {
		return nil, ErrInvalidQuery{Field: field, Value: s}
	}
	return &d, nil
}

// validBound rejects negative bounds and any value no stored amount could
// reach, before it is compared against every entry of a history.
func validBound(d decimal.Decimal) bool {
	return transaction.WithinAmountLimits(d) && !d.IsNegative()
}

const dateLayout = "2006-01-02"

// ParseFrom accepts RFC 3339 or a bare date, which means that day's start in UTC.
func ParseFrom(s string) (*time.Time, error) {
	return parseBound("from", s, false)
}

// ParseTo accepts RFC 3339 or a bare date, which covers that whole day.
func ParseTo(s string) (*time.Time, error) {
	return parseBound("to", s, true)
}

func parseBound(field, s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, ErrInvalidQuery{Field: field, Value: s}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
