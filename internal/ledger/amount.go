package ledger

import (
	"math"
	"strings"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of minor-unit digits an amount may carry.
const AmountScale = 2

// ValidateAmount accepts strictly positive amounts expressible in whole
// minor units and no larger than transaction.MaxAmount. The size check runs
// first so that Round never sees an extreme exponent.
func ValidateAmount(amount decimal.Decimal) error {
	if !transaction.WithinAmountLimits(amount) {
		return ErrInvalidAmount
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(AmountScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses user input such as "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// AmountFromFloat converts a JSON number. NaN and infinities are rejected
// before they reach decimal, which would panic on them.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	amount := decimal.NewFromFloat(f)
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
