// Package core provides the ledger domain types and amount parsing.
//
// Amounts are handled with shopspring/decimal throughout; floats never
// touch money.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a signed decimal amount from statement input.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// tolerates apostrophe thousand separators (1'234.50). The sign is
// preserved; callers that need the stored form take the absolute value
// after deriving the kind.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "")
	// Normalize decimal comma to dot, but only when it is the sole
	// separator; "1,234.50" keeps the dot as the decimal point.
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// KindForAmount derives a category kind from a signed statement
// amount: negative means money out, everything else money in. A zero
// amount therefore classifies as INCOME.
func KindForAmount(d decimal.Decimal) Kind {
	if d.IsNegative() {
		return KindExpense
	}
	return KindIncome
}
