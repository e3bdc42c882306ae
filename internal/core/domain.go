package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// DateFormat is the wire and storage format for all dates.
const DateFormat = "2006-01-02"

type (
	// Kind classifies a category, and transitively its transactions,
	// as money coming in or going out.
	Kind string

	// Category groups transactions for one owner. A category is
	// uniquely identified by (Owner, Name, Kind).
	Category struct {
		ID    int64
		Owner int64
		Name  string
		Kind  Kind
	}

	// Transaction is a single ledger entry. Amount is always stored
	// as an absolute, non-negative value; the direction of the money
	// is carried by the linked category's Kind. CategoryID is nil for
	// uncategorized entries.
	Transaction struct {
		ID          int64
		Owner       int64
		CategoryID  *int64
		Amount      decimal.Decimal
		Description string
		Date        time.Time
		Currency    string
		CreatedAt   time.Time
	}

	// Budget is a spending ceiling for one category in one calendar
	// month. Month is always the first day of that month.
	Budget struct {
		ID         int64
		Owner      int64
		CategoryID int64
		Amount     decimal.Decimal
		Month      time.Time
	}

	// User holds the account attributes the ledger core needs: the
	// notification address and the preferred report currency.
	User struct {
		ID       int64
		Username string
		Email    string
		Currency string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid category kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty category name")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter code")
	ErrInvalidMonth     = errors.New("budget month must not be zero")
	ErrNonPositiveLimit = errors.New("budget amount must be positive")
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if len(t.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Month.IsZero() {
		return ErrInvalidMonth
	}
	if !b.Amount.IsPositive() {
		return ErrNonPositiveLimit
	}
	return nil
}

// MonthStart collapses t to the first day of its calendar month at
// midnight UTC. Budget months and month-to-date windows are always
// derived through this function, never cached.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel formats a month for report output, e.g. "Jan 2026".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}
