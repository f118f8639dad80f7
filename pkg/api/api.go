// Package api defines the core interfaces and data structures for spendbook.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when amount text cannot be coerced to a decimal.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidIndex is returned when a removal index is outside the ledger.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrNoRecords signals an empty view (whole ledger or a filtered month).
	ErrNoRecords = errors.New("no records found")
	// ErrMalformedStore is returned when persisted records cannot be decoded.
	ErrMalformedStore = errors.New("malformed store")
)

// Record is one dated, categorized monetary amount.
// Date and Category are kept verbatim; Date is YYYY-MM-DD by convention only.
type Record struct {
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewRecord builds a Record from its fields without validation.
func NewRecord(date, category string, amount decimal.Decimal) Record {
	return Record{
		Date:     date,
		Category: category,
		Amount:   amount,
	}
}

// Equal reports whether two records hold the same date, category and amount value.
func (r Record) Equal(other Record) bool {
	return r.Date == other.Date &&
		r.Category == other.Category &&
		r.Amount.Equal(other.Amount)
}

// Entry is a Record together with its 1-based position in a view.
// Positions are recomputed for every view and are not stable identifiers.
type Entry struct {
	Position int
	Record   Record
}

// ParseAmount coerces user or file text into a decimal amount.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return amount, nil
}

// Store loads and saves the complete ordered record collection.
// Save always rewrites everything; there is no incremental append.
type Store interface {
	// Load returns all persisted records in stored order.
	// A missing backing file or table yields an empty slice, not an error.
	Load(ctx context.Context) ([]Record, error)
	// Save replaces the persisted collection with records.
	Save(ctx context.Context, records []Record) error
}
