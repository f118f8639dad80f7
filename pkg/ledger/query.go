package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Count    int
}

// List returns every record with its 1-based position.
// An empty ledger returns api.ErrNoRecords.
func (l *Ledger) List() ([]api.Entry, error) {
	if len(l.records) == 0 {
		return nil, api.ErrNoRecords
	}
	return number(l.records), nil
}

// ListByMonth returns records whose date starts with month, renumbered from 1.
//
// Matching is a plain text prefix test on the date string: "2024-01" matches
// only January 2024, while "2024-1" also matches "2024-10" through "2024-19".
func (l *Ledger) ListByMonth(month string) ([]api.Entry, error) {
	matched := l.filterMonth(month)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w for %s", api.ErrNoRecords, month)
	}
	return number(matched), nil
}

// Total returns the sum of all record amounts.
func (l *Ledger) Total() decimal.Decimal {
	return sum(l.records)
}

// CategoryTotals sums amounts per category, restricted to month when it is not
// empty (same prefix rule as ListByMonth). Results are ordered by amount
// descending, then category name.
func (l *Ledger) CategoryTotals(month string) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	for _, r := range l.filterMonth(month) {
		ct, ok := byCategory[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category, Amount: decimal.Zero}
			byCategory[r.Category] = ct
		}
		ct.Amount = ct.Amount.Add(r.Amount)
		ct.Count++
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		totals = append(totals, *ct)
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return totals
}

func (l *Ledger) filterMonth(month string) []api.Record {
	matched := make([]api.Record, 0)
	for _, r := range l.records {
		if strings.HasPrefix(r.Date, month) {
			matched = append(matched, r)
		}
	}
	return matched
}

func number(records []api.Record) []api.Entry {
	entries := make([]api.Entry, 0, len(records))
	for i, r := range records {
		entries = append(entries, api.Entry{Position: i + 1, Record: r})
	}
	return entries
}

func sum(records []api.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
