// Package report renders ledger views as console text.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/ledger"
)

// Money formats an amount as dollars with two decimals.
// Halves round to even, so 0.125 shows as $0.12.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixedBank(2)
}

// WriteEntries prints a titled, numbered list of entries.
func WriteEntries(w io.Writer, title string, entries []api.Entry) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(w, "%d. Date: %s, Category: %s, Amount: %s\n",
			e.Position, e.Record.Date, e.Record.Category, Money(e.Record.Amount))
	}
}

// WriteTotal prints the ledger total.
func WriteTotal(w io.Writer, total decimal.Decimal) {
	fmt.Fprintf(w, "Total Expense: %s\n", Money(total))
}

// WriteBudgetSet confirms a new budget.
func WriteBudgetSet(w io.Writer, budget decimal.Decimal) {
	fmt.Fprintf(w, "Monthly budget set to %s\n", Money(budget))
}

// WriteBudgetWarning prints the over-budget warning when status is exceeded.
func WriteBudgetWarning(w io.Writer, status ledger.BudgetStatus) {
	if !status.Exceeded {
		return
	}
	fmt.Fprintf(w, "Warning! You have exceeded your budget of %s\n", Money(status.Budget))
}

// WriteCategoryTotals prints one line per category.
func WriteCategoryTotals(w io.Writer, totals []ledger.CategoryTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No expenses found.")
		return
	}

	width := 0
	for _, t := range totals {
		width = max(width, len(t.Category))
	}
	for _, t := range totals {
		fmt.Fprintf(w, "%-*s  %s  (%d)\n", width, t.Category, Money(t.Amount), t.Count)
	}
}
