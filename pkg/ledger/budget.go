package ledger

import "github.com/shopspring/decimal"

// BudgetStatus is the outcome of comparing the running total to the budget.
type BudgetStatus struct {
	Budget   decimal.Decimal
	Total    decimal.Decimal
	Exceeded bool
}

// SetBudget replaces the budget threshold. Zero means no limit.
// The budget lives only as long as the Ledger and is never persisted.
func (l *Ledger) SetBudget(amount decimal.Decimal) {
	l.budget = amount
	l.logger.Info("budget set", "budget", amount.String())
}

// Budget returns the current threshold.
func (l *Ledger) Budget() decimal.Decimal {
	return l.budget
}

// CheckBudget compares the total of all records against the budget.
// Only a strictly positive budget can be exceeded; zero and negative budgets
// never trigger.
func (l *Ledger) CheckBudget() BudgetStatus {
	total := l.Total()
	return BudgetStatus{
		Budget:   l.budget,
		Total:    total,
		Exceeded: l.budget.IsPositive() && total.GreaterThan(l.budget),
	}
}
