// Package ledger holds the ordered in-memory record collection, mirrors it to a
// Store after every mutation and answers queries over it.
//
// A Ledger is meant for a single caller. Positions handed out by List and
// ListByMonth shift after every removal, so callers must list again before
// removing a second record by position.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// Ledger is the in-memory ordered collection of records plus budget state.
type Ledger struct {
	store   api.Store
	records []api.Record
	budget  decimal.Decimal
	logger  *slog.Logger
}

// New creates a Ledger and eagerly loads the store's records.
// A load failure is fatal: no partially loaded ledger is returned.
func New(ctx context.Context, store api.Store, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	records, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if records == nil {
		records = make([]api.Record, 0)
	}

	logger.Info("ledger loaded", "records", len(records))

	return &Ledger{
		store:   store,
		records: records,
		budget:  decimal.Zero,
		logger:  logger,
	}, nil
}

// Add appends record, saves the collection and then evaluates the budget.
// If saving fails the append is undone and the error returned.
func (l *Ledger) Add(ctx context.Context, record api.Record) (BudgetStatus, error) {
	l.records = append(l.records, record)

	if err := l.save(ctx); err != nil {
		l.records = l.records[:len(l.records)-1]
		return BudgetStatus{}, err
	}

	l.logger.Debug("record added",
		"date", record.Date,
		"category", record.Category,
		"amount", record.Amount.String(),
		"count", len(l.records),
	)

	status := l.CheckBudget()
	if status.Exceeded {
		l.logger.Warn("budget exceeded",
			"budget", status.Budget.String(),
			"total", status.Total.String(),
		)
	}
	return status, nil
}

// Remove deletes the record at the zero-based index and saves the collection.
// An out-of-range index returns api.ErrInvalidIndex and changes nothing.
func (l *Ledger) Remove(ctx context.Context, index int) (api.Record, error) {
	if index < 0 || index >= len(l.records) {
		return api.Record{}, fmt.Errorf("%w: %d not in [0, %d)", api.ErrInvalidIndex, index, len(l.records))
	}

	previous := slices.Clone(l.records)
	removed := l.records[index]
	l.records = slices.Delete(l.records, index, index+1)

	if err := l.save(ctx); err != nil {
		l.records = previous
		return api.Record{}, err
	}

	l.logger.Debug("record removed", "index", index, "count", len(l.records))
	return removed, nil
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in ledger order.
func (l *Ledger) Records() []api.Record {
	return slices.Clone(l.records)
}

func (l *Ledger) save(ctx context.Context) error {
	if err := l.store.Save(ctx, l.records); err != nil {
		l.logger.Error("failed to save records", "error", err)
		return fmt.Errorf("saving records: %w", err)
	}
	return nil
}
