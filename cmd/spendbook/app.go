package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/jinzhu/now"

	"github.com/ArionMiles/spendbook/internal/shell"
	"github.com/ArionMiles/spendbook/internal/stores"
	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/config"
	"github.com/ArionMiles/spendbook/pkg/ledger"
	"github.com/ArionMiles/spendbook/pkg/report"
)

// app carries what every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *stores.Registry
	stdin    io.Reader
	stdout   io.Writer
}

func newApp(cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdout io.Writer) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: stores.Default(),
		stdin:    stdin,
		stdout:   stdout,
	}
}

// openLedger opens the configured store and loads it. The returned func
// releases the store and must always be called.
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, func() {}, fmt.Errorf("invalid config: %w", err)
	}

	store, err := a.registry.Open(ctx, a.cfg.Storage, a.cfg, a.logger)
	if err != nil {
		return nil, func() {}, err
	}
	closeStore := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				a.logger.Warn("failed to close store", "error", err)
			}
		}
	}

	l, err := ledger.New(ctx, store, a.logger.With("component", "ledger"))
	if err != nil {
		closeStore()
		return nil, func() {}, err
	}
	return l, closeStore, nil
}

func (a *app) runMenu(ctx context.Context) error {
	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	err = shell.New(l, a.stdin, a.stdout, a.logger.With("component", "shell")).Run(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("menu interrupted")
		return nil
	}
	return err
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	date := fs.String("date", "", "expense date (YYYY-MM-DD)")
	category := fs.String("category", "", "expense category")
	amountText := fs.String("amount", "", "expense amount")
	budgetText := fs.String("budget", "", "budget to check the new total against")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := api.ParseAmount(*amountText)
	if err != nil {
		fmt.Fprintln(a.stdout, "Invalid amount! Please enter a valid number.")
		return err
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	if *budgetText != "" {
		budget, err := api.ParseAmount(*budgetText)
		if err != nil {
			fmt.Fprintln(a.stdout, "Invalid amount! Please enter a valid number.")
			return fmt.Errorf("parsing budget: %w", err)
		}
		l.SetBudget(budget)
	}

	status, err := l.Add(ctx, api.NewRecord(*date, *category, amount))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Expense has been added successfully!")
	report.WriteBudgetWarning(a.stdout, status)
	return nil
}

func (a *app) runRemove(ctx context.Context, args []string) error {
	fs := a.flagSet("remove")
	position := fs.Int("index", 0, "1-based position as shown by list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	if _, err := l.Remove(ctx, *position-1); err != nil {
		if errors.Is(err, api.ErrInvalidIndex) {
			fmt.Fprintln(a.stdout, "Invalid Expense Entered.")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.stdout, "Expense has been removed.")
	return nil
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	month := fs.String("month", "", "only show dates starting with this prefix (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	if *month != "" {
		a.printMonth(l, *month)
		return nil
	}

	entries, err := l.List()
	if errors.Is(err, api.ErrNoRecords) {
		fmt.Fprintln(a.stdout, "No expenses found.")
		return nil
	}
	report.WriteEntries(a.stdout, "Expense List", entries)
	return nil
}

func (a *app) runMonth(ctx context.Context, args []string) error {
	month := now.BeginningOfMonth().Format("2006-01")
	if len(args) > 0 {
		month = args[0]
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	a.printMonth(l, month)
	return nil
}

func (a *app) printMonth(l *ledger.Ledger, month string) {
	entries, err := l.ListByMonth(month)
	if err != nil {
		fmt.Fprintf(a.stdout, "No expenses found for %s.\n", month)
		return
	}
	report.WriteEntries(a.stdout, "Expenses for "+month, entries)
}

func (a *app) runTotal(ctx context.Context) error {
	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	report.WriteTotal(a.stdout, l.Total())
	return nil
}

func (a *app) runCategories(ctx context.Context, args []string) error {
	fs := a.flagSet("categories")
	month := fs.String("month", "", "only count dates starting with this prefix (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}

	report.WriteCategoryTotals(a.stdout, l.CategoryTotals(*month))
	return nil
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	return fs
}
