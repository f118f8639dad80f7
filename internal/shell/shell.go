// Package shell runs the interactive numbered menu on top of a Ledger.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/ledger"
	"github.com/ArionMiles/spendbook/pkg/report"
)

const menu = `
Expense Tracker Menu:
1. Add Expense
2. Remove Expense
3. View Expenses
4. View Expenses by Month
5. Set Monthly Budget
6. View Total Expenses
7. Exit
`

// Shell reads menu choices from in and writes prompts and results to out.
type Shell struct {
	ledger *ledger.Ledger
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	lines <-chan string
	// inErr is set by the reader goroutine before lines is closed.
	inErr error
}

// New creates a Shell.
func New(l *ledger.Ledger, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		ledger: l,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Run loops until the user picks Exit, input ends or ctx is canceled.
// End of input returns nil; cancellation returns ctx.Err() without waiting
// for the pending line.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = s.readLines(done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, menu)
		choice, ok := s.prompt(ctx, "Enter your choice (1-7): ")
		if !ok {
			return s.stopErr(ctx)
		}

		switch choice {
		case "1":
			if !s.add(ctx) {
				return s.stopErr(ctx)
			}
		case "2":
			if !s.remove(ctx) {
				return s.stopErr(ctx)
			}
		case "3":
			s.view()
		case "4":
			month, ok := s.prompt(ctx, "Enter the month (YYYY-MM): ")
			if !ok {
				return s.stopErr(ctx)
			}
			s.viewMonth(month)
		case "5":
			if !s.setBudget(ctx) {
				return s.stopErr(ctx)
			}
		case "6":
			report.WriteTotal(s.out, s.ledger.Total())
		case "7":
			fmt.Fprintln(s.out, "Goodbye! See you soon!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again!")
		}
	}
}

// readLines scans in on its own goroutine so prompts can also watch the context.
// The goroutine exits once done is closed or input ends.
func (s *Shell) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		s.inErr = scanner.Err()
	}()
	return lines
}

// prompt writes label and returns the next trimmed line. ok is false when
// input ends or ctx is canceled.
func (s *Shell) prompt(ctx context.Context, label string) (string, bool) {
	fmt.Fprint(s.out, label)
	select {
	case line, ok := <-s.lines:
		if !ok || ctx.Err() != nil {
			fmt.Fprintln(s.out)
			return "", false
		}
		return strings.TrimSpace(line), true
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", false
	}
}

func (s *Shell) stopErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inErr
}

func (s *Shell) add(ctx context.Context) bool {
	date, ok := s.prompt(ctx, "Enter the date (YYYY-MM-DD): ")
	if !ok {
		return false
	}
	category, ok := s.prompt(ctx, "Enter the expense category (Food, Transport, Bills, etc.): ")
	if !ok {
		return false
	}
	text, ok := s.prompt(ctx, "Enter the amount: ")
	if !ok {
		return false
	}

	amount, err := api.ParseAmount(text)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid amount! Please enter a valid number.")
		return true
	}

	status, err := s.ledger.Add(ctx, api.NewRecord(date, category, amount))
	if err != nil {
		s.logger.Error("failed to add expense", "error", err)
		fmt.Fprintf(s.out, "Could not save expense: %v\n", err)
		return true
	}

	fmt.Fprintln(s.out, "Expense has been added successfully!")
	report.WriteBudgetWarning(s.out, status)
	return true
}

func (s *Shell) remove(ctx context.Context) bool {
	text, ok := s.prompt(ctx, "Enter the expense index to remove: ")
	if !ok {
		return false
	}

	position, err := strconv.Atoi(text)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid input! Please enter a valid number.")
		return true
	}

	if _, err := s.ledger.Remove(ctx, position-1); err != nil {
		if errors.Is(err, api.ErrInvalidIndex) {
			fmt.Fprintln(s.out, "Invalid Expense Entered.")
			return true
		}
		s.logger.Error("failed to remove expense", "error", err)
		fmt.Fprintf(s.out, "Could not save expenses: %v\n", err)
		return true
	}

	fmt.Fprintln(s.out, "Expense has been removed.")
	return true
}

func (s *Shell) view() {
	entries, err := s.ledger.List()
	if err != nil {
		fmt.Fprintln(s.out, "No expenses found.")
		return
	}
	report.WriteEntries(s.out, "Expense List", entries)
}

func (s *Shell) viewMonth(month string) {
	entries, err := s.ledger.ListByMonth(month)
	if err != nil {
		fmt.Fprintf(s.out, "No expenses found for %s.\n", month)
		return
	}
	report.WriteEntries(s.out, "Expenses for "+month, entries)
}

func (s *Shell) setBudget(ctx context.Context) bool {
	text, ok := s.prompt(ctx, "Enter your monthly budget: ")
	if !ok {
		return false
	}

	budget, err := api.ParseAmount(text)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid amount! Please enter a valid number.")
		return true
	}

	s.ledger.SetBudget(budget)
	report.WriteBudgetSet(s.out, budget)
	return true
}
