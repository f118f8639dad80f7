package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ArionMiles/spendbook/pkg/config"
	"github.com/ArionMiles/spendbook/pkg/report"
)

// runStatus checks the configuration, storage and credentials.
// It always returns nil; problems are reported in the output.
func (a *app) runStatus(ctx context.Context) error {
	fmt.Fprintln(a.stdout, "=== Spendbook Status ===")
	fmt.Fprintln(a.stdout)

	allGood := true

	a.checkConfig(&allGood)
	a.checkStore(ctx, &allGood)
	a.checkCredentials(&allGood)

	a.printFinalStatus(allGood)
	return nil
}

func (a *app) checkConfig(allGood *bool) {
	fmt.Fprintf(a.stdout, "Storage backend (%s): ", a.cfg.Storage)
	if err := a.cfg.Validate(); err != nil {
		fmt.Fprintf(a.stdout, "✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Fprintln(a.stdout, "✓ Valid")

	switch a.cfg.Storage {
	case config.StorageCSV, config.StorageJSON:
		fmt.Fprintf(a.stdout, "Ledger file: %s\n", a.cfg.File)
	case config.StorageSQLite:
		fmt.Fprintf(a.stdout, "Database file: %s\n", a.cfg.SQLitePath)
	case config.StoragePostgres:
		fmt.Fprintf(a.stdout, "Database: %s@%s:%d/%s\n",
			a.cfg.PostgresUser, a.cfg.PostgresHost, a.cfg.PostgresPort, a.cfg.PostgresDatabase)
	}
}

func (a *app) checkStore(ctx context.Context, allGood *bool) {
	fmt.Fprint(a.stdout, "Ledger: ")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		fmt.Fprintf(a.stdout, "✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Fprintf(a.stdout, "✓ %d expenses, total %s\n", l.Len(), report.Money(l.Total()))
}

func (a *app) checkCredentials(allGood *bool) {
	fmt.Fprint(a.stdout, "Google Sheets export: ")
	if !a.cfg.SheetsConfigured() {
		fmt.Fprintln(a.stdout, "- Not configured")
		return
	}
	fmt.Fprintln(a.stdout, "✓ Configured")

	fmt.Fprintf(a.stdout, "Credentials file (%s): ", a.cfg.CredentialsFile)
	if _, err := os.Stat(a.cfg.CredentialsFile); os.IsNotExist(err) {
		fmt.Fprintln(a.stdout, "✗ Not found")
		*allGood = false
	} else {
		fmt.Fprintln(a.stdout, "✓ Found")
	}
}

func (a *app) printFinalStatus(allGood bool) {
	fmt.Fprintln(a.stdout)
	if allGood {
		fmt.Fprintln(a.stdout, "Status: ✓ Ready to run")
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "Run 'spendbook' to open the menu.")
	} else {
		fmt.Fprintln(a.stdout, "Status: ✗ Configuration issues detected")
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "Fix the issues above, then run 'spendbook status' again.")
	}
}
