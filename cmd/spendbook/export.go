package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"google.golang.org/api/option"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/client"
	"github.com/ArionMiles/spendbook/pkg/config"
	sheetsexport "github.com/ArionMiles/spendbook/pkg/export/sheets"
)

const exportToSheets = "sheets"

// runExport mirrors the ledger into another backend or a Google Sheet.
func (a *app) runExport(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	to := fs.String("to", "", "target: csv, json, sqlite, postgres or sheets")
	out := fs.String("out", "", "target file for csv, json and sqlite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" {
		return errors.New("export needs -to")
	}

	l, done, err := a.openLedger(ctx)
	defer done()
	if err != nil {
		return err
	}
	records := l.Records()

	if *to == exportToSheets {
		return a.exportSheets(ctx, records)
	}

	target, err := a.exportConfig(*to, *out)
	if err != nil {
		return err
	}

	store, err := a.registry.Open(ctx, *to, target, a.logger)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	if err := store.Save(ctx, records); err != nil {
		return fmt.Errorf("exporting to %s: %w", *to, err)
	}

	fmt.Fprintf(a.stdout, "Exported %d expenses to %s.\n", len(records), *to)
	return nil
}

// exportConfig derives the target configuration and refuses to overwrite the
// ledger's own store.
func (a *app) exportConfig(to, out string) (*config.Config, error) {
	target := *a.cfg
	target.Storage = to

	switch to {
	case config.StorageCSV, config.StorageJSON:
		if out == "" {
			return nil, fmt.Errorf("export to %s needs -out", to)
		}
		target.File = out
	case config.StorageSQLite:
		if out == "" {
			return nil, fmt.Errorf("export to %s needs -out", to)
		}
		target.SQLitePath = out
	case config.StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown export target %q", to)
	}

	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export target: %w", err)
	}
	if a.sameStore(&target) {
		return nil, errors.New("export target is the ledger's own store")
	}
	return &target, nil
}

func (a *app) sameStore(target *config.Config) bool {
	if target.Storage != a.cfg.Storage {
		return false
	}
	switch target.Storage {
	case config.StorageCSV, config.StorageJSON:
		return filepath.Clean(target.File) == filepath.Clean(a.cfg.File)
	case config.StorageSQLite:
		return filepath.Clean(target.SQLitePath) == filepath.Clean(a.cfg.SQLitePath)
	default:
		return true
	}
}

func (a *app) exportSheets(ctx context.Context, records []api.Record) error {
	if !a.cfg.SheetsConfigured() {
		return errors.New("either GSHEETS_ID or GSHEETS_TITLE environment variable is required")
	}

	httpClient, err := client.New(ctx, a.cfg.CredentialsFile, sheetsexport.Scope)
	if err != nil {
		return fmt.Errorf("creating http client: %w", err)
	}

	exporter, err := sheetsexport.New(ctx, sheetsexport.Config{
		SheetTitle: a.cfg.GSheetsTitle,
		SheetID:    a.cfg.GSheetsID,
		SheetName:  a.cfg.GSheetsName,
	}, a.logger.With("component", "sheets_exporter"), option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("creating sheets exporter: %w", err)
	}

	if err := exporter.Export(ctx, records); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Exported %d expenses to spreadsheet %s.\n", len(records), exporter.SpreadsheetID())
	return nil
}
