// Package sheets mirrors the ledger into a Google Sheet.
//
// Every export clears the target columns and rewrites the header and all rows,
// matching the full-rewrite semantics of the file stores.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// Default configuration values.
const (
	DefaultSheetName  = "Expenses"
	DefaultAttempts   = 3
	DefaultRetryDelay = 60 * time.Second
)

// Scope is the OAuth scope the exporter needs.
const Scope = sheets.SpreadsheetsScope

// Config holds configuration for the Sheets exporter.
type Config struct {
	// SheetTitle is the title for a new spreadsheet (if SheetID is empty or missing).
	SheetTitle string
	// SheetID is the ID of an existing spreadsheet to use.
	SheetID string
	// SheetName is the name of the sheet/tab within the spreadsheet.
	SheetName string
	// Attempts is the number of tries for rate-limited calls.
	Attempts uint
	// RetryDelay is the base delay between rate-limited retries.
	RetryDelay time.Duration
}

// Exporter writes ledger records to a Google Sheet.
type Exporter struct {
	client      *sheets.Service
	spreadsheet *sheets.Spreadsheet
	sheetName   string
	attempts    uint
	retryDelay  time.Duration
	logger      *slog.Logger
}

// New creates a new Sheets exporter and resolves (or creates) the spreadsheet.
// Authentication is supplied through opts, usually option.WithHTTPClient.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.SheetID == "" && cfg.SheetTitle == "" {
		return nil, errors.New("either a spreadsheet ID or a title is required")
	}

	client, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	e := &Exporter{
		client:     client,
		sheetName:  cfg.SheetName,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}

	spreadsheet, err := e.initSpreadsheet(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing spreadsheet: %w", err)
	}
	e.spreadsheet = spreadsheet

	logger.Info("sheets exporter initialized", "spreadsheet_id", spreadsheet.SpreadsheetId, "sheet", cfg.SheetName)
	return e, nil
}

func (e *Exporter) initSpreadsheet(ctx context.Context, cfg Config) (*sheets.Spreadsheet, error) {
	if cfg.SheetID != "" {
		spreadsheet, err := e.client.Spreadsheets.Get(cfg.SheetID).Context(ctx).Do()
		if err == nil {
			e.logger.Info("using existing spreadsheet", "id", cfg.SheetID)
			return spreadsheet, nil
		}
		if cfg.SheetTitle == "" {
			return nil, fmt.Errorf("getting spreadsheet %s: %w", cfg.SheetID, err)
		}
		e.logger.Warn("failed to get spreadsheet, will create new one", "id", cfg.SheetID, "error", err)
	}

	spreadsheet, err := e.client.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: cfg.SheetTitle,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: cfg.SheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating spreadsheet: %w", err)
	}

	e.logger.Info("created new spreadsheet", "title", cfg.SheetTitle, "id", spreadsheet.SpreadsheetId)
	return spreadsheet, nil
}

// Export replaces the sheet contents with a header row and one row per record.
func (e *Exporter) Export(ctx context.Context, records []api.Record) error {
	columns := fmt.Sprintf("%s!A:C", e.sheetName)

	err := e.withRetry(func() error {
		_, err := e.client.Spreadsheets.Values.Clear(e.spreadsheet.SpreadsheetId, columns, &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing sheet: %w", err)
	}

	values := make([][]any, 0, len(records)+1)
	values = append(values, []any{"Date", "Category", "Amount"})
	for _, r := range records {
		values = append(values, []any{r.Date, r.Category, r.Amount.String()})
	}

	writeRange := fmt.Sprintf("%s!A1:C%d", e.sheetName, len(values))
	writeReq := sheets.ValueRange{
		Range:  writeRange,
		Values: values,
	}

	err = e.withRetry(func() error {
		_, err := e.client.Spreadsheets.Values.Update(e.spreadsheet.SpreadsheetId, writeRange, &writeReq).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("writing rows to sheet: %w", err)
	}

	e.logger.Info("exported records to sheet", "count", len(records), "spreadsheet_id", e.spreadsheet.SpreadsheetId)
	return nil
}

// withRetry retries fn while the API answers 429 Too Many Requests.
func (e *Exporter) withRetry(fn func() error) error {
	return retry.Do(
		fn,
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				e.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(e.attempts),
		retry.Delay(e.retryDelay),
		retry.LastErrorOnly(true),
	)
}

// SpreadsheetID returns the ID of the spreadsheet being written to.
func (e *Exporter) SpreadsheetID() string {
	if e.spreadsheet == nil {
		return ""
	}
	return e.spreadsheet.SpreadsheetId
}
