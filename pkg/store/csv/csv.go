// Package csv implements a Store backed by a comma-separated flat file.
//
// The file starts with the header row "Date,Category,Amount" followed by one
// row per record. Amounts are written as their full decimal text. Every save
// rewrites the file through a temporary file that is renamed into place.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/renameio/v2"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// DefaultFilePath is used when Config.FilePath is empty.
const DefaultFilePath = "expenses.csv"

var header = []string{"Date", "Category", "Amount"}

// Config holds configuration for the CSV store.
type Config struct {
	// FilePath is the path to the CSV file.
	FilePath string
}

// Store reads and rewrites a CSV file.
type Store struct {
	filePath string
	logger   *slog.Logger
}

// New creates a new CSV store. The file is not touched until Load or Save.
func New(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultFilePath
	}

	return &Store{
		filePath: cfg.FilePath,
		logger:   logger,
	}
}

// Load reads all records. A missing file yields no records.
// The first malformed row aborts the load.
func (s *Store) Load(_ context.Context) ([]api.Record, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("csv file not found, starting empty", "file", s.filePath)
			return make([]api.Record, 0), nil
		}
		return nil, fmt.Errorf("reading csv file: %w", err)
	}

	records, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.filePath, err)
	}

	s.logger.Debug("loaded records from csv", "file", s.filePath, "count", len(records))
	return records, nil
}

// Save rewrites the file with a header and one row per record.
func (s *Store) Save(_ context.Context, records []api.Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return err
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating csv directory: %w", err)
		}
	}

	if err := renameio.WriteFile(s.filePath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing csv file: %w", err)
	}

	s.logger.Debug("wrote records to csv", "file", s.filePath, "count", len(records))
	return nil
}

// Encode writes the header and records in CSV form.
func Encode(w io.Writer, records []api.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range records {
		row := []string{r.Date, r.Category, r.Amount.String()}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Decode reads a header row followed by date,category,amount rows.
// Errors wrap api.ErrMalformedStore and name the offending line.
func Decode(r io.Reader) ([]api.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	got, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", api.ErrMalformedStore)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", api.ErrMalformedStore, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: unexpected header %q", api.ErrMalformedStore, got)
	}

	records := make([]api.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", api.ErrMalformedStore, err)
		}

		line, _ := reader.FieldPos(0)
		amount, err := api.ParseAmount(row[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", api.ErrMalformedStore, line, err)
		}
		records = append(records, api.NewRecord(row[0], row[1], amount))
	}

	return records, nil
}
