// Package json implements a Store that keeps records as a JSON array.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// DefaultFilePath is used when Config.FilePath is empty.
const DefaultFilePath = "expenses.json"

// Config holds configuration for the JSON store.
type Config struct {
	// FilePath is the path to the JSON file.
	FilePath string
}

// Store persists records to a JSON file.
type Store struct {
	filePath string
	logger   *slog.Logger
}

// New creates a new JSON store.
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

// row is the on-disk shape; pointers let Load tell absent fields from zero values.
type row struct {
	Date     string           `json:"date"`
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
}

// Load reads the JSON array. A missing or zero-length file yields no records.
func (s *Store) Load(_ context.Context) ([]api.Record, error) {
	records := make([]api.Record, 0)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return records, nil
		}
		return nil, fmt.Errorf("reading json file: %w", err)
	}

	if len(data) == 0 {
		return records, nil
	}

	var rows []*row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", api.ErrMalformedStore, s.filePath, err)
	}

	for i, r := range rows {
		switch {
		case r == nil:
			return nil, fmt.Errorf("%w: record %d: null entry", api.ErrMalformedStore, i+1)
		case r.Amount == nil:
			return nil, fmt.Errorf("%w: record %d: missing amount", api.ErrMalformedStore, i+1)
		}
		records = append(records, api.NewRecord(r.Date, r.Category, *r.Amount))
	}

	s.logger.Debug("loaded records from json", "file", s.filePath, "count", len(records))
	return records, nil
}

// Save writes the entire array to the file (JSON doesn't support appending).
func (s *Store) Save(_ context.Context, records []api.Record) error {
	if records == nil {
		records = make([]api.Record, 0)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating json directory: %w", err)
		}
	}

	if err := renameio.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("writing json file: %w", err)
	}

	s.logger.Debug("wrote records to json", "file", s.filePath, "count", len(records))
	return nil
}
