// Package sqlite implements a Store backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/ArionMiles/spendbook/pkg/api"

	_ "modernc.org/sqlite"
)

// DefaultPath is used when Config.Path is empty.
const DefaultPath = "data/spendbook.db"

const table = "records"

// insertBatchSize keeps multi-row inserts under SQLite's bound parameter limit.
const insertBatchSize = 200

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds configuration for the SQLite store.
type Config struct {
	// Path is the database file path.
	Path string
}

// Store keeps records in a single table ordered by position.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New opens (creating if needed) the database and applies migrations.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := runMigrations(cfg.Path); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("sqlite store opened", "path", cfg.Path)

	return &Store{
		db:     db,
		path:   cfg.Path,
		logger: logger,
	}, nil
}

// runMigrations uses its own connection so the store's pool is unaffected.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Load returns all records ordered by position.
func (s *Store) Load(ctx context.Context) ([]api.Record, error) {
	rows, err := sq.Select("date", "category", "amount").
		From(table).
		OrderBy("position").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := make([]api.Record, 0)
	for rows.Next() {
		var date, category, amountText string
		if err := rows.Scan(&date, &category, &amountText); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		amount, err := api.ParseAmount(amountText)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %w", api.ErrMalformedStore, len(records)+1, err)
		}
		records = append(records, api.NewRecord(date, category, amount))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// Save replaces every row inside one transaction.
func (s *Store) Save(ctx context.Context, records []api.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete(table).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		insert := sq.Insert(table).Columns("position", "date", "category", "amount")
		for i, r := range records[start:end] {
			insert = insert.Values(start+i+1, r.Date, r.Category, r.Amount.String())
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("inserting records %d-%d: %w", start+1, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("wrote records to sqlite", "path", s.path, "count", len(records))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
