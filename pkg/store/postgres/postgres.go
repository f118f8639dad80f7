// Package postgres provides a PostgreSQL-backed Store.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArionMiles/spendbook/pkg/api"
)

//go:embed 001_create_records.sql
var migrationSQL string

// Config holds the PostgreSQL store configuration.
type Config struct {
	// DSN, when set, is used verbatim and the discrete fields are ignored.
	DSN string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// ConnString builds the connection string from the config.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Store keeps the ledger in the ledger_records table.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL and runs the schema migration.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"port", poolConfig.ConnConfig.Port,
		"database", poolConfig.ConnConfig.Database,
	)

	s := &Store{
		pool:   pool,
		logger: logger,
	}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	s.logger.Debug("migrations completed")
	return nil
}

// Load returns all records ordered by position.
// Amounts are read as text to keep their exact decimal form.
func (s *Store) Load(ctx context.Context) ([]api.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, category, amount::text
		FROM ledger_records
		ORDER BY position
	`)
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

// Save replaces the table contents in a single transaction.
func (s *Store) Save(ctx context.Context, records []api.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_records`); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for i, r := range records {
			batch.Queue(`
				INSERT INTO ledger_records (position, date, category, amount)
				VALUES ($1, $2, $3, $4::text::numeric)
			`, i+1, r.Date, r.Category, r.Amount.String())
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("wrote records to postgres", "count", len(records))
	return nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
	return nil
}
