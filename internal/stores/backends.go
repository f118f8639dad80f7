package stores

import (
	"context"
	"log/slog"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/config"
	csvstore "github.com/ArionMiles/spendbook/pkg/store/csv"
	jsonstore "github.com/ArionMiles/spendbook/pkg/store/json"
	"github.com/ArionMiles/spendbook/pkg/store/postgres"
	"github.com/ArionMiles/spendbook/pkg/store/sqlite"
)

// CSV is the flat-file backend and the default.
type CSV struct{}

func (CSV) Name() string        { return config.StorageCSV }
func (CSV) Description() string { return "comma-separated file with a Date,Category,Amount header" }

func (CSV) Open(_ context.Context, cfg *config.Config, logger *slog.Logger) (api.Store, error) {
	return csvstore.New(csvstore.Config{FilePath: cfg.File}, logger), nil
}

// JSON stores the ledger as an indented JSON array.
type JSON struct{}

func (JSON) Name() string        { return config.StorageJSON }
func (JSON) Description() string { return "JSON array of records" }

func (JSON) Open(_ context.Context, cfg *config.Config, logger *slog.Logger) (api.Store, error) {
	return jsonstore.New(jsonstore.Config{FilePath: cfg.File}, logger), nil
}

// SQLite keeps the ledger in a local database file.
type SQLite struct{}

func (SQLite) Name() string        { return config.StorageSQLite }
func (SQLite) Description() string { return "local SQLite database" }

func (SQLite) Open(_ context.Context, cfg *config.Config, logger *slog.Logger) (api.Store, error) {
	store, err := sqlite.New(sqlite.Config{Path: cfg.SQLitePath}, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Postgres keeps the ledger in a PostgreSQL table.
type Postgres struct{}

func (Postgres) Name() string        { return config.StoragePostgres }
func (Postgres) Description() string { return "PostgreSQL database" }

func (Postgres) Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.Store, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.PostgresDSN,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		Database: cfg.PostgresDatabase,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		SSLMode:  cfg.PostgresSSLMode,
	}, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
