// Package config loads spendbook settings from an optional JSON file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	kJson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Storage backend names.
const (
	StorageCSV      = "csv"
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// DefaultCredentialsFile is the default path to the Google credentials JSON file.
const DefaultCredentialsFile = "data/credentials.json"

// Config holds the application configuration.
// Field tags are the environment variable names; a JSON config file uses the same keys.
type Config struct {
	// Storage selects the backend: csv, json, sqlite or postgres.
	Storage string `koanf:"SPENDBOOK_STORAGE"`
	// File is the path used by the csv and json backends.
	File string `koanf:"SPENDBOOK_FILE"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `koanf:"SPENDBOOK_SQLITE_PATH"`

	PostgresDSN      string `koanf:"POSTGRES_DSN"`
	PostgresHost     string `koanf:"POSTGRES_HOST"`
	PostgresPort     int    `koanf:"POSTGRES_PORT"`
	PostgresDatabase string `koanf:"POSTGRES_DB"`
	PostgresUser     string `koanf:"POSTGRES_USER"`
	PostgresPassword string `koanf:"POSTGRES_PASSWORD"`
	PostgresSSLMode  string `koanf:"POSTGRES_SSLMODE"`

	// GSheetsTitle is the title for a new Google Sheet (used when creating).
	GSheetsTitle string `koanf:"GSHEETS_TITLE"`
	// GSheetsID is the ID of an existing Google Sheet to use.
	GSheetsID string `koanf:"GSHEETS_ID"`
	// GSheetsName is the name of the sheet/tab within the spreadsheet.
	GSheetsName string `koanf:"GSHEETS_NAME"`
	// CredentialsFile is the Google service account or authorized-user JSON.
	CredentialsFile string `koanf:"GOOGLE_CREDENTIALS_FILE"`

	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Load reads the JSON file at path (skipped when path is empty or the file is
// absent) and then the environment, which overrides file values.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kJson.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	if c.Storage == "" {
		c.Storage = StorageCSV
	}
	if c.File == "" {
		switch c.Storage {
		case StorageJSON:
			c.File = "expenses.json"
		default:
			c.File = "expenses.csv"
		}
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/spendbook.db"
	}
	if c.PostgresPort == 0 {
		c.PostgresPort = 5432
	}
	if c.PostgresSSLMode == "" {
		c.PostgresSSLMode = "disable"
	}
	if c.GSheetsName == "" {
		c.GSheetsName = "Expenses"
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = DefaultCredentialsFile
	}
}

// Backends lists the accepted storage names.
func Backends() []string {
	return []string{StorageCSV, StorageJSON, StorageSQLite, StoragePostgres}
}

// Validate checks that the selected backend is known and has what it needs.
func (c *Config) Validate() error {
	if !slices.Contains(Backends(), c.Storage) {
		return fmt.Errorf("unknown storage backend %q (want one of %s)", c.Storage, strings.Join(Backends(), ", "))
	}

	switch c.Storage {
	case StorageCSV, StorageJSON:
		if c.File == "" {
			return errors.New("SPENDBOOK_FILE is required")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SPENDBOOK_SQLITE_PATH is required")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" && (c.PostgresHost == "" || c.PostgresDatabase == "" || c.PostgresUser == "") {
			return errors.New("POSTGRES_DSN or POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER are required")
		}
	}

	return nil
}

// SheetsConfigured reports whether enough is set to export to Google Sheets.
func (c *Config) SheetsConfigured() bool {
	return c.GSheetsID != "" || c.GSheetsTitle != ""
}
