package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the config reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPENDBOOK_STORAGE", "SPENDBOOK_FILE", "SPENDBOOK_SQLITE_PATH",
		"POSTGRES_DSN", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_SSLMODE",
		"GSHEETS_TITLE", "GSHEETS_ID", "GSHEETS_NAME", "GOOGLE_CREDENTIALS_FILE",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorageCSV, cfg.Storage)
	assert.Equal(t, "expenses.csv", cfg.File)
	assert.Equal(t, "data/spendbook.db", cfg.SQLitePath)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.Equal(t, "Expenses", cfg.GSheetsName)
	assert.Equal(t, DefaultCredentialsFile, cfg.CredentialsFile)
	require.NoError(t, cfg.Validate())
}

func TestLoad_JSONStorageDefaultsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPENDBOOK_STORAGE", "JSON")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Equal(t, "expenses.json", cfg.File)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPENDBOOK_STORAGE", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "ledger")
	t.Setenv("POSTGRES_USER", "me")
	t.Setenv("GSHEETS_ID", "sheet-1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.PostgresHost)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, "ledger", cfg.PostgresDatabase)
	assert.True(t, cfg.SheetsConfigured())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "spendbook.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"SPENDBOOK_STORAGE": "sqlite",
		"SPENDBOOK_SQLITE_PATH": "from-file.db",
		"GSHEETS_TITLE": "From File"
	}`), 0o600))
	t.Setenv("SPENDBOOK_SQLITE_PATH", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "from-env.db", cfg.SQLitePath)
	assert.Equal(t, "From File", cfg.GSheetsTitle)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, StorageCSV, cfg.Storage)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"csv", Config{Storage: StorageCSV, File: "x.csv"}, false},
		{"csv without file", Config{Storage: StorageCSV}, true},
		{"sqlite", Config{Storage: StorageSQLite, SQLitePath: "x.db"}, false},
		{"unknown", Config{Storage: "mongo"}, true},
		{"postgres dsn", Config{Storage: StoragePostgres, PostgresDSN: "postgres://x"}, false},
		{"postgres fields", Config{Storage: StoragePostgres, PostgresHost: "h", PostgresDatabase: "d", PostgresUser: "u"}, false},
		{"postgres incomplete", Config{Storage: StoragePostgres, PostgresHost: "h"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
