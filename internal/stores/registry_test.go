package stores

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/spendbook/pkg/api"
	"github.com/ArionMiles/spendbook/pkg/config"
)

type fakeBackend struct{ name string }

func (f fakeBackend) Name() string        { return f.name }
func (f fakeBackend) Description() string { return "fake" }
func (f fakeBackend) Open(context.Context, *config.Config, *slog.Logger) (api.Store, error) {
	return nil, assert.AnError
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(fakeBackend{name: "a"}))
	err := r.Register(fakeBackend{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fakeBackend{name: "a"}))

	b, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", b.Name())

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_OpenWrapsError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fakeBackend{name: "broken"}))

	_, err := r.Open(context.Background(), "broken", &config.Config{}, nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "opening broken store")
}

func TestDefault_ListsBuiltins(t *testing.T) {
	var names []string
	for _, b := range Default().List() {
		names = append(names, b.Name())
		assert.NotEmpty(t, b.Description())
	}

	assert.Equal(t, []string{"csv", "json", "postgres", "sqlite"}, names)
}

func TestDefault_FileBackendsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	records := []api.Record{
		api.NewRecord("2024-01-15", "Food", decimal.RequireFromString("12.50")),
		api.NewRecord("2024-02-01", "Rent", decimal.RequireFromString("950")),
	}

	tests := []struct {
		backend string
		cfg     *config.Config
	}{
		{"csv", &config.Config{File: filepath.Join(dir, "out.csv")}},
		{"json", &config.Config{File: filepath.Join(dir, "out.json")}},
		{"sqlite", &config.Config{SQLitePath: filepath.Join(dir, "out.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			ctx := context.Background()
			store, err := Default().Open(ctx, tt.backend, tt.cfg, nil)
			require.NoError(t, err)
			if c, ok := store.(io.Closer); ok {
				defer c.Close()
			}

			require.NoError(t, store.Save(ctx, records))
			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, len(records))
			for i := range records {
				assert.True(t, records[i].Equal(loaded[i]))
			}
		})
	}
}
