package csv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/spendbook/pkg/api"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	return New(Config{FilePath: path}, nil), path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	store, _ := newStore(t)

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSave_WritesHeaderAndRows(t *testing.T) {
	store, path := newStore(t)
	records := []api.Record{
		api.NewRecord("2024-01-15", "Food", decimal.RequireFromString("12.50")),
		api.NewRecord("2024-01-16", "Gifts, cards", decimal.RequireFromString("0.125")),
		api.NewRecord("2024-01-17", "Refund", decimal.RequireFromString("-3")),
	}

	require.NoError(t, store.Save(context.Background(), records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "Date,Category,Amount\n" +
		"2024-01-15,Food,12.5\n" +
		"2024-01-16,\"Gifts, cards\",0.125\n" +
		"2024-01-17,Refund,-3\n"
	assert.Equal(t, want, string(data))
}

func TestSave_EmptyLedgerWritesHeaderOnly(t *testing.T) {
	store, path := newStore(t)

	require.NoError(t, store.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Category,Amount\n", string(data))
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "expenses.csv")
	store := New(Config{FilePath: path}, nil)

	require.NoError(t, store.Save(context.Background(), nil))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSave_LeavesNoTemporaryFiles(t *testing.T) {
	store, path := newStore(t)
	record := api.NewRecord("2024-01-15", "Food", decimal.NewFromInt(1))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(context.Background(), []api.Record{record}))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "expenses.csv", entries[0].Name())
}

func TestRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	records := []api.Record{
		api.NewRecord("2024-01-15", "Food", decimal.RequireFromString("12.50")),
		api.NewRecord("2024-01-16", `Quote "inside"`, decimal.RequireFromString("1234567.891")),
		api.NewRecord("not a date", "line\nbreak", decimal.RequireFromString("0")),
		api.NewRecord("", "", decimal.RequireFromString("-0.01")),
	}

	require.NoError(t, store.Save(context.Background(), records))
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, loaded, len(records))
	for i := range records {
		assert.Truef(t, records[i].Equal(loaded[i]), "record %d: got %+v, want %+v", i, loaded[i], records[i])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty file", input: ""},
		{name: "wrong header", input: "When,What,HowMuch\n2024-01-01,Food,1\n"},
		{name: "short header", input: "Date,Category\n"},
		{name: "too few fields", input: "Date,Category,Amount\n2024-01-01,Food\n"},
		{name: "too many fields", input: "Date,Category,Amount\n2024-01-01,Food,1,extra\n"},
		{name: "non numeric amount", input: "Date,Category,Amount\n2024-01-01,Food,1\n2024-01-02,Food,abc\n"},
		{name: "bare quote", input: "Date,Category,Amount\n2024-01-01,Fo\"od,1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := Decode(strings.NewReader(tc.input))
			require.ErrorIs(t, err, api.ErrMalformedStore)
			assert.Nil(t, records)
		})
	}
}

func TestDecode_ReportsLineOfBadAmount(t *testing.T) {
	input := "Date,Category,Amount\n2024-01-01,Food,1\n2024-01-02,Food,oops\n"

	_, err := Decode(strings.NewReader(input))

	require.ErrorIs(t, err, api.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "line 3")
}

func TestDecode_FieldCountErrorIsParseError(t *testing.T) {
	_, err := Decode(strings.NewReader("Date,Category,Amount\na,b\n"))

	var parseErr *csv.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, os.WriteFile(path, []byte("Date,Category,Amount\n2024-01-01,Food,twelve\n"), 0o600))

	_, err := store.Load(context.Background())

	require.ErrorIs(t, err, api.ErrMalformedStore)
	assert.Contains(t, err.Error(), path)
}
