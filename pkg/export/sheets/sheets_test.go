package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ArionMiles/spendbook/pkg/api"
)

// fakeSheets is a minimal stand-in for the Sheets REST API.
type fakeSheets struct {
	mu            sync.Mutex
	clearCalls    int
	rateLimitLeft int
	clearStatus   int
	created       bool
	updated       *sheets.ValueRange
	updateOption  string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		id := strings.TrimPrefix(path, "/v4/spreadsheets/")
		if id != "sheet-1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))

	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		f.created = true
		_, _ = w.Write([]byte(`{"spreadsheetId":"created-1"}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clearCalls++
		if f.rateLimitLeft > 0 {
			f.rateLimitLeft--
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
			return
		}
		if f.clearStatus != 0 {
			w.WriteHeader(f.clearStatus)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut:
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.updated = &vr
		f.updateOption = r.URL.Query().Get("valueInputOption")
		_, _ = w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestExporter(t *testing.T, fake *fakeSheets, cfg Config) (*Exporter, error) {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}

	return New(context.Background(), cfg, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
}

func TestNew_RequiresIDOrTitle(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	require.Error(t, err)
}

func TestNew_ExistingSpreadsheet(t *testing.T) {
	fake := &fakeSheets{}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1"})

	require.NoError(t, err)
	assert.Equal(t, "sheet-1", exp.SpreadsheetID())
	assert.False(t, fake.created)
}

func TestNew_MissingSpreadsheetCreatesOne(t *testing.T) {
	fake := &fakeSheets{}
	exp, err := newTestExporter(t, fake, Config{SheetID: "gone", SheetTitle: "Spendbook"})

	require.NoError(t, err)
	assert.Equal(t, "created-1", exp.SpreadsheetID())
	assert.True(t, fake.created)
}

func TestNew_MissingSpreadsheetWithoutTitle(t *testing.T) {
	fake := &fakeSheets{}
	_, err := newTestExporter(t, fake, Config{SheetID: "gone"})

	require.Error(t, err)
	assert.False(t, fake.created)
}

func TestExport_WritesHeaderAndRows(t *testing.T) {
	fake := &fakeSheets{}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1"})
	require.NoError(t, err)

	records := []api.Record{
		api.NewRecord("2024-01-15", "Food", decimal.RequireFromString("12.50")),
		api.NewRecord("2024-01-16", "Travel", decimal.RequireFromString("100")),
	}
	require.NoError(t, exp.Export(context.Background(), records))

	require.NotNil(t, fake.updated)
	assert.Equal(t, "RAW", fake.updateOption)
	assert.Equal(t, "Expenses!A1:C3", fake.updated.Range)
	assert.Equal(t, [][]any{
		{"Date", "Category", "Amount"},
		{"2024-01-15", "Food", "12.5"},
		{"2024-01-16", "Travel", "100"},
	}, fake.updated.Values)
}

func TestExport_EmptyLedgerWritesHeaderOnly(t *testing.T) {
	fake := &fakeSheets{}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1", SheetName: "Ledger"})
	require.NoError(t, err)

	require.NoError(t, exp.Export(context.Background(), nil))

	require.NotNil(t, fake.updated)
	assert.Equal(t, "Ledger!A1:C1", fake.updated.Range)
	assert.Len(t, fake.updated.Values, 1)
}

func TestExport_RetriesRateLimit(t *testing.T) {
	fake := &fakeSheets{rateLimitLeft: 1}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1", Attempts: 3})
	require.NoError(t, err)

	require.NoError(t, exp.Export(context.Background(), nil))

	assert.GreaterOrEqual(t, fake.clearCalls, 2)
	assert.NotNil(t, fake.updated)
}

func TestExport_RateLimitExhausted(t *testing.T) {
	fake := &fakeSheets{rateLimitLeft: 100}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1", Attempts: 2})
	require.NoError(t, err)

	err = exp.Export(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "clearing sheet")
	assert.Nil(t, fake.updated)
}

func TestExport_OtherErrorsFail(t *testing.T) {
	fake := &fakeSheets{clearStatus: http.StatusForbidden}
	exp, err := newTestExporter(t, fake, Config{SheetID: "sheet-1", Attempts: 3})
	require.NoError(t, err)

	err = exp.Export(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, 1, fake.clearCalls)
}
