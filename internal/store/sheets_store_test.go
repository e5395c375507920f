package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheets serves the subset of the Sheets v4 values API the store uses.
type fakeSheets struct {
	mu     sync.Mutex
	sheets map[string][][]interface{}
	calls  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/book-1")
	f.calls = append(f.calls, r.Method+" "+path)

	if path == ":batchUpdate" {
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.sheets[rq.AddSheet.Properties.Title] = nil
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "book-1"})
		return
	}

	rng := strings.TrimPrefix(path, "/values/")
	clear := strings.HasSuffix(rng, ":clear")
	rng = strings.TrimSuffix(rng, ":clear")
	title := strings.ReplaceAll(strings.Trim(rng, "'"), "''", "'")

	values, ok := f.sheets[title]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: ` + title + `","status":"INVALID_ARGUMENT"}}`))
		return
	}

	switch {
	case clear:
		f.sheets[title] = nil
		_ = json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "majorDimension": "ROWS", "values": values})
	case r.Method == http.MethodPut:
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.sheets[title] = vr.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeSheetsStore(t *testing.T, fake *fakeSheets) *SheetsStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewSheetsStore(context.Background(), "book-1",
		map[string]string{TableOrders: "Pedidos", TableInvoices: "Controle Fiscal"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsStoreLoad(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]interface{}{
		"Pedidos": {
			{"DATA", "ORDEM_COMPRA", "VALOR_ITEM"},
			{"01/03/2024", "OC1", "R$ 1.234,56"},
			{"02/03/2024", "OC2"},
		},
	}}
	s := newFakeSheetsStore(t, fake)

	tbl, err := s.LoadTable(context.Background(), TableOrders)
	require.NoError(t, err)
	assert.Equal(t, TableOrders, tbl.Name)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "R$ 1.234,56", tbl.Rows[0]["VALOR_ITEM"])
	assert.Equal(t, "", tbl.Rows[1]["VALOR_ITEM"])
}

func TestSheetsStoreLoadMissingWorksheet(t *testing.T) {
	s := newFakeSheetsStore(t, &fakeSheets{sheets: map[string][][]interface{}{}})

	tbl, err := s.LoadTable(context.Background(), TableReceipts)
	require.NoError(t, err)
	assert.Equal(t, TableReceipts, tbl.Name)
	assert.Empty(t, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestSheetsStoreSaveClearsThenWrites(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]interface{}{
		"Controle Fiscal": {{"OLD"}, {"stale"}},
	}}
	s := newFakeSheetsStore(t, fake)

	err := s.SaveTable(context.Background(), &Table{
		Name:    TableInvoices,
		Columns: []string{"NF", "STATUS_FINANCEIRO"},
		Rows:    []Row{{"NF": "77", "STATUS_FINANCEIRO": "FINALIZADO"}},
	})
	require.NoError(t, err)

	assert.Equal(t, [][]interface{}{{"NF", "STATUS_FINANCEIRO"}, {"77", "FINALIZADO"}}, fake.sheets["Controle Fiscal"])
	require.Len(t, fake.calls, 2)
	assert.True(t, strings.HasPrefix(fake.calls[0], "POST"))
	assert.True(t, strings.HasPrefix(fake.calls[1], "PUT"))
}

func TestSheetsStoreSaveCreatesWorksheet(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]interface{}{}}
	s := newFakeSheetsStore(t, fake)

	err := s.SaveTable(context.Background(), &Table{Name: TableReceipts, Columns: []string{"NF"}})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"NF"}}, fake.sheets[TableReceipts])
	assert.Contains(t, fake.calls, "POST :batchUpdate")
}

func TestNewSheetsStoreRequiresSpreadsheetID(t *testing.T) {
	_, err := NewSheetsStore(context.Background(), " ", nil)
	assert.Error(t, err)
}
