package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendCSV, cfg.Store.Backend)
	assert.Equal(t, "data", cfg.Store.CSV.Dir)
	assert.Equal(t, ',', cfg.Store.CSV.Delimiter())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "warn", cfg.Log.ConsoleLevel)
	assert.Equal(t, 15, cfg.Policy.DeliveryGraceDays)
	assert.Equal(t, 30, cfg.Policy.InvoiceDueDays)
	assert.False(t, cfg.Policy.StrictTransitions)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	yml := `
store:
  backend: csv
  csv:
    dir: exports
    encoding: latin1
    separator: ";"
  tables:
    pedidos: compras.csv
policy:
  delivery_grace_days: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "panel.yml"), []byte(yml), 0o644))
	t.Setenv("PANEL_POLICY_STRICT_TRANSITIONS", "true")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "exports", cfg.Store.CSV.Dir)
	assert.Equal(t, "latin1", cfg.Store.CSV.Encoding)
	assert.Equal(t, ';', cfg.Store.CSV.Delimiter())
	assert.Equal(t, "compras.csv", cfg.Store.Tables["pedidos"])
	assert.Equal(t, 10, cfg.Policy.DeliveryGraceDays)
	assert.True(t, cfg.Policy.StrictTransitions)
	assert.Equal(t, "9090", cfg.Server.Port)

	p := cfg.Policy.Core()
	assert.Equal(t, 10, p.DeliveryGraceDays)
	assert.True(t, p.StrictTransitions)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PANEL_STORE_BACKEND", "excel")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "unknown store.backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Store: StoreConfig{Backend: BackendMemory}}, ""},
		{"sheets without id", Config{Store: StoreConfig{Backend: BackendSheets}}, "spreadsheet_id"},
		{"sheets", Config{Store: StoreConfig{Backend: BackendSheets, Sheets: SheetsConfig{SpreadsheetID: "abc"}}}, ""},
		{"postgres without url", Config{Store: StoreConfig{Backend: BackendPostgres}}, "database.url"},
		{"csv bad encoding", Config{Store: StoreConfig{Backend: BackendCSV, CSV: CSVConfig{Dir: "d", Encoding: "utf-16"}}}, "not supported"},
		{"negative days", Config{Store: StoreConfig{Backend: BackendMemory}, Policy: PolicyConfig{InvoiceDueDays: -1}}, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
