package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"
)

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)

	in := &Table{
		Name:    TableOrders,
		Columns: []string{"DATA", "MATERIAL", "ORDEM_COMPRA", "VALOR_ITEM", "DOC NF"},
		Rows: []Row{
			{"DATA": "01/03/2024", "MATERIAL": "Parafuso, sextavado", "ORDEM_COMPRA": "OC1", "VALOR_ITEM": "1234.56", "DOC NF": ""},
			{"DATA": "02/03/2024", "MATERIAL": `Cabo "PP"`, "ORDEM_COMPRA": "", "VALOR_ITEM": "0", "DOC NF": "https://docs/nf1"},
		},
	}
	require.NoError(t, s.SaveTable(ctx, in))

	out, err := s.LoadTable(ctx, TableOrders)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, in.Rows, out.Rows)
}

func TestCSVStoreMissingFileLoadsEmpty(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	out, err := s.LoadTable(context.Background(), TableInvoices)
	require.NoError(t, err)
	assert.Equal(t, TableInvoices, out.Name)
	assert.Empty(t, out.Rows)
}

func TestCSVStoreHeaderOnly(t *testing.T) {
	ctx := context.Background()
	s := NewCSVStore(t.TempDir())
	require.NoError(t, s.SaveTable(ctx, &Table{Name: TableReceipts, Columns: []string{"NF", "ORDEM_COMPRA"}}))

	out, err := s.LoadTable(ctx, TableReceipts)
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
}

func TestCSVStoreLatin1(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	encoded, err := charmap.ISO8859_1.NewEncoder().String("NOME;DEPARTAMENTO\nJoão;Manutenção\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solicitantes.csv"), []byte(encoded), 0o644))

	s := NewCSVStore(dir, WithEncoding(EncodingLatin1), WithDelimiter(';'))
	out, err := s.LoadTable(ctx, TableRequesters)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "João", out.Rows[0]["NOME"])
	assert.Equal(t, "Manutenção", out.Rows[0]["DEPARTAMENTO"])

	require.NoError(t, s.SaveTable(ctx, out))
	raw, err := os.ReadFile(filepath.Join(dir, "solicitantes.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Jo\xe3o;Manuten\xe7\xe3o")
}

func TestCSVStoreFileNameOverride(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir, WithFileNames(map[string]string{TableOrders: "compras_2024"}))

	require.NoError(t, s.SaveTable(ctx, &Table{Name: TableOrders, Columns: []string{"A"}, Rows: []Row{{"A": "1"}}}))
	_, err := os.Stat(filepath.Join(dir, "compras_2024.csv"))
	assert.NoError(t, err)
}

func TestCSVStoreStripsBOM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fiscal.csv"), []byte("\ufeffNF,STATUS\n10,FINALIZADO\n"), 0o644))

	out, err := NewCSVStore(dir).LoadTable(context.Background(), TableInvoices)
	require.NoError(t, err)
	assert.Equal(t, []string{"NF", "STATUS"}, out.Columns)
	assert.Equal(t, "10", out.Rows[0]["NF"])
}

func TestCSVStoreShortRowPaddedNotFatal(t *testing.T) {
	dir := t.TempDir()
	body := "DATA,ORDEM_COMPRA,VALOR_ITEM\n" +
		"01/03/2024,OC1\n" +
		"02/03/2024,OC2,150.00\n" +
		"03/03/2024,OC3,1,extra\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pedidos.csv"), []byte(body), 0o644))

	out, err := NewCSVStore(dir).LoadTable(context.Background(), TableOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"DATA", "ORDEM_COMPRA", "VALOR_ITEM"}, out.Columns)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "OC1", out.Rows[0]["ORDEM_COMPRA"])
	assert.Equal(t, "", out.Rows[0]["VALOR_ITEM"])
	assert.Equal(t, "150.00", out.Rows[1]["VALOR_ITEM"])
	assert.Equal(t, "1", out.Rows[2]["VALOR_ITEM"])
}

func TestCSVStoreDuplicateHeaderKeepsFirstName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fiscal.csv"),
		[]byte("NF,FORNECEDOR,NF\n10,ACME,99\n"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	out, err := NewCSVStore(dir, WithLogger(zap.New(core))).LoadTable(context.Background(), TableInvoices)
	require.NoError(t, err)
	assert.Equal(t, []string{"NF", "FORNECEDOR", "NF_2"}, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "10", out.Rows[0]["NF"])
	assert.Equal(t, "99", out.Rows[0]["NF_2"])

	warned := logs.FilterMessage("duplicate csv column renamed").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "NF", warned[0].ContextMap()["column"])
}

func TestCSVStoreUnnamedColumnDropped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fiscal.csv"),
		[]byte("NF,,STATUS\n10,lixo,FINALIZADO\n"), 0o644))

	out, err := NewCSVStore(dir).LoadTable(context.Background(), TableInvoices)
	require.NoError(t, err)
	assert.Equal(t, []string{"NF", "STATUS"}, out.Columns)
	assert.Equal(t, "FINALIZADO", out.Rows[0]["STATUS"])
}
