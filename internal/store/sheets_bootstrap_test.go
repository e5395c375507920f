package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"procurement-tracker/internal/core"
	"procurement-tracker/internal/store"
)

func TestSheetsStore_EmptyWorkbookAcceptsFirstRows(t *testing.T) {
	ctx := context.Background()
	st, read := store.NewFakeSheetsStore(t, map[string][][]interface{}{})
	log := zaptest.NewLogger(t)

	procurement := core.NewProcurementService(st, core.DefaultPolicy(), nil, log)
	_, err := procurement.CreateRequisition(ctx, core.NewRequisition{
		Requester: "Ana",
		Material:  "Toner",
		Quantity:  decimal.NewFromInt(2),
		OrderType: core.OrderTypes[0],
	})
	require.NoError(t, err)

	warehouse := core.NewWarehouseService(st, core.DefaultPolicy(), nil, log)
	reg, err := warehouse.RegisterReceipt(ctx, core.NewReceipt{
		ReceiptDate:   core.NewDate(2024, 3, 5),
		Supplier:      "ACME",
		InvoiceNumber: "10",
		OrderNumber:   "OC1",
		InvoiceTotal:  decimal.NewFromInt(80),
	}, true)
	require.NoError(t, err)
	require.NotNil(t, reg.Invoice)

	orders, ok := read("Pedidos")
	require.True(t, ok, "orders worksheet created")
	assert.Len(t, orders, 2)

	receipts, ok := read(store.TableReceipts)
	require.True(t, ok, "receipts worksheet created")
	assert.Len(t, receipts, 2)

	invoices, ok := read("Controle Fiscal")
	require.True(t, ok, "invoices worksheet created")
	assert.Len(t, invoices, 2)
}
