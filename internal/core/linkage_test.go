package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-tracker/internal/core"
)

func TestResolve(t *testing.T) {
	receipts := []core.Receipt{
		{OrderNumber: "OC1", InvoiceNumber: "100"},
		{OrderNumber: " oc1 ", InvoiceNumber: "101"},
		{OrderNumber: "OC2", InvoiceNumber: "200"},
	}
	invoices := []core.Invoice{
		{OrderNumber: "OC2", InvoiceNumber: "200"},
	}

	t.Run("first match wins and duplicates are reported", func(t *testing.T) {
		l := core.Resolve(core.NewOrderKey("oc1"), receipts, invoices)
		require.NotNil(t, l.Receipt)
		assert.Equal(t, "100", l.Receipt.InvoiceNumber)
		assert.Nil(t, l.Invoice)
		require.Len(t, l.Anomalies, 1)
		assert.Equal(t, core.DuplicateReceipt, l.Anomalies[0].Kind)
		assert.Equal(t, 2, l.Anomalies[0].Count)
	})

	t.Run("both sides", func(t *testing.T) {
		l := core.Resolve("OC2", receipts, invoices)
		require.NotNil(t, l.Receipt)
		require.NotNil(t, l.Invoice)
		assert.Empty(t, l.Anomalies)
	})

	t.Run("no match", func(t *testing.T) {
		l := core.Resolve("OC123", receipts, invoices)
		assert.Nil(t, l.Receipt)
		assert.Nil(t, l.Invoice)
	})

	t.Run("empty key never matches", func(t *testing.T) {
		l := core.Resolve("", []core.Receipt{{}}, []core.Invoice{{}})
		assert.Nil(t, l.Receipt)
		assert.Nil(t, l.Invoice)
	})

	t.Run("deterministic and side-effect free", func(t *testing.T) {
		a := core.Resolve("OC1", receipts, invoices)
		b := core.Resolve("OC1", receipts, invoices)
		assert.Equal(t, a, b)
		a.Receipt.InvoiceNumber = "changed"
		assert.Equal(t, "100", receipts[0].InvoiceNumber)
	})
}

func TestResolveOrder_FallsBackToInvoiceNumber(t *testing.T) {
	invoices := []core.Invoice{
		{InvoiceNumber: "555", OrderNumber: "OC-OTHER"},
		{InvoiceNumber: "555"},
	}
	o := core.Order{OrderNumber: "OC1", InvoiceNumber: " 555 "}

	l := core.ResolveOrder(o, nil, invoices)
	require.NotNil(t, l.Invoice)
	assert.Equal(t, "", l.Invoice.OrderNumber, "an invoice tied to another order is skipped")
	assert.Empty(t, l.Anomalies)
}

func TestJoin(t *testing.T) {
	orders := []core.Order{
		{OrderNumber: "OC1", DeliveryStatus: core.DeliveryDelivered, InvoiceNumber: "10"},
		{OrderNumber: "OC2"},
	}
	receipts := []core.Receipt{
		{OrderNumber: "OC1", InvoiceNumber: "10"},
		{OrderNumber: "OC123", InvoiceNumber: "11"},
	}
	invoices := []core.Invoice{
		{InvoiceNumber: "10", FinancialStatus: core.FinancialProblem},
		{InvoiceNumber: "99", OrderNumber: "OC404"},
	}

	res := core.Join(orders, receipts, invoices)

	require.Len(t, res.Orders, 2)
	assert.Equal(t, core.StageInvoiceProblem, res.Orders[0].Stage)
	assert.NotNil(t, res.Orders[0].Receipt)
	assert.Equal(t, core.StagePOIssued, res.Orders[1].Stage)

	require.Len(t, res.OrphanReceipts, 1)
	assert.Equal(t, "OC123", res.OrphanReceipts[0].OrderNumber)
	require.Len(t, res.OrphanInvoices, 1)
	assert.Equal(t, "99", res.OrphanInvoices[0].InvoiceNumber)

	kinds := make([]core.AnomalyKind, 0, len(res.Anomalies))
	for _, a := range res.Anomalies {
		kinds = append(kinds, a.Kind)
	}
	assert.ElementsMatch(t, []core.AnomalyKind{core.OrphanReceipt, core.OrphanInvoice}, kinds)
}

func TestAnomaly_String(t *testing.T) {
	assert.Equal(t, "OC OC1 matches 2 receipts; using the first",
		core.Anomaly{Kind: core.DuplicateReceipt, Key: "OC1", Count: 2}.String())
	assert.Equal(t, "receipt for OC OC123 has no matching order",
		core.Anomaly{Kind: core.OrphanReceipt, Key: "OC123"}.String())
}
