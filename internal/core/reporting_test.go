package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-tracker/internal/core"
)

func reportingOrders() []core.Order {
	return []core.Order{
		{
			RequestDate: day(2024, 3, 1), ApprovalDate: day(2024, 3, 2), DeliveryDate: day(2024, 3, 12),
			Requester: "Ana", Department: "TI", Supplier: "ACME", OrderType: core.OrderTypeLocal,
			ItemValue: dec("200"), RenegotiatedValue: dec("150"),
			DeliveryStatus: core.DeliveryDelivered, DaysLate: 4,
		},
		{
			RequestDate: day(2024, 3, 5), ApprovalDate: day(2024, 3, 6),
			Requester: "Ana", Department: "TI", Supplier: "Beta", OrderType: core.OrderTypeLocal,
			ItemValue: dec("100"), RenegotiatedValue: dec("90"),
			DeliveryStatus: core.DeliveryPending, DaysLate: 0,
		},
		{
			RequestDate: day(2024, 3, 9), ApprovalDate: day(2024, 4, 1), DeliveryDate: day(2024, 4, 3),
			Requester: "Bruno", Department: "RH", Supplier: "Beta", OrderType: core.OrderTypeEmergency,
			ItemValue: dec("50"),
			DeliveryStatus: core.DeliveryDelivered, DaysLate: 8,
		},
		{
			RequestDate: day(2024, 2, 20),
			Requester:   "Bruno", Department: "RH", OrderType: core.OrderTypeLocal,
			ItemValue: dec("80"),
		},
	}
}

func TestOverview(t *testing.T) {
	r := core.Overview(reportingOrders(), core.Period{Year: 2024, Month: 3})
	assert.Equal(t, 3, r.TotalOrders)
	assert.Equal(t, 2, r.DeliveredOrders)
	assert.Equal(t, 1, r.PendingOrders)
	assert.True(t, dec("350").Equal(r.TotalValue))
	assert.True(t, dec("4").Equal(r.AverageDaysLate))

	empty := core.Overview(nil, core.Period{})
	assert.Equal(t, 0, empty.TotalOrders)
	assert.True(t, empty.AverageDaysLate.IsZero())
}

func TestTopLateSuppliers(t *testing.T) {
	got := core.TopLateSuppliers(reportingOrders(), 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Beta", got[0].Supplier)
	assert.True(t, dec("8").Equal(got[0].Days))
	assert.Equal(t, "ACME", got[1].Supplier)

	assert.Len(t, core.TopLateSuppliers(reportingOrders(), 1), 1)
}

func TestCostByDepartment(t *testing.T) {
	got := core.CostByDepartment(reportingOrders())
	require.Len(t, got, 2)
	assert.Equal(t, "TI", got[0].Name)
	assert.True(t, dec("300").Equal(got[0].Amount))
	assert.Equal(t, "RH", got[1].Name)
	assert.True(t, dec("130").Equal(got[1].Amount))
}

func TestMonthlyEvolution(t *testing.T) {
	got := core.MonthlyEvolution(reportingOrders())
	assert.Equal(t, []core.MonthlyCount{
		{Month: "2024-03", Approved: 2, Delivered: 1},
		{Month: "2024-04", Approved: 1, Delivered: 1},
	}, got)
}

func TestSupplierLeadTimes(t *testing.T) {
	got := core.SupplierLeadTimes(reportingOrders())
	require.Len(t, got, 2)
	assert.Equal(t, "Beta", got[0].Supplier)
	assert.True(t, dec("2").Equal(got[0].Days))
	assert.Equal(t, "ACME", got[1].Supplier)
	assert.True(t, dec("10").Equal(got[1].Days))
}

func TestNegotiationPerformance(t *testing.T) {
	r := core.NegotiationPerformance(reportingOrders(), core.Period{Year: 2024, Month: 3}, 3)
	assert.Equal(t, 2, r.Orders)
	assert.True(t, dec("60").Equal(r.TotalSaved))
	// mean of 25% and 10%
	assert.True(t, dec("17.5").Equal(r.AverageSavings))
	require.Len(t, r.Monthly, 1)
	assert.Equal(t, "2024-03", r.Monthly[0].Month)
	require.Len(t, r.TopRequesters, 1)
	assert.Equal(t, "Ana", r.TopRequesters[0].Name)
	assert.Equal(t, 2, r.TopRequesters[0].Count)
}

func TestFiscalOverview(t *testing.T) {
	invoices := []core.Invoice{
		{Supplier: "ACME", FinancialStatus: core.FinancialInProgress, ProblemCondition: core.ProblemNone},
		{Supplier: "ACME", FinancialStatus: core.FinancialProblem},
		{Supplier: "Beta", FinancialStatus: core.FinancialInProgress, ProblemCondition: core.ProblemWrongValue},
		{Supplier: "ACME", FinancialStatus: core.FinancialInProgress, ProblemCondition: core.ProblemOther},
		{Supplier: "Beta", FinancialStatus: core.FinancialFinalized},
	}
	r := core.FiscalOverview(invoices, 5)
	assert.Equal(t, 5, r.Total)
	assert.Equal(t, 3, r.InProgress)
	assert.Equal(t, 1, r.Problem)
	assert.Equal(t, 1, r.Finalized)
	assert.Equal(t, 3, r.ByStatus[core.FinancialInProgress])
	require.Len(t, r.TopProblemVendors, 2)
	assert.Equal(t, "ACME", r.TopProblemVendors[0].Name)
	assert.Equal(t, 2, r.TopProblemVendors[0].Count)
}

func TestReceiptOverview(t *testing.T) {
	receipts := []core.Receipt{
		{ReceiptDate: day(2024, 3, 2), Supplier: "ACME", InvoiceTotal: dec("100")},
		{ReceiptDate: day(2024, 3, 9), Supplier: "ACME", InvoiceTotal: dec("50")},
		{ReceiptDate: day(2024, 3, 9), Supplier: "Beta", InvoiceTotal: dec("400")},
		{ReceiptDate: day(2024, 2, 15), Supplier: "ACME", InvoiceTotal: dec("120")},
		{ReceiptDate: day(2024, 1, 15), Supplier: "Beta", InvoiceTotal: dec("999")},
	}
	r := core.ReceiptOverview(receipts, core.Period{Year: 2024, Month: 3}, 5)
	assert.Equal(t, 3, r.Receipts)
	assert.True(t, dec("550").Equal(r.TotalValue))
	assert.Equal(t, "Beta", r.TopByValue[0].Name)
	assert.Equal(t, "ACME", r.TopByCount[0].Name)

	require.Len(t, r.VersusPrevMonth, 2)
	acme := r.VersusPrevMonth[1]
	assert.Equal(t, "ACME", acme.Supplier)
	assert.True(t, dec("120").Equal(acme.Previous))
	assert.True(t, dec("30").Equal(acme.Difference))
	assert.True(t, r.VersusPrevMonth[0].Previous.IsZero())
}

func TestReimbursementOverview(t *testing.T) {
	items := []core.Reimbursement{
		{Status: core.ReimbursementPending, ExpenseType: "Combustível", Value: dec("10")},
		{Status: core.ReimbursementPaid, ExpenseType: "Combustível", Value: dec("30")},
		{Status: core.ReimbursementPending, ExpenseType: "Alimentação", Value: dec("5")},
	}
	r := core.ReimbursementOverview(items)
	assert.True(t, dec("45").Equal(r.Total))
	require.Len(t, r.ByStatus, 2)
	assert.Equal(t, core.ReimbursementPaid, r.ByStatus[0].Name)
	assert.Equal(t, "Combustível", r.ByType[0].Name)
	assert.True(t, dec("40").Equal(r.ByType[0].Amount))
}
