package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-tracker/internal/core"
)

func day(y int, m time.Month, d int) core.Date { return core.NewDate(y, m, d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDaysToApprove(t *testing.T) {
	assert.Equal(t, 4, core.DaysToApprove(day(2024, 3, 1), day(2024, 3, 5)))
	assert.Equal(t, -2, core.DaysToApprove(day(2024, 3, 5), day(2024, 3, 3)))
	assert.Equal(t, 0, core.DaysToApprove(core.Date{}, day(2024, 3, 5)))
	assert.Equal(t, 0, core.DaysToApprove(day(2024, 3, 1), core.Date{}))
}

func TestDaysLate(t *testing.T) {
	assert.Equal(t, 5, core.DaysLate(day(2024, 3, 20), day(2024, 3, 15)))
	assert.Equal(t, 0, core.DaysLate(day(2024, 3, 10), day(2024, 3, 15)))
	assert.Equal(t, 0, core.DaysLate(core.Date{}, day(2024, 3, 15)))
	assert.Equal(t, 0, core.DaysLate(day(2024, 3, 20), core.Date{}))
}

func TestAccruedInterest(t *testing.T) {
	assert.True(t, dec("50").Equal(core.AccruedInterest(dec("1000"), dec("1"), 5)))
	assert.True(t, dec("3.3").Equal(core.AccruedInterest(dec("110"), dec("0.1"), 30)))
	assert.True(t, core.AccruedInterest(dec("1000"), dec("1"), 0).IsZero())
	assert.True(t, core.AccruedInterest(dec("1000"), dec("1"), -3).IsZero())
	assert.True(t, core.AccruedInterest(dec("1000"), dec("-1"), 5).IsZero())
}

func TestSavingsPercent(t *testing.T) {
	assert.True(t, dec("25").Equal(core.SavingsPercent(dec("200"), dec("150"))))
	assert.True(t, core.SavingsPercent(decimal.Zero, dec("150")).IsZero())
	assert.True(t, core.SavingsPercent(dec("-1"), dec("150")).IsZero())
}

func TestPolicy_OrderDueDate(t *testing.T) {
	p := core.DefaultPolicy()
	o := core.Order{ApprovalDate: day(2024, 3, 1)}
	assert.Equal(t, "16/03/2024", p.OrderDueDate(o).String())

	o.ExpectedDeliveryDate = day(2024, 3, 10)
	assert.Equal(t, "10/03/2024", p.OrderDueDate(o).String())

	assert.True(t, p.OrderDueDate(core.Order{}).IsZero())
}

func TestPolicy_RecomputeOrder(t *testing.T) {
	p := core.DefaultPolicy()
	o := core.Order{
		RequestDate:          day(2024, 3, 1),
		ApprovalDate:         day(2024, 3, 5),
		ExpectedDeliveryDate: day(2024, 3, 15),
		DeliveryDate:         day(2024, 3, 20),
		DaysLate:             99,
	}
	got := p.RecomputeOrder(o)
	assert.Equal(t, 4, got.DaysToApprove)
	assert.Equal(t, 5, got.DaysLate)

	got.DeliveryDate = day(2024, 3, 10)
	assert.Equal(t, 0, p.RecomputeOrder(got).DaysLate)
}

func TestRecomputeInvoice(t *testing.T) {
	asOf := day(2024, 4, 10)
	inv := core.Invoice{DueDate: day(2024, 4, 1), FinancialStatus: core.FinancialInProgress, InterestValue: dec("7")}

	got := core.RecomputeInvoice(inv, asOf)
	assert.Equal(t, 9, got.DaysLate)
	assert.True(t, dec("7").Equal(got.InterestValue), "interest is never recomputed")

	inv.FinancialStatus = core.FinancialFinalized
	inv.DaysLate = 2
	assert.Equal(t, 2, core.RecomputeInvoice(inv, asOf).DaysLate)
}

func TestRecompute(t *testing.T) {
	tables := core.Tables{
		Orders: []core.Order{
			{RequisitionNumber: "R1"},
			{RequisitionNumber: "R2", OrderNumber: "OC1", ApprovalDate: day(2024, 3, 1), RequestDate: day(2024, 2, 28)},
			{RequisitionNumber: "R3", OrderNumber: "OC2", DeliveryStatus: core.DeliveryDelivered, DeliveryDate: day(2024, 3, 30), ApprovalDate: day(2024, 3, 1)},
			{RequisitionNumber: "R4", OrderNumber: "OC3", DeliveryStatus: core.DeliveryDelivered},
		},
		Receipts: []core.Receipt{
			{OrderNumber: "oc2"},
			{OrderNumber: "OC3"},
			{OrderNumber: "OC3"},
		},
		Invoices: []core.Invoice{
			{OrderNumber: "OC3", InvoiceNumber: "9", FinancialStatus: core.FinancialFinalized},
		},
	}
	before := tables.Orders[2]

	res := core.Recompute(tables, core.DefaultPolicy(), day(2024, 4, 1))

	assert.Equal(t, []core.Stage{
		core.StagePendingNoPO,
		core.StagePOIssued,
		core.StageDelivered,
		core.StageInvoiceFinalized,
	}, res.Stages)
	assert.Equal(t, 2, res.Orders[1].DaysToApprove)
	assert.Equal(t, 14, res.Orders[2].DaysLate)
	assert.Equal(t, before, tables.Orders[2], "input must not be modified")
	require.Len(t, res.Anomalies, 1)
	assert.Equal(t, core.DuplicateReceipt, res.Anomalies[0].Kind)
	assert.Equal(t, 2, res.Anomalies[0].Count)
}

func TestApplyInterest(t *testing.T) {
	invoices := []core.Invoice{
		{InvoiceNumber: "1", InvoiceTotal: dec("1000"), DueDate: day(2024, 3, 1)},
		{InvoiceNumber: "2", InvoiceTotal: dec("500"), DueDate: day(2024, 3, 1)},
	}
	asOf := day(2024, 3, 6)

	estimate := core.EstimateInterest(invoices[0], dec("1"), asOf)
	assert.True(t, dec("50").Equal(estimate))

	got, n := core.ApplyInterest(invoices, func(inv core.Invoice) bool { return inv.InvoiceNumber == "1" }, dec("1"), asOf)
	assert.Equal(t, 1, n)
	assert.True(t, dec("50").Equal(got[0].InterestValue))
	assert.True(t, dec("1").Equal(got[0].InterestRate))
	assert.Equal(t, 5, got[0].DaysLate)
	assert.Equal(t, 5, got[0].InterestDays)
	assert.True(t, got[1].InterestValue.IsZero())
	assert.True(t, invoices[0].InterestValue.IsZero(), "input must not be modified")
}

func TestApplyInterest_RepeatedRunDoesNotAccumulate(t *testing.T) {
	invoices := []core.Invoice{{InvoiceNumber: "1", InvoiceTotal: dec("1000"), DueDate: day(2024, 3, 1)}}
	all := func(core.Invoice) bool { return true }
	asOf := day(2024, 3, 6)

	first, _ := core.ApplyInterest(invoices, all, dec("1"), asOf)
	again, _ := core.ApplyInterest(invoices, all, dec("1"), asOf)
	assert.Equal(t, first, again)

	reapplied, n := core.ApplyInterest(first, all, dec("1"), asOf)
	assert.Equal(t, 1, n)
	assert.True(t, dec("50").Equal(reapplied[0].InterestValue))
	assert.True(t, dec("1").Equal(reapplied[0].InterestRate))
	assert.Equal(t, 5, reapplied[0].InterestDays)
}

func TestApplyInterest_SnapshotSurvivesRecompute(t *testing.T) {
	invoices := []core.Invoice{{InvoiceNumber: "1", InvoiceTotal: dec("1000"), DueDate: day(2024, 3, 1), FinancialStatus: core.FinancialInProgress}}
	got, _ := core.ApplyInterest(invoices, func(core.Invoice) bool { return true }, dec("1"), day(2024, 3, 6))

	later := core.RecomputeInvoice(got[0], day(2024, 3, 21))
	assert.Equal(t, 20, later.DaysLate)
	assert.Equal(t, 5, later.InterestDays)
	assert.True(t, dec("50").Equal(later.InterestValue))
	assert.True(t, dec("1").Equal(later.InterestRate))
}

func TestSameOrderRow(t *testing.T) {
	a := core.Order{RequisitionNumber: "R1", Material: "Cabo", Requester: "Ana", RequestDate: day(2024, 3, 1)}
	b := a
	b.Material = " cabo "
	b.OrderNumber = "OC9"
	assert.True(t, core.SameOrderRow(a, b))

	b.RequestDate = day(2024, 3, 2)
	assert.False(t, core.SameOrderRow(a, b))
}
