package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DaysToApprove is approval - request in days, 0 when either is absent.
// Not clamped: an approval dated before the request yields a negative value.
func DaysToApprove(request, approval Date) int {
	if request.IsZero() || approval.IsZero() {
		return 0
	}
	return approval.DaysSince(request)
}

// DaysLate is max(0, delivery - due) in days, 0 when either is absent.
func DaysLate(delivery, due Date) int {
	if delivery.IsZero() || due.IsZero() {
		return 0
	}
	return max(0, delivery.DaysSince(due))
}

// AccruedInterest is base * (dailyRatePercent / 100) * daysLate.
// Non-positive days or rate yield zero.
func AccruedInterest(base, dailyRatePercent decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= 0 || !dailyRatePercent.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(dailyRatePercent.Div(hundred)).Mul(decimal.NewFromInt(int64(daysLate)))
}

// SavingsPercent is (original - renegotiated) / original * 100, or 0 when original <= 0.
func SavingsPercent(original, renegotiated decimal.Decimal) decimal.Decimal {
	if !original.IsPositive() {
		return decimal.Zero
	}
	return original.Sub(renegotiated).Div(original).Mul(hundred)
}

// Policy holds the configurable rules of the derived fields.
type Policy struct {
	// DeliveryGraceDays is added to the approval date when an order has no
	// expected delivery date.
	DeliveryGraceDays int
	// InvoiceDueDays is added to the receipt date when a receipt has no due date.
	InvoiceDueDays int
	// StrictTransitions rejects edits outside the intended workflow.
	StrictTransitions bool
}

func DefaultPolicy() Policy {
	return Policy{DeliveryGraceDays: 15, InvoiceDueDays: 30}
}

// OrderDueDate is the expected delivery date when set, otherwise approval date
// plus the grace period. Absent when both are absent.
func (p Policy) OrderDueDate(o Order) Date {
	if !o.ExpectedDeliveryDate.IsZero() {
		return o.ExpectedDeliveryDate
	}
	return o.ApprovalDate.AddDays(p.DeliveryGraceDays)
}

// InvoiceDueDate is the receipt's due date when set, otherwise receipt date
// plus the invoice term.
func (p Policy) InvoiceDueDate(rc Receipt) Date {
	if !rc.DueDate.IsZero() {
		return rc.DueDate
	}
	return rc.ReceiptDate.AddDays(p.InvoiceDueDays)
}

// RecomputeOrder refreshes the order's date-delta fields.
func (p Policy) RecomputeOrder(o Order) Order {
	o.DaysToApprove = DaysToApprove(o.RequestDate, o.ApprovalDate)
	o.DaysLate = DaysLate(o.DeliveryDate, p.OrderDueDate(o))
	return o
}

// RecomputeInvoice refreshes days late against asOf. Finalized invoices keep
// their stored value. Interest is never touched here.
func RecomputeInvoice(inv Invoice, asOf Date) Invoice {
	if inv.IsFinalized() {
		return inv
	}
	inv.DaysLate = DaysLate(asOf, inv.DueDate)
	return inv
}

// Tables is the in-memory state of the three linked tables.
type Tables struct {
	Orders   []Order   `json:"orders"`
	Receipts []Receipt `json:"receipts"`
	Invoices []Invoice `json:"invoices"`
}

// RecomputeResult is the output of one full recompute pass.
type RecomputeResult struct {
	Orders    []Order   `json:"orders"`
	Invoices  []Invoice `json:"invoices"`
	Stages    []Stage   `json:"stages"`
	Anomalies []Anomaly `json:"anomalies"`
}

// Recompute runs the derived-field pass over every row and returns new slices;
// the input is not modified. asOf is the reference day for invoice lateness.
func Recompute(t Tables, p Policy, asOf Date) RecomputeResult {
	res := RecomputeResult{
		Orders:   make([]Order, len(t.Orders)),
		Invoices: make([]Invoice, len(t.Invoices)),
		Stages:   make([]Stage, len(t.Orders)),
	}
	for i, inv := range t.Invoices {
		res.Invoices[i] = RecomputeInvoice(inv, asOf)
	}
	for i, o := range t.Orders {
		o = p.RecomputeOrder(o)
		l := ResolveOrder(o, t.Receipts, res.Invoices)
		res.Orders[i] = o
		res.Stages[i] = StageOf(o, l)
		res.Anomalies = append(res.Anomalies, l.Anomalies...)
	}
	res.Anomalies = dedupeAnomalies(res.Anomalies)
	return res
}

// EstimateInterest is the live interest of inv at dailyRatePercent as of asOf.
// It is a view only and never stored.
func EstimateInterest(inv Invoice, dailyRatePercent decimal.Decimal, asOf Date) decimal.Decimal {
	return AccruedInterest(inv.InvoiceTotal, dailyRatePercent, DaysLate(asOf, inv.DueDate))
}

// ApplyInterest snapshots interest on the invoices selected by selector: the
// value, the rate used and the days it was charged for (InterestDays) stay
// fixed until applied again. DaysLate is refreshed to the same day count but
// RecomputeInvoice keeps moving it afterwards. Returns the new slice and how
// many invoices changed.
func ApplyInterest(invoices []Invoice, selector func(Invoice) bool, dailyRatePercent decimal.Decimal, asOf Date) ([]Invoice, int) {
	out := slices.Clone(invoices)
	n := 0
	for i := range out {
		if !selector(out[i]) {
			continue
		}
		days := DaysLate(asOf, out[i].DueDate)
		out[i].DaysLate = days
		out[i].InterestDays = days
		out[i].InterestRate = dailyRatePercent
		out[i].InterestValue = AccruedInterest(out[i].InvoiceTotal, dailyRatePercent, days).Round(2)
		n++
	}
	return out, n
}

// SameOrderRow reports whether a and b describe the same requisitioned line.
// Orders carry no surrogate id, so identity is requisition, material, requester
// and request date.
func SameOrderRow(a, b Order) bool {
	return normalizeText(a.RequisitionNumber) == normalizeText(b.RequisitionNumber) &&
		normalizeText(a.Material) == normalizeText(b.Material) &&
		normalizeText(a.Requester) == normalizeText(b.Requester) &&
		a.RequestDate.Equal(b.RequestDate)
}
