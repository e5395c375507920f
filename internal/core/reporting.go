package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ── Report types ────────────────────────────────────────────────────────────

// DeliveryOverview summarizes orders requested in a period.
type DeliveryOverview struct {
	Period          Period          `json:"period"`
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AverageDaysLate decimal.Decimal `json:"average_days_late"`
}

// SupplierDays is a supplier with a day count or average.
type SupplierDays struct {
	Supplier string          `json:"supplier"`
	Days     decimal.Decimal `json:"days"`
	Orders   int             `json:"orders"`
}

// NamedAmount is a label with a money total.
type NamedAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// MonthlyCount is approved vs delivered orders in one approval month (YYYY-MM).
type MonthlyCount struct {
	Month     string `json:"month"`
	Approved  int    `json:"approved"`
	Delivered int    `json:"delivered"`
}

// MonthlyPercent is an average percentage for one month (YYYY-MM).
type MonthlyPercent struct {
	Month   string          `json:"month"`
	Percent decimal.Decimal `json:"percent"`
}

// NegotiationReport covers locally negotiated purchases.
type NegotiationReport struct {
	Period         Period           `json:"period"`
	Orders         int              `json:"orders"`
	TotalSaved     decimal.Decimal  `json:"total_saved"`
	AverageSavings decimal.Decimal  `json:"average_savings_percent"`
	Monthly        []MonthlyPercent `json:"monthly"`
	TopRequesters  []NamedAmount    `json:"top_requesters"`
}

// FiscalReport summarizes invoices by financial status.
type FiscalReport struct {
	Total             int            `json:"total"`
	InProgress        int            `json:"in_progress"`
	Problem           int            `json:"problem"`
	Captured          int            `json:"captured"`
	Finalized         int            `json:"finalized"`
	ByStatus          map[string]int `json:"by_status"`
	TopProblemVendors []NamedAmount  `json:"top_problem_suppliers"`
}

// SupplierMonthDelta is a supplier's receipt value this month against the previous month.
type SupplierMonthDelta struct {
	Supplier   string          `json:"supplier"`
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	Difference decimal.Decimal `json:"difference"`
}

// ReceiptReport covers warehouse receipts in one month.
type ReceiptReport struct {
	Period          Period               `json:"period"`
	Receipts        int                  `json:"receipts"`
	TotalValue      decimal.Decimal      `json:"total_value"`
	TopByCount      []NamedAmount        `json:"top_by_count"`
	TopByValue      []NamedAmount        `json:"top_by_value"`
	VersusPrevMonth []SupplierMonthDelta `json:"versus_previous_month"`
}

// ReimbursementReport is count and value per status.
type ReimbursementReport struct {
	ByStatus []NamedAmount   `json:"by_status"`
	ByType   []NamedAmount   `json:"by_expense_type"`
	Total    decimal.Decimal `json:"total"`
}

// SupplierRating is a supplier's mean rating over its rated services.
type SupplierRating struct {
	Supplier string          `json:"supplier"`
	Average  decimal.Decimal `json:"average"`
	Rated    int             `json:"rated"`
}

// ServiceReport counts service jobs by status and averages their ratings.
// AverageRating is meaningful only when Rated > 0.
type ServiceReport struct {
	Active        int              `json:"active"`
	Completed     int              `json:"completed"`
	Rated         int              `json:"rated"`
	AverageRating decimal.Decimal  `json:"average_rating"`
	BySupplier    []SupplierRating `json:"by_supplier"`
}

// ── Reports ─────────────────────────────────────────────────────────────────

// Overview counts orders requested in p. Average days late is over all of them.
func Overview(orders []Order, p Period) DeliveryOverview {
	r := DeliveryOverview{Period: p}
	daysSum := 0
	for _, o := range orders {
		if !p.Contains(o.RequestDate) {
			continue
		}
		r.TotalOrders++
		if o.IsDelivered() {
			r.DeliveredOrders++
		} else {
			r.PendingOrders++
		}
		r.TotalValue = r.TotalValue.Add(o.ItemValue)
		daysSum += o.DaysLate
	}
	if r.TotalOrders > 0 {
		r.AverageDaysLate = decimal.NewFromInt(int64(daysSum)).
			Div(decimal.NewFromInt(int64(r.TotalOrders))).Round(1)
	}
	return r
}

// TopLateSuppliers ranks suppliers by summed days late, keeping the first n.
// Suppliers with no lateness are left out.
func TopLateSuppliers(orders []Order, n int) []SupplierDays {
	idx := make(map[string]int)
	var out []SupplierDays
	for _, o := range orders {
		if o.Supplier == "" || o.DaysLate <= 0 {
			continue
		}
		i, ok := idx[o.Supplier]
		if !ok {
			i = len(out)
			idx[o.Supplier] = i
			out = append(out, SupplierDays{Supplier: o.Supplier})
		}
		out[i].Days = out[i].Days.Add(decimal.NewFromInt(int64(o.DaysLate)))
		out[i].Orders++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Days.GreaterThan(out[b].Days) })
	return headN(out, n)
}

// CostByDepartment sums item values above zero per department, largest first.
func CostByDepartment(orders []Order) []NamedAmount {
	return groupAmounts(orders, func(o Order) (string, decimal.Decimal, bool) {
		return o.Department, o.ItemValue, o.Department != "" && o.ItemValue.IsPositive()
	})
}

// MonthlyEvolution counts approved and delivered orders per approval month, oldest first.
func MonthlyEvolution(orders []Order) []MonthlyCount {
	idx := make(map[string]int)
	var out []MonthlyCount
	for _, o := range orders {
		m := o.ApprovalDate.MonthKey()
		if m == "" {
			continue
		}
		i, ok := idx[m]
		if !ok {
			i = len(out)
			idx[m] = i
			out = append(out, MonthlyCount{Month: m})
		}
		out[i].Approved++
		if o.IsDelivered() {
			out[i].Delivered++
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Month < out[b].Month })
	return out
}

// SupplierLeadTimes averages delivery - approval days for delivered orders per
// supplier, fastest first.
func SupplierLeadTimes(orders []Order) []SupplierDays {
	idx := make(map[string]int)
	var out []SupplierDays
	for _, o := range orders {
		if !o.IsDelivered() || o.Supplier == "" || o.DeliveryDate.IsZero() || o.ApprovalDate.IsZero() {
			continue
		}
		i, ok := idx[o.Supplier]
		if !ok {
			i = len(out)
			idx[o.Supplier] = i
			out = append(out, SupplierDays{Supplier: o.Supplier})
		}
		out[i].Days = out[i].Days.Add(decimal.NewFromInt(int64(o.DeliveryDate.DaysSince(o.ApprovalDate))))
		out[i].Orders++
	}
	for i := range out {
		out[i].Days = out[i].Days.Div(decimal.NewFromInt(int64(out[i].Orders))).Round(1)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Days.LessThan(out[b].Days) })
	return out
}

// NegotiationPerformance covers LOCAL orders requested in p with a positive
// item value and a renegotiated value filled in. Savings percent is per order;
// the average is the mean of those. The monthly curve groups by approval month
// and requesters are ranked by number of local orders.
func NegotiationPerformance(orders []Order, p Period, topN int) NegotiationReport {
	r := NegotiationReport{Period: p}
	percentSum := decimal.Zero

	type monthAcc struct {
		sum   decimal.Decimal
		count int
	}
	months := make(map[string]*monthAcc)
	var local []Order

	for _, o := range orders {
		if normalizeText(o.OrderType) != OrderTypeLocal || !p.Contains(o.RequestDate) {
			continue
		}
		if !o.ItemValue.IsPositive() || !o.RenegotiatedValue.IsPositive() {
			continue
		}
		local = append(local, o)
		pct := SavingsPercent(o.ItemValue, o.RenegotiatedValue)
		r.Orders++
		r.TotalSaved = r.TotalSaved.Add(o.Savings())
		percentSum = percentSum.Add(pct)

		if m := o.ApprovalDate.MonthKey(); m != "" {
			acc, ok := months[m]
			if !ok {
				acc = &monthAcc{}
				months[m] = acc
			}
			acc.sum = acc.sum.Add(pct)
			acc.count++
		}
	}
	if r.Orders > 0 {
		r.AverageSavings = percentSum.Div(decimal.NewFromInt(int64(r.Orders))).Round(2)
	}
	for m, acc := range months {
		r.Monthly = append(r.Monthly, MonthlyPercent{
			Month:   m,
			Percent: acc.sum.Div(decimal.NewFromInt(int64(acc.count))).Round(2),
		})
	}
	sort.Slice(r.Monthly, func(a, b int) bool { return r.Monthly[a].Month < r.Monthly[b].Month })

	r.TopRequesters = headN(groupCounts(local, func(o Order) (string, decimal.Decimal, bool) {
		return o.Requester, o.Savings(), o.Requester != ""
	}), topN)
	return r
}

// FiscalOverview counts invoices per financial status and ranks suppliers by
// invoices with an open problem.
func FiscalOverview(invoices []Invoice, topN int) FiscalReport {
	r := FiscalReport{Total: len(invoices), ByStatus: make(map[string]int)}
	var problems []Invoice
	for _, inv := range invoices {
		status := normalizeText(inv.FinancialStatus)
		r.ByStatus[status]++
		switch status {
		case FinancialInProgress:
			r.InProgress++
		case FinancialProblem:
			r.Problem++
		case FinancialCaptured:
			r.Captured++
		case FinancialFinalized:
			r.Finalized++
		}
		if inv.HasProblem() {
			problems = append(problems, inv)
		}
	}
	r.TopProblemVendors = headN(groupCounts(problems, func(inv Invoice) (string, decimal.Decimal, bool) {
		return inv.Supplier, inv.InvoiceTotal, inv.Supplier != ""
	}), topN)
	return r
}

// ReceiptOverview covers receipts dated in p (year and month must be set) and
// compares each supplier's value with the previous month.
func ReceiptOverview(receipts []Receipt, p Period, topN int) ReceiptReport {
	r := ReceiptReport{Period: p}
	prev := p.Previous()

	var current []Receipt
	previous := make(map[string]decimal.Decimal)
	for _, rc := range receipts {
		switch {
		case p.Contains(rc.ReceiptDate):
			current = append(current, rc)
			r.Receipts++
			r.TotalValue = r.TotalValue.Add(rc.InvoiceTotal)
		case prev.Contains(rc.ReceiptDate):
			previous[rc.Supplier] = previous[rc.Supplier].Add(rc.InvoiceTotal)
		}
	}

	byValue := groupAmounts(current, func(rc Receipt) (string, decimal.Decimal, bool) {
		return rc.Supplier, rc.InvoiceTotal, rc.Supplier != ""
	})
	r.TopByValue = headN(byValue, topN)
	r.TopByCount = headN(groupCounts(current, func(rc Receipt) (string, decimal.Decimal, bool) {
		return rc.Supplier, rc.InvoiceTotal, rc.Supplier != ""
	}), topN)

	for _, s := range byValue {
		r.VersusPrevMonth = append(r.VersusPrevMonth, SupplierMonthDelta{
			Supplier:   s.Name,
			Current:    s.Amount,
			Previous:   previous[s.Name],
			Difference: s.Amount.Sub(previous[s.Name]),
		})
	}
	return r
}

// ReimbursementOverview totals claims per status and per expense type.
func ReimbursementOverview(items []Reimbursement) ReimbursementReport {
	var r ReimbursementReport
	r.ByStatus = groupAmounts(items, func(it Reimbursement) (string, decimal.Decimal, bool) {
		return it.Status, it.Value, it.Status != ""
	})
	r.ByType = groupAmounts(items, func(it Reimbursement) (string, decimal.Decimal, bool) {
		return it.ExpenseType, it.Value, it.ExpenseType != ""
	})
	for _, it := range items {
		r.Total = r.Total.Add(it.Value)
	}
	return r
}

// ServiceOverview counts active and completed jobs and averages ratings,
// overall and per supplier (sorted by name), to one decimal place.
func ServiceOverview(jobs []ServiceJob) ServiceReport {
	var r ServiceReport
	sum := 0
	ratings := accumulate(jobs, func(j ServiceJob) (string, decimal.Decimal, bool) {
		return j.Supplier, decimal.NewFromInt(int64(j.Rating)), j.Rating > 0
	})
	for _, j := range jobs {
		switch {
		case j.IsActive():
			r.Active++
		case j.IsCompleted():
			r.Completed++
		}
		if j.Rating > 0 {
			r.Rated++
			sum += j.Rating
		}
	}
	if r.Rated > 0 {
		r.AverageRating = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(r.Rated))).Round(1)
	}
	for _, g := range ratings {
		r.BySupplier = append(r.BySupplier, SupplierRating{
			Supplier: g.Name,
			Average:  g.Amount.Div(decimal.NewFromInt(int64(g.Count))).Round(1),
			Rated:    g.Count,
		})
	}
	sort.SliceStable(r.BySupplier, func(a, b int) bool { return r.BySupplier[a].Supplier < r.BySupplier[b].Supplier })
	return r
}

// ── private helpers ─────────────────────────────────────────────────────────

// groupAmounts sums amounts per key, largest first, ties in first-seen order.
func groupAmounts[T any](items []T, key func(T) (string, decimal.Decimal, bool)) []NamedAmount {
	out := accumulate(items, key)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Amount.GreaterThan(out[b].Amount) })
	return out
}

// groupCounts is groupAmounts ordered by row count instead of amount.
func groupCounts[T any](items []T, key func(T) (string, decimal.Decimal, bool)) []NamedAmount {
	out := accumulate(items, key)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

func accumulate[T any](items []T, key func(T) (string, decimal.Decimal, bool)) []NamedAmount {
	idx := make(map[string]int)
	var out []NamedAmount
	for _, it := range items {
		name, amount, ok := key(it)
		if !ok {
			continue
		}
		i, seen := idx[name]
		if !seen {
			i = len(out)
			idx[name] = i
			out = append(out, NamedAmount{Name: name})
		}
		out[i].Amount = out[i].Amount.Add(amount)
		out[i].Count++
	}
	return out
}

func headN[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
