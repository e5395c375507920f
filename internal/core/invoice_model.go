package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Financial statuses of an invoice.
const (
	FinancialInProgress = "EM ANDAMENTO"
	FinancialProblem    = "NF PROBLEMA"
	FinancialCaptured   = "CAPTURADO"
	FinancialFinalized  = "FINALIZADO"
)

// Problem conditions. ProblemNone means the invoice has no open problem.
const (
	ProblemNone       = "N/A"
	ProblemNoOrder    = "SEM PEDIDO"
	ProblemWrongValue = "VALOR INCORRETO"
	ProblemOther      = "OUTRO"
)

var FinancialStatuses = []string{FinancialInProgress, FinancialProblem, FinancialCaptured, FinancialFinalized}

var ProblemConditions = []string{ProblemNone, ProblemNoOrder, ProblemWrongValue, ProblemOther}

// Invoice is one fiscal document going through financial processing.
// InterestValue, InterestRate and InterestDays are a snapshot written by
// ApplyInterest, never recomputed on load. DaysLate keeps moving until FINALIZADO.
type Invoice struct {
	IssueDate        Date            `json:"issue_date"`
	Supplier         string          `json:"supplier"`
	InvoiceNumber    string          `json:"invoice_number"`
	OrderNumber      string          `json:"order_number"`
	InvoiceTotal     decimal.Decimal `json:"invoice_total_value"`
	DueDate          Date            `json:"due_date"`
	FinancialStatus  string          `json:"financial_status"`
	ProblemCondition string          `json:"problem_condition"`
	Notes            string          `json:"notes"`
	InterestValue    decimal.Decimal `json:"interest_value"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	InterestDays     int             `json:"interest_days"`
	FreightValue     decimal.Decimal `json:"freight_value"`
	DaysLate         int             `json:"days_late"`
	DocumentLink     string          `json:"document_link"`

	Extra map[string]string `json:"extra,omitempty"`
}

func (i Invoice) Key() OrderKey {
	return NewOrderKey(i.OrderNumber)
}

// HasProblem reports an open problem: a problem condition other than N/A, or NF PROBLEMA status.
func (i Invoice) HasProblem() bool {
	cond := normalizeText(i.ProblemCondition)
	if cond != "" && cond != ProblemNone {
		return true
	}
	return normalizeText(i.FinancialStatus) == FinancialProblem
}

func (i Invoice) IsFinalized() bool {
	return normalizeText(i.FinancialStatus) == FinancialFinalized
}

// InvoiceQuery selects invoices. Substring matches are case-insensitive.
type InvoiceQuery struct {
	InvoiceNumberContains string   `json:"nf_contains,omitempty"`
	OrderNumberContains   string   `json:"order_contains,omitempty"`
	Supplier              string   `json:"supplier,omitempty"`
	Statuses              []string `json:"statuses,omitempty"`
	From                  Date     `json:"from"`
	To                    Date     `json:"to"`
}

// Matches applies the query. The date range applies to the issue date and is inclusive.
func (q InvoiceQuery) Matches(inv Invoice) bool {
	if q.InvoiceNumberContains != "" && !containsFold(inv.InvoiceNumber, q.InvoiceNumberContains) {
		return false
	}
	if q.OrderNumberContains != "" && !containsFold(inv.OrderNumber, q.OrderNumberContains) {
		return false
	}
	if q.Supplier != "" && normalizeText(inv.Supplier) != normalizeText(q.Supplier) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.ContainsFunc(q.Statuses, func(s string) bool {
		return normalizeText(s) == normalizeText(inv.FinancialStatus)
	}) {
		return false
	}
	if !q.From.IsZero() && (inv.IssueDate.IsZero() || inv.IssueDate.Before(q.From)) {
		return false
	}
	if !q.To.IsZero() && (inv.IssueDate.IsZero() || inv.IssueDate.After(q.To)) {
		return false
	}
	return true
}
