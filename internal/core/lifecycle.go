package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
)

// Stage is the lifecycle position of an order, derived from its own fields and
// its linked receipt and invoice.
type Stage string

const (
	StagePendingNoPO        Stage = "PENDING_NO_PO"
	StagePOIssued           Stage = "PO_ISSUED"
	StageDelivered          Stage = "DELIVERED"
	StageInvoicedInProgress Stage = "INVOICED_IN_PROGRESS"
	StageInvoiceProblem     Stage = "INVOICE_PROBLEM"
	StageInvoiceFinalized   Stage = "INVOICE_FINALIZED"
)

// Stages lists every stage in happy-path order.
var Stages = []Stage{
	StagePendingNoPO,
	StagePOIssued,
	StageDelivered,
	StageInvoicedInProgress,
	StageInvoiceProblem,
	StageInvoiceFinalized,
}

// transitions is the intended workflow. Edits outside it are only rejected in strict mode.
var transitions = map[Stage][]Stage{
	StagePendingNoPO:        {StagePOIssued},
	StagePOIssued:           {StageDelivered},
	StageDelivered:          {StageInvoicedInProgress},
	StageInvoicedInProgress: {StageInvoiceProblem, StageInvoiceFinalized},
	StageInvoiceProblem:     {StageInvoiceFinalized, StageInvoicedInProgress},
	StageInvoiceFinalized:   {},
}

// StageOf derives the order's stage. A linked invoice decides the stage on its
// own: FINALIZADO first, then any open problem, else in progress.
func StageOf(o Order, l Linkage) Stage {
	if l.Invoice != nil {
		return InvoiceStage(*l.Invoice)
	}
	switch {
	case o.IsDelivered():
		return StageDelivered
	case !o.Key().IsZero():
		return StagePOIssued
	default:
		return StagePendingNoPO
	}
}

// InvoiceStage is the stage an order has once inv is linked to it.
func InvoiceStage(inv Invoice) Stage {
	switch {
	case inv.IsFinalized():
		return StageInvoiceFinalized
	case inv.HasProblem():
		return StageInvoiceProblem
	default:
		return StageInvoicedInProgress
	}
}

// CheckTransition accepts staying in place and the edges of the intended
// workflow; anything else wraps ErrIllegalTransition.
func CheckTransition(from, to Stage) error {
	if from == to {
		return nil
	}
	if slices.Contains(transitions[from], to) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

// AssignPO carries what a buyer records when issuing the purchase order.
type AssignPO struct {
	OrderNumber          string          `json:"order_number"`
	Supplier             string          `json:"supplier"`
	ItemValue            decimal.Decimal `json:"item_value"`
	RenegotiatedValue    decimal.Decimal `json:"renegotiated_value"`
	ApprovalDate         Date            `json:"approval_date"`
	ExpectedDeliveryDate Date            `json:"expected_delivery_date"`
	FreightTerms         string          `json:"freight_terms"`
	OrderType            string          `json:"order_type"`
}

// AssignPurchaseOrder moves an order from PENDING_NO_PO to PO_ISSUED.
// Reassigning an order that already has a number is allowed (buyer correction).
func AssignPurchaseOrder(o Order, a AssignPO) (Order, error) {
	number := strings.TrimSpace(a.OrderNumber)
	if number == "" {
		return o, fmt.Errorf("%w: order number is required", ErrValidation)
	}
	if strings.TrimSpace(a.Supplier) == "" {
		return o, fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	if a.ItemValue.IsNegative() || a.RenegotiatedValue.IsNegative() {
		return o, fmt.Errorf("%w: values must not be negative", ErrValidation)
	}
	if a.FreightTerms != "" && !slices.Contains([]string{FreightCIF, FreightFOB}, normalizeText(a.FreightTerms)) {
		return o, fmt.Errorf("%w: freight terms must be CIF or FOB", ErrValidation)
	}

	o.OrderNumber = string(NewOrderKey(number))
	o.Supplier = strings.TrimSpace(a.Supplier)
	o.ItemValue = a.ItemValue
	o.RenegotiatedValue = a.RenegotiatedValue
	if !a.ApprovalDate.IsZero() {
		o.ApprovalDate = a.ApprovalDate
	}
	if !a.ExpectedDeliveryDate.IsZero() {
		o.ExpectedDeliveryDate = a.ExpectedDeliveryDate
	}
	if a.FreightTerms != "" {
		o.FreightTerms = normalizeText(a.FreightTerms)
	}
	if a.OrderType != "" {
		o.OrderType = normalizeText(a.OrderType)
	}
	if o.DeliveryStatus == "" {
		o.DeliveryStatus = DeliveryPending
	}
	return o, nil
}

// ReceiptOutcome reports how a receipt was applied to the orders table.
type ReceiptOutcome struct {
	Matched int    `json:"matched"`
	Warning string `json:"warning,omitempty"`
}

// Linked reports whether at least one order matched.
func (r ReceiptOutcome) Linked() bool { return r.Matched > 0 }

// ApplyReceipt marks every order whose purchase-order number matches the
// receipt as delivered on the receipt date and copies the NF onto it.
// The input slice is not modified. No match is not an error: the outcome
// carries a warning and the receipt stays an orphan.
func ApplyReceipt(orders []Order, rc Receipt) ([]Order, ReceiptOutcome) {
	out := slices.Clone(orders)
	key := rc.Key()
	if key.IsZero() {
		return out, ReceiptOutcome{Warning: "receipt has no purchase order number; stored unlinked"}
	}

	var outcome ReceiptOutcome
	for i := range out {
		if out[i].Key() != key {
			continue
		}
		out[i].DeliveryStatus = DeliveryDelivered
		out[i].DeliveryDate = rc.ReceiptDate
		out[i].InvoiceNumber = strings.TrimSpace(rc.InvoiceNumber)
		if link := strings.TrimSpace(rc.InvoiceDocumentLink); link != "" {
			out[i].InvoiceLink = link
		}
		outcome.Matched++
	}
	if outcome.Matched == 0 {
		outcome.Warning = fmt.Sprintf("OC %s not found in orders; receipt stored unlinked", key)
	}
	return out, outcome
}

// OpenInvoice starts financial processing for a received NF.
func OpenInvoice(rc Receipt, dueDate Date) Invoice {
	if dueDate.IsZero() {
		dueDate = rc.DueDate
	}
	freight := rc.FreightValue
	if normalizeText(rc.FreightTerms) == FreightCIF {
		freight = decimal.Zero
	}
	return Invoice{
		IssueDate:        rc.ReceiptDate,
		Supplier:         rc.Supplier,
		InvoiceNumber:    strings.TrimSpace(rc.InvoiceNumber),
		OrderNumber:      string(rc.Key()),
		InvoiceTotal:     rc.InvoiceTotal,
		DueDate:          dueDate,
		FinancialStatus:  FinancialInProgress,
		ProblemCondition: ProblemNone,
		FreightValue:     freight,
		DocumentLink:     rc.InvoiceDocumentLink,
	}
}

// InvoiceUpdate is a partial edit by fiscal staff. Nil fields are left unchanged.
type InvoiceUpdate struct {
	FinancialStatus  *string `json:"financial_status,omitempty"`
	ProblemCondition *string `json:"problem_condition,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	DueDate          *Date   `json:"due_date,omitempty"`
	DocumentLink     *string `json:"document_link,omitempty"`
}

// UpdateInvoiceStatus applies u to inv. The financial status must be one of
// FinancialStatuses; a blank problem condition means N/A.
func UpdateInvoiceStatus(inv Invoice, u InvoiceUpdate) (Invoice, error) {
	if u.FinancialStatus != nil {
		status := normalizeText(*u.FinancialStatus)
		if !slices.Contains(FinancialStatuses, status) {
			return inv, fmt.Errorf("%w: unknown financial status %q", ErrValidation, *u.FinancialStatus)
		}
		inv.FinancialStatus = status
	}
	if u.ProblemCondition != nil {
		cond := normalizeText(*u.ProblemCondition)
		if cond == "" {
			cond = ProblemNone
		}
		inv.ProblemCondition = cond
	}
	if u.Notes != nil {
		inv.Notes = strings.TrimSpace(*u.Notes)
	}
	if u.DueDate != nil {
		inv.DueDate = *u.DueDate
	}
	if u.DocumentLink != nil {
		inv.DocumentLink = strings.TrimSpace(*u.DocumentLink)
	}
	return inv, nil
}

// CheckInvoiceUpdate enforces the workflow on an invoice edit: the stage change
// must be an allowed edge, and an invoice cannot be finalized while its problem
// condition is still set.
func CheckInvoiceUpdate(before, after Invoice) error {
	if err := CheckTransition(InvoiceStage(before), InvoiceStage(after)); err != nil {
		return err
	}
	cond := normalizeText(after.ProblemCondition)
	if after.IsFinalized() && cond != "" && cond != ProblemNone {
		return fmt.Errorf("%w: clear problem %q before finalizing", ErrIllegalTransition, after.ProblemCondition)
	}
	return nil
}
