package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"procurement-tracker/internal/store"
)

// WarehouseService registers physical deliveries.
type WarehouseService interface {
	// RegisterReceipt validates and appends a receipt, marks the matching orders
	// delivered and, when openInvoice is set, opens the invoice for financial
	// processing. The receipt is the only mandatory write: a missing order or a
	// failed orders/invoices save is reported in Warnings, not as an error.
	RegisterReceipt(ctx context.Context, in NewReceipt, openInvoice bool) (*ReceiptRegistration, error)

	// ListReceipts returns the stored receipts matching filter, in table order.
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error)
}

// NewReceipt is a delivery as entered by warehouse staff.
type NewReceipt struct {
	ReceiptDate         Date            `json:"receipt_date"`
	ReceiverName        string          `json:"receiver_name"`
	Supplier            string          `json:"supplier"`
	InvoiceNumber       string          `json:"invoice_number"`
	OrderNumber         string          `json:"order_number"`
	Volume              int             `json:"volume"`
	InvoiceTotal        decimal.Decimal `json:"invoice_total_value"`
	FreightTerms        string          `json:"freight_terms"`
	FreightValue        decimal.Decimal `json:"freight_value"`
	Notes               string          `json:"notes"`
	InvoiceDocumentLink string          `json:"invoice_document_link"`
	DueDate             Date            `json:"due_date"`
}

// ReceiptRegistration is the result of RegisterReceipt.
type ReceiptRegistration struct {
	Receipt  Receipt        `json:"receipt"`
	Outcome  ReceiptOutcome `json:"outcome"`
	Invoice  *Invoice       `json:"invoice,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Validate checks a receipt before it is stored and returns the normalized receipt.
// CIF freight is paid by the seller, so its freight value is forced to zero.
func (in NewReceipt) Validate(p Policy) (Receipt, error) {
	var missing []string
	if strings.TrimSpace(in.Supplier) == "" {
		missing = append(missing, "supplier")
	}
	if strings.TrimSpace(in.InvoiceNumber) == "" {
		missing = append(missing, "NF")
	}
	if strings.TrimSpace(in.OrderNumber) == "" {
		missing = append(missing, "purchase order")
	}
	if len(missing) > 0 {
		return Receipt{}, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if !in.InvoiceTotal.IsPositive() {
		return Receipt{}, fmt.Errorf("%w: NF total must be greater than zero", ErrValidation)
	}
	if in.FreightValue.IsNegative() {
		return Receipt{}, fmt.Errorf("%w: freight value must not be negative", ErrValidation)
	}
	terms := normalizeText(in.FreightTerms)
	if terms != "" && !slices.Contains([]string{FreightCIF, FreightFOB}, terms) {
		return Receipt{}, fmt.Errorf("%w: freight terms must be CIF or FOB", ErrValidation)
	}

	volume := in.Volume
	if volume == 0 {
		volume = 1
	}
	if volume < 1 {
		return Receipt{}, fmt.Errorf("%w: volume must be at least 1", ErrValidation)
	}

	rc := Receipt{
		ReceiptDate:         in.ReceiptDate,
		ReceiverName:        strings.TrimSpace(in.ReceiverName),
		Supplier:            strings.TrimSpace(in.Supplier),
		InvoiceNumber:       strings.TrimSpace(in.InvoiceNumber),
		OrderNumber:         string(NewOrderKey(in.OrderNumber)),
		Volume:              volume,
		InvoiceTotal:        in.InvoiceTotal,
		FreightTerms:        terms,
		FreightValue:        in.FreightValue,
		Notes:               strings.TrimSpace(in.Notes),
		InvoiceDocumentLink: strings.TrimSpace(in.InvoiceDocumentLink),
		DueDate:             in.DueDate,
	}
	if rc.ReceiptDate.IsZero() {
		rc.ReceiptDate = Today()
	}
	if terms == FreightCIF {
		rc.FreightValue = decimal.Zero
	}
	rc.DueDate = p.InvoiceDueDate(rc)
	return rc, nil
}

type warehouseService struct {
	store  store.Store
	policy Policy
	events EventRecorder
	log    *zap.Logger
}

// NewWarehouseService constructs a WarehouseService over st.
func NewWarehouseService(st store.Store, policy Policy, events EventRecorder, log *zap.Logger) WarehouseService {
	if events == nil {
		events = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &warehouseService{store: st, policy: policy, events: events, log: log}
}

func (s *warehouseService) RegisterReceipt(ctx context.Context, in NewReceipt, openInvoice bool) (*ReceiptRegistration, error) {
	rc, err := in.Validate(s.policy)
	if err != nil {
		return nil, err
	}

	receipts, err := loadReceipts(ctx, s.store)
	if err != nil {
		return nil, err
	}
	reg := &ReceiptRegistration{Receipt: rc}
	if slices.ContainsFunc(receipts, func(r Receipt) bool {
		return normalizeText(r.InvoiceNumber) == normalizeText(rc.InvoiceNumber) &&
			normalizeText(r.Supplier) == normalizeText(rc.Supplier)
	}) {
		reg.Warnings = append(reg.Warnings, fmt.Sprintf("NF %s from %s was already received", rc.InvoiceNumber, rc.Supplier))
	}
	receipts = append(receipts, rc)
	if err := saveReceipts(ctx, s.store, receipts); err != nil {
		return nil, err
	}

	reg.Outcome, reg.Warnings = s.applyToOrders(ctx, rc, reg.Warnings)
	s.events.RecordReceipt(reg.Outcome.Linked())

	if openInvoice {
		inv, warnings := s.openInvoice(ctx, rc, reg.Outcome)
		reg.Invoice = inv
		reg.Warnings = append(reg.Warnings, warnings...)
	}

	s.log.Info("receipt registered",
		zap.String("order_number", rc.OrderNumber),
		zap.String("nf", rc.InvoiceNumber),
		zap.Int("orders_matched", reg.Outcome.Matched),
		zap.Bool("invoice_opened", reg.Invoice != nil))
	return reg, nil
}

func (s *warehouseService) applyToOrders(ctx context.Context, rc Receipt, warnings []string) (ReceiptOutcome, []string) {
	orders, err := loadOrders(ctx, s.store)
	if err != nil {
		s.log.Warn("receipt stored but orders could not be loaded", zap.String("nf", rc.InvoiceNumber), zap.Error(err))
		return ReceiptOutcome{}, append(warnings, "receipt stored, but orders were not updated: "+err.Error())
	}

	updated, outcome := ApplyReceipt(orders, rc)
	if outcome.Warning != "" {
		s.log.Warn("orphan receipt", zap.String("order_number", rc.OrderNumber), zap.String("nf", rc.InvoiceNumber))
		warnings = append(warnings, outcome.Warning)
	}
	if !outcome.Linked() {
		return outcome, warnings
	}

	for i := range updated {
		if updated[i].Key() == rc.Key() {
			updated[i] = s.policy.RecomputeOrder(updated[i])
			s.events.RecordStageTransition(string(StageOf(orders[i], Linkage{})), string(StageDelivered))
		}
	}
	if err := saveOrders(ctx, s.store, updated); err != nil {
		s.log.Warn("receipt stored but orders save failed", zap.String("nf", rc.InvoiceNumber), zap.Error(err))
		warnings = append(warnings, "receipt stored, but orders were not updated: "+err.Error())
		outcome.Matched = 0
	}
	return outcome, warnings
}

func (s *warehouseService) openInvoice(ctx context.Context, rc Receipt, outcome ReceiptOutcome) (*Invoice, []string) {
	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		s.log.Warn("invoice not opened", zap.String("nf", rc.InvoiceNumber), zap.Error(err))
		return nil, []string{"invoice not opened: " + err.Error()}
	}
	for _, inv := range invoices {
		if normalizeText(inv.InvoiceNumber) == normalizeText(rc.InvoiceNumber) &&
			normalizeText(inv.Supplier) == normalizeText(rc.Supplier) {
			return nil, []string{fmt.Sprintf("invoice NF %s already exists; not opened again", rc.InvoiceNumber)}
		}
	}

	inv := OpenInvoice(rc, s.policy.InvoiceDueDate(rc))
	if !outcome.Linked() {
		inv.ProblemCondition = ProblemNoOrder
	}
	invoices = append(invoices, inv)
	if err := saveInvoices(ctx, s.store, invoices); err != nil {
		s.log.Warn("invoice save failed", zap.String("nf", rc.InvoiceNumber), zap.Error(err))
		return nil, []string{"invoice not opened: " + err.Error()}
	}
	if outcome.Linked() {
		s.events.RecordStageTransition(string(StageDelivered), string(StageInvoicedInProgress))
	}
	return &inv, nil
}

func (s *warehouseService) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]Receipt, error) {
	receipts, err := loadReceipts(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]Receipt, 0, len(receipts))
	for _, rc := range receipts {
		if filter.Matches(rc) {
			out = append(out, rc)
		}
	}
	return out, nil
}
