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

// FiscalService covers financial processing of invoices.
type FiscalService interface {
	// ListInvoices returns stored invoices matching q, in table order.
	ListInvoices(ctx context.Context, q InvoiceQuery) ([]Invoice, error)

	// RegisterInvoice appends an invoice entered directly by fiscal staff
	// (status EM ANDAMENTO, problem N/A). An order number that matches no order
	// is stored with a warning.
	RegisterInvoice(ctx context.Context, in NewInvoice) (*InvoiceRegistration, error)

	// UpdateInvoice edits the first invoice whose NF equals nf.
	UpdateInvoice(ctx context.Context, nf string, u InvoiceUpdate) (*Invoice, error)

	// EstimateInterest computes live interest for the invoice with the given NF
	// as of asOf. Nothing is stored.
	EstimateInterest(ctx context.Context, nf string, dailyRatePercent decimal.Decimal, asOf Date) (*InterestEstimate, error)

	// ApplyInterest stores an interest snapshot on every invoice whose NF is in nfs.
	ApplyInterest(ctx context.Context, nfs []string, dailyRatePercent decimal.Decimal, asOf Date) (*InterestApplication, error)
}

// NewInvoice is an invoice entered by fiscal staff.
type NewInvoice struct {
	IssueDate     Date            `json:"issue_date"`
	Supplier      string          `json:"supplier"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderNumber   string          `json:"order_number"`
	InvoiceTotal  decimal.Decimal `json:"invoice_total_value"`
	DueDate       Date            `json:"due_date"`
	FreightValue  decimal.Decimal `json:"freight_value"`
	Notes         string          `json:"notes"`
	DocumentLink  string          `json:"document_link"`
}

// InvoiceRegistration is the result of RegisterInvoice.
type InvoiceRegistration struct {
	Invoice  Invoice  `json:"invoice"`
	Warnings []string `json:"warnings,omitempty"`
}

// InterestEstimate is a live interest figure.
type InterestEstimate struct {
	InvoiceNumber    string          `json:"invoice_number"`
	InvoiceTotal     decimal.Decimal `json:"invoice_total_value"`
	DaysLate         int             `json:"days_late"`
	DailyRatePercent decimal.Decimal `json:"daily_rate_percent"`
	Interest         decimal.Decimal `json:"interest"`
	AsOf             Date            `json:"as_of"`
}

// InterestApplication reports an ApplyInterest call.
type InterestApplication struct {
	Applied  int       `json:"applied"`
	Invoices []Invoice `json:"invoices"`
	Missing  []string  `json:"missing,omitempty"`
}

type fiscalService struct {
	store  store.Store
	policy Policy
	events EventRecorder
	log    *zap.Logger
}

// NewFiscalService constructs a FiscalService over st.
func NewFiscalService(st store.Store, policy Policy, events EventRecorder, log *zap.Logger) FiscalService {
	if events == nil {
		events = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &fiscalService{store: st, policy: policy, events: events, log: log}
}

func (s *fiscalService) ListInvoices(ctx context.Context, q InvoiceQuery) ([]Invoice, error) {
	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if q.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fiscalService) RegisterInvoice(ctx context.Context, in NewInvoice) (*InvoiceRegistration, error) {
	if strings.TrimSpace(in.InvoiceNumber) == "" || strings.TrimSpace(in.Supplier) == "" {
		return nil, fmt.Errorf("%w: NF and supplier are required", ErrValidation)
	}
	if in.InvoiceTotal.IsNegative() || in.FreightValue.IsNegative() {
		return nil, fmt.Errorf("%w: values must not be negative", ErrValidation)
	}

	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if normalizeText(inv.InvoiceNumber) == normalizeText(in.InvoiceNumber) &&
			normalizeText(inv.Supplier) == normalizeText(in.Supplier) {
			return nil, fmt.Errorf("%w: NF %s from %s already registered", ErrValidation, in.InvoiceNumber, in.Supplier)
		}
	}

	inv := Invoice{
		IssueDate:        in.IssueDate,
		Supplier:         strings.TrimSpace(in.Supplier),
		InvoiceNumber:    strings.TrimSpace(in.InvoiceNumber),
		OrderNumber:      string(NewOrderKey(in.OrderNumber)),
		InvoiceTotal:     in.InvoiceTotal,
		DueDate:          in.DueDate,
		FinancialStatus:  FinancialInProgress,
		ProblemCondition: ProblemNone,
		Notes:            strings.TrimSpace(in.Notes),
		FreightValue:     in.FreightValue,
		DocumentLink:     strings.TrimSpace(in.DocumentLink),
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = Today()
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.AddDays(s.policy.InvoiceDueDays)
	}

	reg := &InvoiceRegistration{}
	var from Stage
	if key := inv.Key(); !key.IsZero() {
		orders, err := loadOrders(ctx, s.store)
		if err != nil {
			reg.Warnings = append(reg.Warnings, "order link not verified: "+err.Error())
		} else {
			idx := slices.IndexFunc(orders, func(o Order) bool { return o.Key() == key })
			switch {
			case idx < 0:
				reg.Warnings = append(reg.Warnings, fmt.Sprintf("OC %s not found in orders; invoice stored unlinked", key))
				s.log.Warn("orphan invoice", zap.String("order_number", key.String()), zap.String("nf", inv.InvoiceNumber))
			default:
				from = StageOf(orders[idx], Linkage{})
				if s.policy.StrictTransitions {
					if err := CheckTransition(from, StageInvoicedInProgress); err != nil {
						return nil, fmt.Errorf("OC %s: %w", key, err)
					}
				}
			}
		}
	}

	invoices = append(invoices, inv)
	if err := saveInvoices(ctx, s.store, invoices); err != nil {
		return nil, err
	}
	if from != "" {
		s.events.RecordStageTransition(string(from), string(StageInvoicedInProgress))
	}
	s.log.Info("invoice registered", zap.String("nf", inv.InvoiceNumber), zap.String("order_number", inv.OrderNumber))
	reg.Invoice = inv
	return reg, nil
}

func (s *fiscalService) UpdateInvoice(ctx context.Context, nf string, u InvoiceUpdate) (*Invoice, error) {
	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		return nil, err
	}
	idx := indexByNF(invoices, nf)
	if idx < 0 {
		return nil, fmt.Errorf("invoice NF %s: %w", nf, ErrNotFound)
	}

	before := invoices[idx]
	after, err := UpdateInvoiceStatus(before, u)
	if err != nil {
		return nil, err
	}
	if s.policy.StrictTransitions {
		if err := CheckInvoiceUpdate(before, after); err != nil {
			return nil, fmt.Errorf("invoice NF %s: %w", nf, err)
		}
	}

	invoices[idx] = after
	if err := saveInvoices(ctx, s.store, invoices); err != nil {
		return nil, err
	}
	s.events.RecordStageTransition(string(InvoiceStage(before)), string(InvoiceStage(after)))
	s.log.Info("invoice updated",
		zap.String("nf", after.InvoiceNumber),
		zap.String("financial_status", after.FinancialStatus),
		zap.String("problem_condition", after.ProblemCondition))
	return &after, nil
}

func (s *fiscalService) EstimateInterest(ctx context.Context, nf string, dailyRatePercent decimal.Decimal, asOf Date) (*InterestEstimate, error) {
	if dailyRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: daily rate must not be negative", ErrValidation)
	}
	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		return nil, err
	}
	idx := indexByNF(invoices, nf)
	if idx < 0 {
		return nil, fmt.Errorf("invoice NF %s: %w", nf, ErrNotFound)
	}
	if asOf.IsZero() {
		asOf = Today()
	}
	inv := invoices[idx]
	return &InterestEstimate{
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceTotal:     inv.InvoiceTotal,
		DaysLate:         DaysLate(asOf, inv.DueDate),
		DailyRatePercent: dailyRatePercent,
		Interest:         EstimateInterest(inv, dailyRatePercent, asOf).Round(2),
		AsOf:             asOf,
	}, nil
}

func (s *fiscalService) ApplyInterest(ctx context.Context, nfs []string, dailyRatePercent decimal.Decimal, asOf Date) (*InterestApplication, error) {
	if len(nfs) == 0 {
		return nil, fmt.Errorf("%w: select at least one NF", ErrValidation)
	}
	if dailyRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: daily rate must not be negative", ErrValidation)
	}
	invoices, err := loadInvoices(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = Today()
	}

	wanted := make(map[string]bool, len(nfs))
	for _, nf := range nfs {
		wanted[normalizeText(nf)] = true
	}
	found := make(map[string]bool)
	updated, n := ApplyInterest(invoices, func(inv Invoice) bool {
		nf := normalizeText(inv.InvoiceNumber)
		if wanted[nf] {
			found[nf] = true
			return true
		}
		return false
	}, dailyRatePercent, asOf)

	res := &InterestApplication{Applied: n}
	for _, nf := range nfs {
		if !found[normalizeText(nf)] {
			res.Missing = append(res.Missing, nf)
		}
	}
	if n == 0 {
		return res, nil
	}
	if err := saveInvoices(ctx, s.store, updated); err != nil {
		return nil, err
	}
	for _, inv := range updated {
		if found[normalizeText(inv.InvoiceNumber)] {
			res.Invoices = append(res.Invoices, inv)
		}
	}
	s.log.Info("interest applied", zap.Int("invoices", n), zap.String("daily_rate_percent", dailyRatePercent.String()))
	return res, nil
}

func indexByNF(invoices []Invoice, nf string) int {
	want := normalizeText(nf)
	if want == "" {
		return -1
	}
	return slices.IndexFunc(invoices, func(inv Invoice) bool {
		return normalizeText(inv.InvoiceNumber) == want
	})
}
