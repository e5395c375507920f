package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"procurement-tracker/internal/ai"
	"procurement-tracker/internal/core"
	"procurement-tracker/internal/store"
)

const topN = 10

type appService struct {
	store       store.Store
	policy      core.Policy
	procurement core.ProcurementService
	warehouse   core.WarehouseService
	fiscal      core.FiscalService
	registry    core.RegistryService
	services    core.ServiceTrackingService
	parser      ai.NoteParser
	log         *zap.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// parser may be nil, in which case the note interpretation path returns ErrAIUnavailable.
func NewAppService(
	st store.Store,
	policy core.Policy,
	events core.EventRecorder,
	parser ai.NoteParser,
	log *zap.Logger,
) ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		store:       st,
		policy:      policy,
		procurement: core.NewProcurementService(st, policy, events, log.Named("procurement")),
		warehouse:   core.NewWarehouseService(st, policy, events, log.Named("warehouse")),
		fiscal:      core.NewFiscalService(st, policy, events, log.Named("fiscal")),
		registry:    core.NewRegistryService(st, log.Named("registry")),
		services:    core.NewServiceTrackingService(st, log.Named("services")),
		parser:      parser,
		log:         log,
	}
}

// ── workspace ───────────────────────────────────────────────────────────────

// LoadWorkspace loads and joins the three linked tables.
func (s *appService) LoadWorkspace(ctx context.Context) *WorkspaceResult {
	tables, errs := core.LoadTables(ctx, s.store)
	s.logTableErrors("load", errs)

	joined := core.Join(tables.Orders, tables.Receipts, tables.Invoices)
	return &WorkspaceResult{
		Orders:         joined.Orders,
		OrphanReceipts: joined.OrphanReceipts,
		OrphanInvoices: joined.OrphanInvoices,
		Anomalies:      anomalyMessages(joined.Anomalies),
		TableErrors:    errs.Messages(),
	}
}

// Recompute refreshes derived fields and saves orders and invoices.
func (s *appService) Recompute(ctx context.Context, asOf core.Date) *RecomputeResult {
	if asOf.IsZero() {
		asOf = core.Today()
	}
	tables, loadErrs := core.LoadTables(ctx, s.store)
	s.logTableErrors("load", loadErrs)

	res := core.Recompute(tables, s.policy, asOf)
	saveErrs := core.SaveRecomputed(ctx, s.store, res, loadErrs)
	s.logTableErrors("save", saveErrs)

	for name, err := range saveErrs {
		loadErrs[name] = err
	}
	s.log.Info("workspace recomputed",
		zap.String("as_of", asOf.String()),
		zap.Int("orders", len(res.Orders)),
		zap.Int("invoices", len(res.Invoices)),
		zap.Int("anomalies", len(res.Anomalies)))
	return &RecomputeResult{
		Orders:      len(res.Orders),
		Invoices:    len(res.Invoices),
		Anomalies:   anomalyMessages(res.Anomalies),
		TableErrors: loadErrs.Messages(),
	}
}

// ── procurement ─────────────────────────────────────────────────────────────

// ListOrders returns stored orders matching filter.
func (s *appService) ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error) {
	orders, err := s.procurement.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

// GetOrder returns the linked view of one purchase-order number.
func (s *appService) GetOrder(ctx context.Context, orderNumber string) (*OrderDetailResult, error) {
	key := core.NewOrderKey(orderNumber)
	if key.IsZero() {
		return nil, fmt.Errorf("%w: order number is required", core.ErrValidation)
	}

	tables, errs := core.LoadTables(ctx, s.store)
	if err := errs[store.TableOrders]; err != nil {
		return nil, err
	}
	s.logTableErrors("load", errs)

	res := &OrderDetailResult{OrderNumber: key.String(), TableErrors: errs.Messages()}
	var anomalies []core.Anomaly
	for _, o := range tables.Orders {
		if o.Key() != key {
			continue
		}
		l := core.ResolveOrder(o, tables.Receipts, tables.Invoices)
		res.Lines = append(res.Lines, core.JoinedOrder{
			Order:   o,
			Receipt: l.Receipt,
			Invoice: l.Invoice,
			Stage:   core.StageOf(o, l),
		})
		anomalies = append(anomalies, l.Anomalies...)
	}
	if len(res.Lines) == 0 {
		return nil, fmt.Errorf("OC %s: %w", key, core.ErrNotFound)
	}
	res.Anomalies = anomalyMessages(anomalies)
	return res, nil
}

// CreateRequisition appends a new requisition.
func (s *appService) CreateRequisition(ctx context.Context, req core.NewRequisition) (*core.Order, error) {
	return s.procurement.CreateRequisition(ctx, req)
}

// AssignPurchaseOrder issues the purchase order for the order at req.Row.
func (s *appService) AssignPurchaseOrder(ctx context.Context, req AssignPORequest) (*core.Order, error) {
	return s.procurement.AssignPurchaseOrder(ctx, req.Row, req.AssignPO)
}

// ReplaceOrders overwrites the orders table.
func (s *appService) ReplaceOrders(ctx context.Context, orders []core.Order) (*core.ReplaceResult, error) {
	return s.procurement.ReplaceOrders(ctx, orders)
}

// ReconcileDeliveries re-applies stored receipts to pending orders.
func (s *appService) ReconcileDeliveries(ctx context.Context) (*core.ReconcileResult, error) {
	return s.procurement.ReconcileDeliveries(ctx)
}

// ── warehouse ───────────────────────────────────────────────────────────────

// RegisterReceipt records a delivery.
func (s *appService) RegisterReceipt(ctx context.Context, req ReceiveRequest) (*core.ReceiptRegistration, error) {
	return s.warehouse.RegisterReceipt(ctx, req.NewReceipt, req.OpenInvoice)
}

// ListReceipts returns stored receipts matching filter.
func (s *appService) ListReceipts(ctx context.Context, filter core.ReceiptFilter) (*ReceiptListResult, error) {
	receipts, err := s.warehouse.ListReceipts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ReceiptListResult{Receipts: receipts}, nil
}

// ── fiscal ──────────────────────────────────────────────────────────────────

// ListInvoices returns stored invoices matching q.
func (s *appService) ListInvoices(ctx context.Context, q core.InvoiceQuery) (*InvoiceListResult, error) {
	invoices, err := s.fiscal.ListInvoices(ctx, q)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) RegisterInvoice(ctx context.Context, in core.NewInvoice) (*core.InvoiceRegistration, error) {
	return s.fiscal.RegisterInvoice(ctx, in)
}

func (s *appService) UpdateInvoice(ctx context.Context, nf string, u core.InvoiceUpdate) (*core.Invoice, error) {
	return s.fiscal.UpdateInvoice(ctx, nf, u)
}

func (s *appService) EstimateInterest(ctx context.Context, nf string, dailyRatePercent decimal.Decimal, asOf core.Date) (*core.InterestEstimate, error) {
	return s.fiscal.EstimateInterest(ctx, nf, dailyRatePercent, asOf)
}

func (s *appService) ApplyInterest(ctx context.Context, req ApplyInterestRequest) (*core.InterestApplication, error) {
	return s.fiscal.ApplyInterest(ctx, req.InvoiceNumbers, req.DailyRatePercent, req.AsOf)
}

// ── dashboards ──────────────────────────────────────────────────────────────

// DeliveryDashboard runs every order report. Only the overview is restricted to period.
func (s *appService) DeliveryDashboard(ctx context.Context, period core.Period) (*DeliveryDashboardResult, error) {
	orders, err := s.procurement.ListOrders(ctx, core.OrderFilter{})
	if err != nil {
		return nil, err
	}
	inPeriod := make([]core.Order, 0, len(orders))
	for _, o := range orders {
		if period.Contains(o.RequestDate) {
			inPeriod = append(inPeriod, o)
		}
	}
	return &DeliveryDashboardResult{
		Overview:         core.Overview(orders, period),
		TopLateSuppliers: core.TopLateSuppliers(inPeriod, topN),
		CostByDepartment: core.CostByDepartment(inPeriod),
		MonthlyEvolution: core.MonthlyEvolution(orders),
		LeadTimes:        core.SupplierLeadTimes(inPeriod),
	}, nil
}

func (s *appService) NegotiationDashboard(ctx context.Context, period core.Period) (*core.NegotiationReport, error) {
	orders, err := s.procurement.ListOrders(ctx, core.OrderFilter{})
	if err != nil {
		return nil, err
	}
	r := core.NegotiationPerformance(orders, period, topN)
	return &r, nil
}

func (s *appService) FiscalDashboard(ctx context.Context) (*core.FiscalReport, error) {
	invoices, err := s.fiscal.ListInvoices(ctx, core.InvoiceQuery{})
	if err != nil {
		return nil, err
	}
	r := core.FiscalOverview(invoices, topN)
	return &r, nil
}

// ReceiptDashboard defaults to the current month when period is open.
func (s *appService) ReceiptDashboard(ctx context.Context, period core.Period) (*core.ReceiptReport, error) {
	if period.Year == 0 || period.Month == 0 {
		today := core.Today()
		if period.Year == 0 {
			period.Year = today.Year()
		}
		if period.Month == 0 {
			period.Month = int(today.Month())
		}
	}
	receipts, err := s.warehouse.ListReceipts(ctx, core.ReceiptFilter{})
	if err != nil {
		return nil, err
	}
	r := core.ReceiptOverview(receipts, period, 5)
	return &r, nil
}

func (s *appService) ReimbursementDashboard(ctx context.Context) (*core.ReimbursementReport, error) {
	items, err := s.registry.ListReimbursements(ctx, "")
	if err != nil {
		return nil, err
	}
	r := core.ReimbursementOverview(items)
	return &r, nil
}

func (s *appService) ServiceDashboard(ctx context.Context) (*core.ServiceReport, error) {
	jobs, err := s.services.ListServiceJobs(ctx, "")
	if err != nil {
		return nil, err
	}
	r := core.ServiceOverview(jobs)
	return &r, nil
}

// ── registry ────────────────────────────────────────────────────────────────

func (s *appService) ListRequesters(ctx context.Context) ([]core.Requester, error) {
	return s.registry.ListRequesters(ctx)
}

func (s *appService) RegisterRequester(ctx context.Context, rq core.Requester) (*core.Requester, error) {
	return s.registry.RegisterRequester(ctx, rq)
}

func (s *appService) SubmitReimbursement(ctx context.Context, in core.NewReimbursement) (*core.Reimbursement, error) {
	return s.registry.SubmitReimbursement(ctx, in)
}

func (s *appService) ListReimbursements(ctx context.Context, status string) ([]core.Reimbursement, error) {
	return s.registry.ListReimbursements(ctx, status)
}

func (s *appService) UpdateReimbursementStatus(ctx context.Context, row int, status string) (*core.Reimbursement, error) {
	return s.registry.UpdateReimbursementStatus(ctx, row, status)
}

// ── service jobs ────────────────────────────────────────────────────────────

func (s *appService) ListServiceJobs(ctx context.Context, status string) ([]core.ServiceJob, error) {
	return s.services.ListServiceJobs(ctx, status)
}

func (s *appService) RegisterServiceJob(ctx context.Context, in core.NewServiceJob) (*core.ServiceJob, error) {
	return s.services.RegisterServiceJob(ctx, in)
}

func (s *appService) CompleteServiceJob(ctx context.Context, row int, r core.ServiceRating) (*core.ServiceJob, error) {
	return s.services.CompleteServiceJob(ctx, row, r)
}

// ── AI notes ────────────────────────────────────────────────────────────────

// InterpretReceiptNote parses a delivery note against the orders still awaiting delivery.
func (s *appService) InterpretReceiptNote(ctx context.Context, note string) (*ai.ReceiptDraft, error) {
	if s.parser == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(note) == "" {
		return nil, fmt.Errorf("%w: note is empty", core.ErrValidation)
	}

	open, err := s.procurement.ListOrders(ctx, core.OrderFilter{DeliveryStatus: core.DeliveryPending})
	if err != nil {
		s.log.Warn("open orders unavailable for note context", zap.Error(err))
		open = nil
	}
	withPO := open[:0]
	for _, o := range open {
		if !o.Key().IsZero() {
			withPO = append(withPO, o)
		}
	}

	draft, err := s.parser.ParseReceiptNote(ctx, note, withPO)
	if err != nil {
		return nil, fmt.Errorf("interpret note: %w", err)
	}
	return draft, nil
}

// CommitReceiptDraft registers a confirmed draft.
func (s *appService) CommitReceiptDraft(ctx context.Context, draft ai.ReceiptDraft, openInvoice bool) (*core.ReceiptRegistration, error) {
	if draft.IsClarification {
		return nil, fmt.Errorf("%w: draft still needs clarification: %s", core.ErrValidation, draft.ClarificationMessage)
	}
	return s.warehouse.RegisterReceipt(ctx, draft.ToNewReceipt(), openInvoice)
}

// ── private helpers ─────────────────────────────────────────────────────────

func (s *appService) logTableErrors(op string, errs core.TableErrors) {
	for name, err := range errs {
		s.log.Warn("table "+op+" failed", zap.String("table", name), zap.Error(err))
	}
}

func anomalyMessages(anomalies []core.Anomaly) []string {
	out := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		out = append(out, a.String())
	}
	return out
}
