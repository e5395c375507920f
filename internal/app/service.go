package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"procurement-tracker/internal/ai"
	"procurement-tracker/internal/core"
)

// ErrAIUnavailable is returned by the note interpretation path when no API key is configured.
var ErrAIUnavailable = errors.New("AI note interpretation unavailable: openai.api_key not set")

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// LoadWorkspace loads orders, receipts and invoices independently and joins
	// them. A table that fails to load is reported in TableErrors; it never fails as a whole.
	LoadWorkspace(ctx context.Context) *WorkspaceResult

	// Recompute refreshes every derived field as of asOf (today when zero) and
	// saves orders and invoices. Each table is saved independently.
	Recompute(ctx context.Context, asOf core.Date) *RecomputeResult

	// ListOrders returns stored orders matching filter.
	ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error)

	// GetOrder returns every order with the given purchase-order number, each
	// with its linked receipt, invoice and stage.
	GetOrder(ctx context.Context, orderNumber string) (*OrderDetailResult, error)

	// CreateRequisition appends a new PENDENTE order without a purchase-order number.
	CreateRequisition(ctx context.Context, req core.NewRequisition) (*core.Order, error)

	// AssignPurchaseOrder issues the purchase order for the order at row.
	AssignPurchaseOrder(ctx context.Context, req AssignPORequest) (*core.Order, error)

	// ReplaceOrders overwrites the orders table after recomputing derived fields.
	ReplaceOrders(ctx context.Context, orders []core.Order) (*core.ReplaceResult, error)

	// ReconcileDeliveries re-applies stored receipts to orders still pending delivery.
	ReconcileDeliveries(ctx context.Context) (*core.ReconcileResult, error)

	// RegisterReceipt records a delivery and marks the matching orders delivered.
	RegisterReceipt(ctx context.Context, req ReceiveRequest) (*core.ReceiptRegistration, error)

	// ListReceipts returns stored receipts matching filter.
	ListReceipts(ctx context.Context, filter core.ReceiptFilter) (*ReceiptListResult, error)

	// ListInvoices returns stored invoices matching q.
	ListInvoices(ctx context.Context, q core.InvoiceQuery) (*InvoiceListResult, error)

	// RegisterInvoice appends an invoice entered by fiscal staff.
	RegisterInvoice(ctx context.Context, in core.NewInvoice) (*core.InvoiceRegistration, error)

	// UpdateInvoice edits financial status, problem condition and notes of an invoice.
	UpdateInvoice(ctx context.Context, nf string, u core.InvoiceUpdate) (*core.Invoice, error)

	// EstimateInterest computes live interest for one invoice without storing it.
	EstimateInterest(ctx context.Context, nf string, dailyRatePercent decimal.Decimal, asOf core.Date) (*core.InterestEstimate, error)

	// ApplyInterest stores an interest snapshot on the selected invoices.
	ApplyInterest(ctx context.Context, req ApplyInterestRequest) (*core.InterestApplication, error)

	// DeliveryDashboard summarizes orders requested in period.
	DeliveryDashboard(ctx context.Context, period core.Period) (*DeliveryDashboardResult, error)

	// NegotiationDashboard summarizes local negotiation savings in period.
	NegotiationDashboard(ctx context.Context, period core.Period) (*core.NegotiationReport, error)

	// FiscalDashboard summarizes invoices by financial status.
	FiscalDashboard(ctx context.Context) (*core.FiscalReport, error)

	// ReceiptDashboard summarizes receipts in one month against the previous month.
	ReceiptDashboard(ctx context.Context, period core.Period) (*core.ReceiptReport, error)

	// ReimbursementDashboard totals reimbursement claims per status and expense type.
	ReimbursementDashboard(ctx context.Context) (*core.ReimbursementReport, error)

	// ServiceDashboard counts service jobs by status and averages ratings per supplier.
	ServiceDashboard(ctx context.Context) (*core.ServiceReport, error)

	// ListRequesters returns the requester registry.
	ListRequesters(ctx context.Context) ([]core.Requester, error)

	// RegisterRequester adds a requester to the registry.
	RegisterRequester(ctx context.Context, rq core.Requester) (*core.Requester, error)

	// SubmitReimbursement records a new PENDENTE expense claim.
	SubmitReimbursement(ctx context.Context, in core.NewReimbursement) (*core.Reimbursement, error)

	// ListReimbursements returns claims, optionally restricted to one status.
	ListReimbursements(ctx context.Context, status string) ([]core.Reimbursement, error)

	// UpdateReimbursementStatus sets the status of the claim at row.
	UpdateReimbursementStatus(ctx context.Context, row int, status string) (*core.Reimbursement, error)

	// ListServiceJobs returns contracted service jobs, optionally restricted to one status.
	ListServiceJobs(ctx context.Context, status string) ([]core.ServiceJob, error)

	// RegisterServiceJob records a new EM ANDAMENTO service job.
	RegisterServiceJob(ctx context.Context, in core.NewServiceJob) (*core.ServiceJob, error)

	// CompleteServiceJob rates an active job and marks it CONCLUIDO.
	CompleteServiceJob(ctx context.Context, row int, r core.ServiceRating) (*core.ServiceJob, error)

	// InterpretReceiptNote sends a free-text delivery note to the AI parser and
	// returns a draft for the user to confirm. Returns ErrAIUnavailable without an API key.
	InterpretReceiptNote(ctx context.Context, note string) (*ai.ReceiptDraft, error)

	// CommitReceiptDraft registers a confirmed draft as a receipt.
	// Must only be called after explicit user approval.
	CommitReceiptDraft(ctx context.Context, draft ai.ReceiptDraft, openInvoice bool) (*core.ReceiptRegistration, error)
}
