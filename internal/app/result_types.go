package app

import "procurement-tracker/internal/core"

// WorkspaceResult is returned by LoadWorkspace.
type WorkspaceResult struct {
	Orders         []core.JoinedOrder `json:"orders"`
	OrphanReceipts []core.Receipt     `json:"orphan_receipts"`
	OrphanInvoices []core.Invoice     `json:"orphan_invoices"`
	Anomalies      []string           `json:"anomalies"`
	// TableErrors lists tables that failed to load, as user-facing messages.
	TableErrors []string `json:"table_errors,omitempty"`
}

// RecomputeResult is returned by Recompute.
type RecomputeResult struct {
	Orders      int      `json:"orders"`
	Invoices    int      `json:"invoices"`
	Anomalies   []string `json:"anomalies"`
	TableErrors []string `json:"table_errors,omitempty"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order `json:"orders"`
}

// OrderDetailResult is returned by GetOrder.
type OrderDetailResult struct {
	OrderNumber string             `json:"order_number"`
	Lines       []core.JoinedOrder `json:"lines"`
	Anomalies   []string           `json:"anomalies,omitempty"`
	TableErrors []string           `json:"table_errors,omitempty"`
}

// ReceiptListResult is returned by ListReceipts.
type ReceiptListResult struct {
	Receipts []core.Receipt `json:"receipts"`
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}

// DeliveryDashboardResult is returned by DeliveryDashboard.
type DeliveryDashboardResult struct {
	Overview         core.DeliveryOverview `json:"overview"`
	TopLateSuppliers []core.SupplierDays   `json:"top_late_suppliers"`
	CostByDepartment []core.NamedAmount    `json:"cost_by_department"`
	MonthlyEvolution []core.MonthlyCount   `json:"monthly_evolution"`
	LeadTimes        []core.SupplierDays   `json:"supplier_lead_times"`
}
