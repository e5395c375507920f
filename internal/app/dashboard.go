package app

import (
	"context"
	"fmt"
	"strings"

	"procurement-tracker/internal/core"
)

// DashboardNames lists the reports accepted by Dashboard.
var DashboardNames = []string{"delivery", "negotiation", "fiscal", "receipts", "reimbursements", "services"}

// Dashboard runs the named report. Portuguese sheet names are accepted as aliases.
func Dashboard(ctx context.Context, svc ApplicationService, name string, period core.Period) (any, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "delivery", "entregas":
		return svc.DeliveryDashboard(ctx, period)
	case "negotiation", "negociacao":
		return svc.NegotiationDashboard(ctx, period)
	case "fiscal":
		return svc.FiscalDashboard(ctx)
	case "receipts", "almoxarifado":
		return svc.ReceiptDashboard(ctx, period)
	case "reimbursements", "reembolsos":
		return svc.ReimbursementDashboard(ctx)
	case "services", "servicos":
		return svc.ServiceDashboard(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown dashboard %q (one of %s)", core.ErrNotFound, name, strings.Join(DashboardNames, ", "))
	}
}
