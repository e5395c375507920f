package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"procurement-tracker/internal/ai"
	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

func printOrders(out io.Writer, orders []core.Order) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 90))
	fmt.Fprintln(out, "  ORDERS")
	fmt.Fprintln(out, strings.Repeat("=", 90))
	if len(orders) == 0 {
		fmt.Fprintln(out, "  No orders found.")
		fmt.Fprintln(out, strings.Repeat("=", 90))
		return
	}
	fmt.Fprintf(out, "  %-10s %-12s %-22s %-20s %14s %-9s\n", "DATE", "OC", "SUPPLIER", "REQUESTER", "VALUE", "STATUS")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, o := range orders {
		oc := o.OrderNumber
		if oc == "" {
			oc = "(sem OC)"
		}
		fmt.Fprintf(out, "  %-10s %-12s %-22s %-20s %14s %-9s\n",
			o.RequestDate, oc, o.Supplier, o.Requester, core.FormatBRL(o.ItemValue), o.DeliveryStatus)
	}
	fmt.Fprintln(out, strings.Repeat("=", 90))
}

func printOrderDetail(out io.Writer, result *app.OrderDetailResult) {
	fmt.Fprintf(out, "\nOC %s  (%d line(s))\n", result.OrderNumber, len(result.Lines))
	for _, l := range result.Lines {
		fmt.Fprintf(out, "  %-24s %-20s %14s  %s\n",
			l.Order.Material, l.Order.Supplier, core.FormatBRL(l.Order.ItemValue), l.Stage)
		if l.Receipt != nil {
			fmt.Fprintf(out, "    received %s, NF %s\n", l.Receipt.ReceiptDate, l.Receipt.InvoiceNumber)
		}
		if l.Invoice != nil {
			fmt.Fprintf(out, "    invoice %s, due %s, %d days late\n",
				l.Invoice.FinancialStatus, l.Invoice.DueDate, l.Invoice.DaysLate)
		}
	}
	printWarnings(out, result.Anomalies)
}

func printInvoices(out io.Writer, invoices []core.Invoice) {
	fmt.Fprintln(out)
	if len(invoices) == 0 {
		fmt.Fprintln(out, "  No invoices found.")
		return
	}
	fmt.Fprintf(out, "  %-10s %-12s %-22s %14s %-10s %s\n", "NF", "OC", "SUPPLIER", "TOTAL", "DUE", "STATUS")
	fmt.Fprintln(out, strings.Repeat("-", 86))
	for _, inv := range invoices {
		fmt.Fprintf(out, "  %-10s %-12s %-22s %14s %-10s %s\n",
			inv.InvoiceNumber, inv.OrderNumber, inv.Supplier, core.FormatBRL(inv.InvoiceTotal), inv.DueDate, inv.FinancialStatus)
	}
}

func printDraft(out io.Writer, d *ai.ReceiptDraft) {
	rc := d.ToNewReceipt()
	fmt.Fprintf(out, "\nOC:         %s\n", rc.OrderNumber)
	fmt.Fprintf(out, "SUPPLIER:   %s\n", rc.Supplier)
	fmt.Fprintf(out, "NF:         %s\n", rc.InvoiceNumber)
	fmt.Fprintf(out, "TOTAL:      %s\n", core.FormatBRL(rc.InvoiceTotal))
	fmt.Fprintf(out, "VOLUME:     %d\n", rc.Volume)
	fmt.Fprintf(out, "FREIGHT:    %s %s\n", rc.FreightTerms, core.FormatBRL(rc.FreightValue))
	date := "today"
	if !rc.ReceiptDate.IsZero() {
		date = rc.ReceiptDate.String()
	}
	fmt.Fprintf(out, "DATE:       %s\n", date)
	fmt.Fprintf(out, "RECEIVER:   %s\n", rc.ReceiverName)
	if rc.Notes != "" {
		fmt.Fprintf(out, "NOTES:      %s\n", rc.Notes)
	}
	fmt.Fprintf(out, "REASONING:  %s\n", d.Reasoning)
	fmt.Fprintf(out, "CONFIDENCE: %.2f\n", d.Confidence)
}

func printReceiptRegistration(out io.Writer, reg *core.ReceiptRegistration) {
	fmt.Fprintf(out, "Receipt REGISTERED: NF %s, OC %s, %d order(s) delivered.\n",
		reg.Receipt.InvoiceNumber, reg.Receipt.OrderNumber, reg.Outcome.Matched)
	if reg.Invoice != nil {
		fmt.Fprintf(out, "Invoice opened, due %s.\n", reg.Invoice.DueDate)
	}
	printWarnings(out, reg.Warnings)
}

func printDashboard(out io.Writer, report any) {
	switch r := report.(type) {
	case *app.DeliveryDashboardResult:
		o := r.Overview
		fmt.Fprintf(out, "\nOrders: %d  pending: %d  delivered: %d\n", o.TotalOrders, o.PendingOrders, o.DeliveredOrders)
		fmt.Fprintf(out, "Total value: %s  average days late: %s\n", core.FormatBRL(o.TotalValue), o.AverageDaysLate.StringFixed(1))
		fmt.Fprintln(out, "Most late suppliers:")
		for _, s := range r.TopLateSuppliers {
			fmt.Fprintf(out, "  %-30s %6s days\n", s.Supplier, s.Days.StringFixed(0))
		}
		fmt.Fprintln(out, "Cost by department:")
		printAmounts(out, r.CostByDepartment)
	case *core.NegotiationReport:
		fmt.Fprintf(out, "\nLocal orders: %d  saved: %s  average savings: %s%%\n",
			r.Orders, core.FormatBRL(r.TotalSaved), r.AverageSavings.StringFixed(2))
		fmt.Fprintln(out, "Top requesters:")
		printAmounts(out, r.TopRequesters)
	case *core.FiscalReport:
		fmt.Fprintf(out, "\nInvoices: %d  in progress: %d  problem: %d  captured: %d  finalized: %d\n",
			r.Total, r.InProgress, r.Problem, r.Captured, r.Finalized)
		fmt.Fprintln(out, "Suppliers with problems:")
		printAmounts(out, r.TopProblemVendors)
	case *core.ReceiptReport:
		fmt.Fprintf(out, "\n%02d/%d: %d receipts, %s\n", r.Period.Month, r.Period.Year, r.Receipts, core.FormatBRL(r.TotalValue))
		fmt.Fprintln(out, "By value:")
		printAmounts(out, r.TopByValue)
	case *core.ReimbursementReport:
		fmt.Fprintf(out, "\nTotal claimed: %s\n", core.FormatBRL(r.Total))
		printAmounts(out, r.ByStatus)
	default:
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(out, string(b))
	}
}

func printAmounts(out io.Writer, items []core.NamedAmount) {
	if len(items) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, a := range items {
		fmt.Fprintf(out, "  %-40s %4d %16s\n", a.Name, a.Count, core.FormatBRL(a.Amount))
	}
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "PROCUREMENT PANEL · COMMANDS")
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  PURCHASING")
	fmt.Fprintln(out, "  /orders [month year]           List orders")
	fmt.Fprintln(out, "  /order <OC>                    Order with receipt, invoice and stage")
	fmt.Fprintln(out, "  /reconcile                     Re-apply receipts to pending orders")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  WAREHOUSE / FISCAL")
	fmt.Fprintln(out, "  /receive                       Register a receipt (interactive)")
	fmt.Fprintln(out, "  /invoices [status]             List invoices")
	fmt.Fprintln(out, "  /recompute                     Refresh days late and save")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  REPORTS")
	fmt.Fprintf(out, "  /dashboard <name> [month year] %s\n", strings.Join(app.DashboardNames, ", "))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  SESSION")
	fmt.Fprintln(out, "  /help                          Show this help")
	fmt.Fprintln(out, "  /quit                          Exit")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  NOTE MODE  (no / prefix)")
	fmt.Fprintln(out, "  Paste a delivery note; it is read into a receipt for confirmation.")
	fmt.Fprintln(out, "  Example: \"chegou NF 4521 da ACME, OC 7781, 3 volumes, R$ 1.250,00 FOB\"")
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
