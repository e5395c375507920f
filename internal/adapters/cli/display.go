package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

func printOrders(out io.Writer, orders []core.Order) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 100))
	if len(orders) == 0 {
		fmt.Fprintln(out, "  No orders found.")
		fmt.Fprintln(out, strings.Repeat("=", 100))
		return
	}
	fmt.Fprintf(out, "  %-4s %-10s %-12s %-20s %-24s %14s %-9s %5s\n",
		"ROW", "DATE", "OC", "SUPPLIER", "MATERIAL", "VALUE", "STATUS", "LATE")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, o := range orders {
		fmt.Fprintf(out, "  %-4d %-10s %-12s %-20s %-24s %14s %-9s %5d\n",
			o.Row, o.RequestDate, o.OrderNumber, clip(o.Supplier, 20), clip(o.Material, 24),
			core.FormatBRL(o.ItemValue), o.DeliveryStatus, o.DaysLate)
	}
	fmt.Fprintln(out, strings.Repeat("=", 100))
}

func printOrderDetail(out io.Writer, result *app.OrderDetailResult) {
	fmt.Fprintf(out, "\nOC %s\n", result.OrderNumber)
	for _, l := range result.Lines {
		o := l.Order
		fmt.Fprintln(out, strings.Repeat("-", 62))
		fmt.Fprintf(out, "  Stage      : %s\n", l.Stage)
		fmt.Fprintf(out, "  Requester  : %s (%s)\n", o.Requester, o.Department)
		fmt.Fprintf(out, "  Material   : %s x%s\n", o.Material, o.Quantity)
		fmt.Fprintf(out, "  Supplier   : %s\n", o.Supplier)
		fmt.Fprintf(out, "  Value      : %s\n", core.FormatBRL(o.ItemValue))
		fmt.Fprintf(out, "  Approved   : %s (%d days)\n", o.ApprovalDate, o.DaysToApprove)
		fmt.Fprintf(out, "  Delivery   : %s %s (%d days late)\n", o.DeliveryStatus, o.DeliveryDate, o.DaysLate)
		if l.Receipt != nil {
			fmt.Fprintf(out, "  Receipt    : NF %s on %s by %s\n", l.Receipt.InvoiceNumber, l.Receipt.ReceiptDate, l.Receipt.ReceiverName)
		}
		if l.Invoice != nil {
			fmt.Fprintf(out, "  Invoice    : NF %s %s, due %s, %s\n", l.Invoice.InvoiceNumber,
				core.FormatBRL(l.Invoice.InvoiceTotal), l.Invoice.DueDate, l.Invoice.FinancialStatus)
		}
	}
	printWarnings(out, result.Anomalies)
	printWarnings(out, result.TableErrors)
}

func printInvoices(out io.Writer, invoices []core.Invoice) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-10s %-12s %-20s %14s %-10s %-13s %5s\n",
		"NF", "OC", "SUPPLIER", "TOTAL", "DUE", "STATUS", "LATE")
	fmt.Fprintln(out, strings.Repeat("-", 92))
	for _, inv := range invoices {
		fmt.Fprintf(out, "  %-10s %-12s %-20s %14s %-10s %-13s %5d\n",
			inv.InvoiceNumber, inv.OrderNumber, clip(inv.Supplier, 20), core.FormatBRL(inv.InvoiceTotal),
			inv.DueDate, inv.FinancialStatus, inv.DaysLate)
	}
}

func printReceiptRegistration(out io.Writer, reg *core.ReceiptRegistration) {
	fmt.Fprintf(out, "Receipt of NF %s registered for OC %s (%d order(s) delivered).\n",
		reg.Receipt.InvoiceNumber, reg.Receipt.OrderNumber, reg.Outcome.Matched)
	if reg.Invoice != nil {
		fmt.Fprintf(out, "Invoice opened, due %s.\n", reg.Invoice.DueDate)
	}
	printWarnings(out, reg.Warnings)
}

func printServiceJobs(out io.Writer, jobs []core.ServiceJob) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-4s %-20s %-28s %-10s %-10s %-12s %s\n",
		"ROW", "SUPPLIER", "DESCRIPTION", "START", "END", "STATUS", "RATING")
	fmt.Fprintln(out, strings.Repeat("-", 96))
	for _, j := range jobs {
		rating := "-"
		if j.Rating > 0 {
			rating = strconv.Itoa(j.Rating)
		}
		fmt.Fprintf(out, "  %-4d %-20s %-28s %-10s %-10s %-12s %s\n",
			j.Row, clip(j.Supplier, 20), clip(j.Description, 28), j.Start, j.PlannedEnd, j.Status, rating)
	}
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
