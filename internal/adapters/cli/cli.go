package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage")

const usage = `Available commands:
  orders [month year]                 list orders
  order <OC>                          order with linked receipt, invoice and stage
  requisition                         create a requisition (JSON on stdin)
  assign-po <row>                     issue a purchase order (JSON on stdin)
  receive [invoice]                   register a receipt (JSON on stdin); "invoice" also opens the NF
  invoices [status]                   list invoices
  register-invoice                    register an invoice (JSON on stdin)
  invoice-status <NF>                 update an invoice (JSON on stdin)
  estimate-interest <NF> <rate> [date]
  apply-interest <rate> <NF>...
  recompute [date]                    refresh derived fields and save
  reconcile                           re-apply receipts to pending orders
  dashboard <delivery|negotiation|fiscal|receipts|reimbursements|services> [month year]
  requesters
  add-requester                       (JSON on stdin)
  reimburse                           submit a reimbursement (JSON on stdin)
  reimbursements [status]
  reimbursement-status <row> <status>
  services [status]                   list contracted services
  add-service                         register a service (JSON on stdin)
  complete-service <row> <1-5> [comment]`

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if err := Execute(ctx, svc, args, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, ErrUsage) {
			log.Fatalf("%v\n%s", err, usage)
		}
		log.Fatalf("Error: %v", err)
	}
}

// Execute runs one command reading JSON input from in and writing to out.
func Execute(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", ErrUsage)
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "orders":
		period, err := parsePeriod(rest)
		if err != nil {
			return err
		}
		result, err := svc.ListOrders(ctx, core.OrderFilter{Period: period})
		if err != nil {
			return err
		}
		printOrders(out, result.Orders)

	case "order":
		if len(rest) < 1 {
			return fmt.Errorf("%w: order <OC>", ErrUsage)
		}
		result, err := svc.GetOrder(ctx, rest[0])
		if err != nil {
			return err
		}
		printOrderDetail(out, result)

	case "requisition":
		var req core.NewRequisition
		if err := decode(in, &req); err != nil {
			return err
		}
		o, err := svc.CreateRequisition(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Requisition created at row %d (%s).\n", o.Row, o.Material)

	case "assign-po":
		if len(rest) < 1 {
			return fmt.Errorf("%w: assign-po <row>", ErrUsage)
		}
		row, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: row must be a number", ErrUsage)
		}
		var a core.AssignPO
		if err := decode(in, &a); err != nil {
			return err
		}
		o, err := svc.AssignPurchaseOrder(ctx, app.AssignPORequest{Row: row, AssignPO: a})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "OC %s issued to %s (%d days to approve).\n", o.OrderNumber, o.Supplier, o.DaysToApprove)

	case "receive":
		var rc core.NewReceipt
		if err := decode(in, &rc); err != nil {
			return err
		}
		openInvoice := len(rest) > 0 && strings.EqualFold(rest[0], "invoice")
		reg, err := svc.RegisterReceipt(ctx, app.ReceiveRequest{NewReceipt: rc, OpenInvoice: openInvoice})
		if err != nil {
			return err
		}
		printReceiptRegistration(out, reg)

	case "invoices":
		q := core.InvoiceQuery{}
		if len(rest) > 0 {
			q.Statuses = []string{strings.Join(rest, " ")}
		}
		result, err := svc.ListInvoices(ctx, q)
		if err != nil {
			return err
		}
		printInvoices(out, result.Invoices)

	case "register-invoice":
		var inv core.NewInvoice
		if err := decode(in, &inv); err != nil {
			return err
		}
		reg, err := svc.RegisterInvoice(ctx, inv)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "NF %s registered (due %s).\n", reg.Invoice.InvoiceNumber, reg.Invoice.DueDate)
		printWarnings(out, reg.Warnings)

	case "invoice-status":
		if len(rest) < 1 {
			return fmt.Errorf("%w: invoice-status <NF>", ErrUsage)
		}
		var u core.InvoiceUpdate
		if err := decode(in, &u); err != nil {
			return err
		}
		inv, err := svc.UpdateInvoice(ctx, rest[0], u)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "NF %s: %s / %s\n", inv.InvoiceNumber, inv.FinancialStatus, inv.ProblemCondition)

	case "estimate-interest":
		if len(rest) < 2 {
			return fmt.Errorf("%w: estimate-interest <NF> <rate> [date]", ErrUsage)
		}
		rate, err := parseRate(rest[1])
		if err != nil {
			return err
		}
		est, err := svc.EstimateInterest(ctx, rest[0], rate, optionalDate(rest, 2))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "NF %s: %d days late at %s%%/day = %s (as of %s)\n",
			est.InvoiceNumber, est.DaysLate, est.DailyRatePercent, core.FormatBRL(est.Interest), est.AsOf)

	case "apply-interest":
		if len(rest) < 2 {
			return fmt.Errorf("%w: apply-interest <rate> <NF>...", ErrUsage)
		}
		rate, err := parseRate(rest[0])
		if err != nil {
			return err
		}
		res, err := svc.ApplyInterest(ctx, app.ApplyInterestRequest{InvoiceNumbers: rest[1:], DailyRatePercent: rate})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Interest applied to %d invoice(s).\n", res.Applied)
		if len(res.Missing) > 0 {
			fmt.Fprintf(out, "Not found: %s\n", strings.Join(res.Missing, ", "))
		}

	case "recompute":
		res := svc.Recompute(ctx, optionalDate(rest, 0))
		fmt.Fprintf(out, "Recomputed %d orders and %d invoices.\n", res.Orders, res.Invoices)
		printWarnings(out, res.Anomalies)
		printWarnings(out, res.TableErrors)

	case "reconcile":
		res, err := svc.ReconcileDeliveries(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d order(s) marked delivered.\n", res.Applied)
		printWarnings(out, res.Warnings)

	case "dashboard":
		if len(rest) < 1 {
			return fmt.Errorf("%w: dashboard <name> [month year]", ErrUsage)
		}
		period, err := parsePeriod(rest[1:])
		if err != nil {
			return err
		}
		report, err := app.Dashboard(ctx, svc, rest[0], period)
		if err != nil {
			return err
		}
		return encode(out, report)

	case "requesters":
		list, err := svc.ListRequesters(ctx)
		if err != nil {
			return err
		}
		for _, r := range list {
			fmt.Fprintf(out, "  %-25s %-20s %-30s %s\n", r.Name, r.Department, r.Email, r.Branch)
		}

	case "add-requester":
		var r core.Requester
		if err := decode(in, &r); err != nil {
			return err
		}
		added, err := svc.RegisterRequester(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Requester %s registered.\n", added.Name)

	case "reimburse":
		var r core.NewReimbursement
		if err := decode(in, &r); err != nil {
			return err
		}
		added, err := svc.SubmitReimbursement(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Reimbursement #%d submitted: %s (%s).\n", added.Row, core.FormatBRL(added.Value), added.Status)

	case "reimbursements":
		list, err := svc.ListReimbursements(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		for _, r := range list {
			fmt.Fprintf(out, "  #%-4d %-10s %-25s %15s  %s\n", r.Row, r.Date, r.Name, core.FormatBRL(r.Value), r.Status)
		}

	case "reimbursement-status":
		if len(rest) < 2 {
			return fmt.Errorf("%w: reimbursement-status <row> <status>", ErrUsage)
		}
		row, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: row must be a number", ErrUsage)
		}
		r, err := svc.UpdateReimbursementStatus(ctx, row, strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Reimbursement #%d is now %s.\n", r.Row, r.Status)

	case "services":
		list, err := svc.ListServiceJobs(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		printServiceJobs(out, list)

	case "add-service":
		var j core.NewServiceJob
		if err := decode(in, &j); err != nil {
			return err
		}
		added, err := svc.RegisterServiceJob(ctx, j)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Service #%d registered: %s, %s to %s.\n", added.Row, added.Supplier, added.Start, added.PlannedEnd)

	case "complete-service":
		if len(rest) < 2 {
			return fmt.Errorf("%w: complete-service <row> <1-5> [comment]", ErrUsage)
		}
		row, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: row must be a number", ErrUsage)
		}
		rating, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("%w: rating must be a number", ErrUsage)
		}
		done, err := svc.CompleteServiceJob(ctx, row, core.ServiceRating{Rating: rating, Comment: strings.Join(rest[2:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Service #%d (%s) completed with rating %d.\n", done.Row, done.Supplier, done.Rating)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
	return nil
}

// ── parsing helpers ─────────────────────────────────────────────────────────

func decode(in io.Reader, v any) error {
	if err := json.NewDecoder(in).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePeriod(args []string) (core.Period, error) {
	var p core.Period
	if len(args) == 0 {
		return p, nil
	}
	month, err := strconv.Atoi(args[0])
	if err != nil || month < 1 || month > 12 {
		return p, fmt.Errorf("%w: month must be 1-12", ErrUsage)
	}
	p.Month = month
	if len(args) > 1 {
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return p, fmt.Errorf("%w: invalid year %q", ErrUsage, args[1])
		}
		p.Year = year
	} else {
		p.Year = core.Today().Year()
	}
	return p, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid rate %q", ErrUsage, s)
	}
	return rate, nil
}

func optionalDate(args []string, i int) core.Date {
	if len(args) > i {
		return core.ParseDate(args[i])
	}
	return core.Date{}
}
