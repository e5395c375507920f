package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

var errExit = errors.New("exit")

// maxClarificationRounds bounds the follow-up questions for one note.
const maxClarificationRounds = 3

type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically,
// and treats any other input as a delivery note for the AI parser.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	s := &session{ctx: ctx, svc: svc, reader: reader, out: out}

	ws := svc.LoadWorkspace(ctx)
	fmt.Fprintln(out, "Procurement Panel")
	fmt.Fprintf(out, "%d orders loaded, %d unlinked receipts, %d unlinked invoices.\n",
		len(ws.Orders), len(ws.OrphanReceipts), len(ws.OrphanInvoices))
	for _, msg := range ws.TableErrors {
		fmt.Fprintf(out, "WARNING: %s\n", msg)
	}
	fmt.Fprintln(out, "Paste a delivery note to register a receipt, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := s.dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		if err := s.handleNote(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func (s *session) dispatchSlash(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "orders":
		period, err := parsePeriod(args)
		if err != nil {
			return err
		}
		result, err := s.svc.ListOrders(s.ctx, core.OrderFilter{Period: period})
		if err != nil {
			return err
		}
		printOrders(s.out, result.Orders)

	case "order":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /order <OC>")
			return nil
		}
		result, err := s.svc.GetOrder(s.ctx, args[0])
		if err != nil {
			return err
		}
		printOrderDetail(s.out, result)

	case "invoices":
		q := core.InvoiceQuery{}
		if len(args) > 0 {
			q.Statuses = []string{strings.Join(args, " ")}
		}
		result, err := s.svc.ListInvoices(s.ctx, q)
		if err != nil {
			return err
		}
		printInvoices(s.out, result.Invoices)

	case "receive":
		return s.handleReceive()

	case "recompute":
		res := s.svc.Recompute(s.ctx, core.Date{})
		fmt.Fprintf(s.out, "Recomputed %d orders and %d invoices.\n", res.Orders, res.Invoices)
		printWarnings(s.out, res.Anomalies)
		printWarnings(s.out, res.TableErrors)

	case "reconcile":
		res, err := s.svc.ReconcileDeliveries(s.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d order(s) marked delivered.\n", res.Applied)
		printWarnings(s.out, res.Warnings)

	case "dashboard", "dash":
		if len(args) < 1 {
			fmt.Fprintf(s.out, "Usage: /dashboard <%s> [month year]\n", strings.Join(app.DashboardNames, "|"))
			return nil
		}
		period, err := parsePeriod(args[1:])
		if err != nil {
			return err
		}
		report, err := app.Dashboard(s.ctx, s.svc, args[0], period)
		if err != nil {
			return err
		}
		printDashboard(s.out, report)

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// handleNote interprets a free-text delivery note, asking follow-up questions
// until the draft names both the purchase order and the NF.
func (s *session) handleNote(note string) error {
	fmt.Fprintln(s.out, "[AI] Reading note...")
	accumulated := note

	for round := 1; ; round++ {
		if round > maxClarificationRounds {
			fmt.Fprintln(s.out, "Could not read a complete receipt. Use /receive to enter it field by field.")
			return nil
		}

		draft, err := s.svc.InterpretReceiptNote(s.ctx, accumulated)
		if errors.Is(err, app.ErrAIUnavailable) {
			fmt.Fprintln(s.out, "Note interpretation is not configured. Use /receive, or /help for commands.")
			return nil
		}
		if err != nil {
			return err
		}

		if draft.IsClarification {
			fmt.Fprintf(s.out, "\n[AI]: %s\n> ", draft.ClarificationMessage)
			followUp := s.readLine()

			// Slash command during clarification cancels the note and runs the command.
			if strings.HasPrefix(followUp, "/") {
				fmt.Fprintln(s.out, "(note cancelled)")
				return s.dispatchSlash(followUp)
			}
			if followUp == "" || strings.EqualFold(followUp, "cancel") {
				fmt.Fprintln(s.out, "Cancelled.")
				return nil
			}
			accumulated = fmt.Sprintf("Original note: %s\nQuestion asked: %s\nUser answer: %s",
				accumulated, draft.ClarificationMessage, followUp)
			fmt.Fprintln(s.out, "[AI] Thinking...")
			continue
		}

		printDraft(s.out, draft)
		if draft.Confidence < 0.6 {
			fmt.Fprintln(s.out, "\nWARNING: Low confidence reading. Check every field.")
		}

		if !s.confirm("\nRegister this receipt? (y/n): ") {
			fmt.Fprintln(s.out, "Receipt discarded.")
			return nil
		}
		openInvoice := s.confirm("Open the invoice in the fiscal table too? (y/n): ")
		reg, err := s.svc.CommitReceiptDraft(s.ctx, *draft, openInvoice)
		if err != nil {
			fmt.Fprintf(s.out, "Receipt FAILED: %v\n", err)
			return nil
		}
		printReceiptRegistration(s.out, reg)
		return nil
	}
}

func (s *session) readLine() string {
	line, _ := s.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (s *session) confirm(prompt string) bool {
	fmt.Fprint(s.out, prompt)
	choice := strings.ToLower(s.readLine())
	return choice == "y" || choice == "yes" || choice == "s" || choice == "sim"
}

func parsePeriod(args []string) (core.Period, error) {
	var p core.Period
	if len(args) == 0 {
		return p, nil
	}
	month, err := strconv.Atoi(args[0])
	if err != nil || month < 1 || month > 12 {
		return p, fmt.Errorf("month must be 1-12, got %q", args[0])
	}
	p.Month = month
	p.Year = core.Today().Year()
	if len(args) > 1 {
		if p.Year, err = strconv.Atoi(args[1]); err != nil {
			return p, fmt.Errorf("invalid year %q", args[1])
		}
	}
	return p, nil
}
