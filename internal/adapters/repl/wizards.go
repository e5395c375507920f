package repl

import (
	"fmt"
	"strings"

	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
)

// handleReceive collects a receipt field by field. Blank answers keep defaults.
func (s *session) handleReceive() error {
	fmt.Fprintln(s.out, "New receipt. Type 'cancel' at any prompt to abort.")

	var rc core.NewReceipt
	fields := []struct {
		prompt string
		set    func(string)
	}{
		{"OC: ", func(v string) { rc.OrderNumber = v }},
		{"Supplier: ", func(v string) { rc.Supplier = v }},
		{"NF: ", func(v string) { rc.InvoiceNumber = v }},
		{"NF total (R$): ", func(v string) { rc.InvoiceTotal = core.ParseMoney(v) }},
		{"Volumes [1]: ", func(v string) { rc.Volume = core.ParseInt(v) }},
		{"Freight terms (CIF/FOB): ", func(v string) { rc.FreightTerms = v }},
		{"Freight value (R$) [0]: ", func(v string) { rc.FreightValue = core.ParseMoney(v) }},
		{"Date (DD/MM/YYYY) [today]: ", func(v string) { rc.ReceiptDate = core.ParseDate(v) }},
		{"Received by: ", func(v string) { rc.ReceiverName = v }},
		{"Notes: ", func(v string) { rc.Notes = v }},
	}
	for _, f := range fields {
		fmt.Fprint(s.out, f.prompt)
		v := s.readLine()
		if strings.EqualFold(v, "cancel") {
			fmt.Fprintln(s.out, "Receipt cancelled.")
			return nil
		}
		f.set(v)
	}

	openInvoice := s.confirm("Open the invoice in the fiscal table too? (y/n): ")
	reg, err := s.svc.RegisterReceipt(s.ctx, app.ReceiveRequest{NewReceipt: rc, OpenInvoice: openInvoice})
	if err != nil {
		return err
	}
	printReceiptRegistration(s.out, reg)
	return nil
}
