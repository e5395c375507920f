package app

import (
	"github.com/shopspring/decimal"

	"procurement-tracker/internal/core"
)

// AssignPORequest is the input for issuing a purchase order on an existing order row.
type AssignPORequest struct {
	Row int `json:"row"`
	core.AssignPO
}

// ReceiveRequest is the input for registering a warehouse receipt.
type ReceiveRequest struct {
	core.NewReceipt
	// OpenInvoice also starts financial processing for the NF.
	OpenInvoice bool `json:"open_invoice"`
}

// ApplyInterestRequest selects invoices by NF and the daily rate to snapshot.
type ApplyInterestRequest struct {
	InvoiceNumbers   []string        `json:"invoice_numbers"`
	DailyRatePercent decimal.Decimal `json:"daily_rate_percent"`
	AsOf             core.Date       `json:"as_of"`
}
