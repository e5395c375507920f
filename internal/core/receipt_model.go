package core

import "github.com/shopspring/decimal"

// Receipt is one physical delivery registered by the warehouse.
// OrderNumber links it to an Order; a receipt without a matching order is kept as an orphan.
type Receipt struct {
	ReceiptDate         Date            `json:"receipt_date"`
	ReceiverName        string          `json:"receiver_name"`
	Supplier            string          `json:"supplier"`
	InvoiceNumber       string          `json:"invoice_number"`
	OrderNumber         string          `json:"order_number"`
	Volume              int             `json:"volume"`
	InvoiceTotal        decimal.Decimal `json:"invoice_total_value"`
	FreightTerms        string          `json:"freight_terms"`
	FreightValue        decimal.Decimal `json:"freight_value"`
	Notes               string          `json:"notes"`
	InvoiceDocumentLink string          `json:"invoice_document_link"`
	DueDate             Date            `json:"due_date"`

	Extra map[string]string `json:"extra,omitempty"`
}

func (r Receipt) Key() OrderKey {
	return NewOrderKey(r.OrderNumber)
}

// ReceiptFilter selects receipts for listing. Zero fields match everything.
type ReceiptFilter struct {
	Period   Period `json:"period"`
	Supplier string `json:"supplier,omitempty"`
	// OrderNumber matches exactly after normalization.
	OrderNumber string `json:"order_number,omitempty"`
}

func (f ReceiptFilter) Matches(r Receipt) bool {
	if !f.Period.Contains(r.ReceiptDate) {
		return false
	}
	if f.Supplier != "" && normalizeText(r.Supplier) != normalizeText(f.Supplier) {
		return false
	}
	if f.OrderNumber != "" && r.Key() != NewOrderKey(f.OrderNumber) {
		return false
	}
	return true
}
