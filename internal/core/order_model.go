package core

import "github.com/shopspring/decimal"

// Order types.
const (
	OrderTypeLocal     = "LOCAL"
	OrderTypeEmergency = "EMERGENCIAL"
	OrderTypeScheduled = "PROGRAMADO"
)

// Freight terms. CIF means the seller pays freight.
const (
	FreightCIF = "CIF"
	FreightFOB = "FOB"
)

// Delivery statuses.
const (
	DeliveryPending   = "PENDENTE"
	DeliveryDelivered = "ENTREGUE"
)

var OrderTypes = []string{OrderTypeLocal, OrderTypeEmergency, OrderTypeScheduled}

// Order is one requisitioned line item. It is created PENDENTE without an order
// number, gains OrderNumber/Supplier/values when a buyer issues the purchase order,
// and becomes ENTREGUE when the warehouse registers a matching receipt.
type Order struct {
	RequestDate          Date            `json:"request_date"`
	Requester            string          `json:"requester"`
	Department           string          `json:"department"`
	Branch               string          `json:"branch"`
	Material             string          `json:"material"`
	Quantity             decimal.Decimal `json:"quantity"`
	OrderType            string          `json:"order_type"`
	RequisitionNumber    string          `json:"requisition_number"`
	Supplier             string          `json:"supplier"`
	OrderNumber          string          `json:"order_number"`
	ItemValue            decimal.Decimal `json:"item_value"`
	RenegotiatedValue    decimal.Decimal `json:"renegotiated_value"`
	ApprovalDate         Date            `json:"approval_date"`
	ExpectedDeliveryDate Date            `json:"expected_delivery_date"`
	FreightTerms         string          `json:"freight_terms"`
	DeliveryStatus       string          `json:"delivery_status"`
	DeliveryDate         Date            `json:"delivery_date"`
	DaysLate             int             `json:"days_late"`
	DaysToApprove        int             `json:"days_to_approve"`
	InvoiceNumber        string          `json:"invoice_number"`
	InvoiceLink          string          `json:"invoice_link"`

	// Row is the 0-based position in the stored table. Not persisted.
	Row int `json:"row"`
	// Extra carries stored columns this model does not know about, so a
	// load/save cycle never drops them.
	Extra map[string]string `json:"extra,omitempty"`
}

// Key returns the normalized purchase-order number.
func (o Order) Key() OrderKey {
	return NewOrderKey(o.OrderNumber)
}

// IsDelivered reports whether the warehouse has marked the order delivered.
func (o Order) IsDelivered() bool {
	return normalizeText(o.DeliveryStatus) == DeliveryDelivered
}

// Savings returns item value minus renegotiated value, or zero when nothing was renegotiated.
func (o Order) Savings() decimal.Decimal {
	if !o.RenegotiatedValue.IsPositive() {
		return decimal.Zero
	}
	return o.ItemValue.Sub(o.RenegotiatedValue)
}

// OrderFilter selects orders for listing. Zero fields match everything.
type OrderFilter struct {
	Period              Period `json:"period"`
	Requester           string `json:"requester,omitempty"`
	Department          string `json:"department,omitempty"`
	Supplier            string `json:"supplier,omitempty"`
	DeliveryStatus      string `json:"delivery_status,omitempty"`
	RequisitionContains string `json:"requisition_contains,omitempty"`
	OnlyWithoutPO       bool   `json:"only_without_po,omitempty"`
}

// Matches applies the filter. Period matches on request date.
func (f OrderFilter) Matches(o Order) bool {
	if !f.Period.Contains(o.RequestDate) {
		return false
	}
	if f.Requester != "" && normalizeText(o.Requester) != normalizeText(f.Requester) {
		return false
	}
	if f.Department != "" && normalizeText(o.Department) != normalizeText(f.Department) {
		return false
	}
	if f.Supplier != "" && normalizeText(o.Supplier) != normalizeText(f.Supplier) {
		return false
	}
	if f.DeliveryStatus != "" && normalizeText(o.DeliveryStatus) != normalizeText(f.DeliveryStatus) {
		return false
	}
	if f.RequisitionContains != "" && !containsFold(o.RequisitionNumber, f.RequisitionContains) {
		return false
	}
	if f.OnlyWithoutPO && !o.Key().IsZero() {
		return false
	}
	return true
}

// Period is a month/year window. Zero Year or Month means "any".
type Period struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// Contains reports whether d falls in the period. An absent date only matches
// the open period.
func (p Period) Contains(d Date) bool {
	if p.Year == 0 && p.Month == 0 {
		return true
	}
	if d.IsZero() {
		return false
	}
	if p.Year != 0 && d.Year() != p.Year {
		return false
	}
	if p.Month != 0 && int(d.Month()) != p.Month {
		return false
	}
	return true
}

// Previous returns the preceding month. Only meaningful when both fields are set.
func (p Period) Previous() Period {
	if p.Month <= 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}
