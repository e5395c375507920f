package core

import "fmt"

// AnomalyKind classifies data-quality problems found while joining tables.
type AnomalyKind string

const (
	DuplicateReceipt AnomalyKind = "DUPLICATE_RECEIPT"
	DuplicateInvoice AnomalyKind = "DUPLICATE_INVOICE"
	OrphanReceipt    AnomalyKind = "ORPHAN_RECEIPT"
	OrphanInvoice    AnomalyKind = "ORPHAN_INVOICE"
)

// Anomaly is a non-fatal linkage problem. Key is the order number (or NF for
// invoices matched by NF).
type Anomaly struct {
	Kind  AnomalyKind `json:"kind"`
	Key   string      `json:"key"`
	Count int         `json:"count,omitempty"`
}

func (a Anomaly) String() string {
	switch a.Kind {
	case DuplicateReceipt:
		return fmt.Sprintf("OC %s matches %d receipts; using the first", a.Key, a.Count)
	case DuplicateInvoice:
		return fmt.Sprintf("%s matches %d invoices; using the first", a.Key, a.Count)
	case OrphanReceipt:
		return fmt.Sprintf("receipt for OC %s has no matching order", a.Key)
	case OrphanInvoice:
		return fmt.Sprintf("invoice %s has no matching order", a.Key)
	default:
		return string(a.Kind) + " " + a.Key
	}
}

// Linkage is the receipt and invoice resolved for one order. Either side may be nil.
type Linkage struct {
	Receipt   *Receipt  `json:"receipt,omitempty"`
	Invoice   *Invoice  `json:"invoice,omitempty"`
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// Resolve finds the receipt and invoice whose order number equals key after
// normalization. The first match in table order wins; further matches are
// reported as anomalies. An empty key never matches. Resolve does not modify
// its inputs; the returned pointers refer to copies.
func Resolve(key OrderKey, receipts []Receipt, invoices []Invoice) Linkage {
	var l Linkage
	if key.IsZero() {
		return l
	}

	count := 0
	for i := range receipts {
		if receipts[i].Key() != key {
			continue
		}
		count++
		if count == 1 {
			rc := receipts[i]
			l.Receipt = &rc
		}
	}
	if count > 1 {
		l.Anomalies = append(l.Anomalies, Anomaly{Kind: DuplicateReceipt, Key: key.String(), Count: count})
	}

	count = 0
	for i := range invoices {
		if invoices[i].Key() != key {
			continue
		}
		count++
		if count == 1 {
			inv := invoices[i]
			l.Invoice = &inv
		}
	}
	if count > 1 {
		l.Anomalies = append(l.Anomalies, Anomaly{Kind: DuplicateInvoice, Key: "OC " + key.String(), Count: count})
	}
	return l
}

// ResolveOrder resolves by the order's purchase-order number and, when no
// invoice carries that number, falls back to the NF propagated onto the order
// by its receipt.
func ResolveOrder(o Order, receipts []Receipt, invoices []Invoice) Linkage {
	l := Resolve(o.Key(), receipts, invoices)
	if l.Invoice != nil {
		return l
	}
	nf := normalizeText(o.InvoiceNumber)
	if nf == "" {
		return l
	}

	count := 0
	for i := range invoices {
		if normalizeText(invoices[i].InvoiceNumber) != nf {
			continue
		}
		// an invoice already tied to another order is not ours
		if k := invoices[i].Key(); !k.IsZero() && k != o.Key() {
			continue
		}
		count++
		if count == 1 {
			inv := invoices[i]
			l.Invoice = &inv
		}
	}
	if count > 1 {
		l.Anomalies = append(l.Anomalies, Anomaly{Kind: DuplicateInvoice, Key: "NF " + nf, Count: count})
	}
	return l
}

// JoinedOrder is an order with its resolved linkage and lifecycle stage.
type JoinedOrder struct {
	Order   Order    `json:"order"`
	Receipt *Receipt `json:"receipt,omitempty"`
	Invoice *Invoice `json:"invoice,omitempty"`
	Stage   Stage    `json:"stage"`
}

// JoinResult is the display join of the three tables.
type JoinResult struct {
	Orders         []JoinedOrder `json:"orders"`
	OrphanReceipts []Receipt     `json:"orphan_receipts"`
	OrphanInvoices []Invoice     `json:"orphan_invoices"`
	Anomalies      []Anomaly     `json:"anomalies"`
}

// Join resolves every order and collects receipts and invoices that no order claims.
func Join(orders []Order, receipts []Receipt, invoices []Invoice) JoinResult {
	res := JoinResult{Orders: make([]JoinedOrder, 0, len(orders))}

	orderKeys := make(map[OrderKey]bool, len(orders))
	orderNFs := make(map[string]bool)
	for _, o := range orders {
		if k := o.Key(); !k.IsZero() {
			orderKeys[k] = true
		}
		if nf := normalizeText(o.InvoiceNumber); nf != "" {
			orderNFs[nf] = true
		}
	}

	for _, o := range orders {
		l := ResolveOrder(o, receipts, invoices)
		res.Orders = append(res.Orders, JoinedOrder{
			Order:   o,
			Receipt: l.Receipt,
			Invoice: l.Invoice,
			Stage:   StageOf(o, l),
		})
		res.Anomalies = append(res.Anomalies, l.Anomalies...)
	}

	for _, rc := range receipts {
		if !orderKeys[rc.Key()] {
			res.OrphanReceipts = append(res.OrphanReceipts, rc)
			res.Anomalies = append(res.Anomalies, Anomaly{Kind: OrphanReceipt, Key: rc.OrderNumber})
		}
	}
	for _, inv := range invoices {
		if orderKeys[inv.Key()] || orderNFs[normalizeText(inv.InvoiceNumber)] {
			continue
		}
		res.OrphanInvoices = append(res.OrphanInvoices, inv)
		res.Anomalies = append(res.Anomalies, Anomaly{Kind: OrphanInvoice, Key: inv.InvoiceNumber})
	}
	res.Anomalies = dedupeAnomalies(res.Anomalies)
	return res
}

func dedupeAnomalies(in []Anomaly) []Anomaly {
	seen := make(map[Anomaly]bool, len(in))
	out := in[:0]
	for _, a := range in {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
