package core

import (
	"sort"
	"strconv"

	"procurement-tracker/internal/store"
)

// Stored column headers.
const (
	colDate              = "DATA"
	colRequester         = "SOLICITANTE"
	colDepartment        = "DEPARTAMENTO"
	colBranch            = "FILIAL"
	colMaterial          = "MATERIAL"
	colQuantity          = "QUANTIDADE"
	colOrderType         = "TIPO_PEDIDO"
	colRequisition       = "REQUISICAO"
	colSupplier          = "FORNECEDOR"
	colOrderNumber       = "ORDEM_COMPRA"
	colItemValue         = "VALOR_ITEM"
	colRenegotiated      = "VALOR_RENEGOCIADO"
	colApprovalDate      = "DATA_APROVACAO"
	colExpectedDelivery  = "PREVISAO_ENTREGA"
	colOrderFreight      = "CONDICAO_FRETE"
	colDeliveryStatus    = "STATUS_PEDIDO"
	colDeliveryDate      = "DATA_ENTREGA"
	colDaysLate          = "DIAS_ATRASO"
	colDaysToApprove     = "DIAS_EMISSAO"
	colInvoiceNumber     = "NF"
	colInvoiceLink       = "DOC NF"
	colReceiver          = "RECEBEDOR"
	colVolume            = "VOLUME"
	colInvoiceTotal      = "V. TOTAL NF"
	colReceiptFreight    = "CONDICAO FRETE"
	colReceiptFreightVal = "VALOR FRETE"
	colNotes             = "OBSERVACAO"
	colDueDate           = "VENCIMENTO"
	colFinancialStatus   = "STATUS_FINANCEIRO"
	colProblemCondition  = "CONDICAO_PROBLEMA"
	colAdditionalNotes   = "REGISTRO_ADICIONAL"
	colInterestValue     = "VALOR_JUROS"
	colInterestRate      = "TAXA_JUROS"
	colInterestDays      = "DIAS_JUROS"
	colFreightValue      = "VALOR_FRETE"
	colName              = "NOME"
	colEmail             = "EMAIL"
	colExpenseType       = "TIPO_DESPESA"
	colValue             = "VALOR"
	colJustification     = "JUSTIFICATIVA"
	colStatus            = "STATUS"
	colReceiptID         = "ID_COMPROVANTE"
	colStart             = "INICIO"
	colEnd               = "FIM"
	colDescription       = "DESCRICAO"
	colRating            = "AVALIACAO"
	colComment           = "COMENTARIO"
)

var OrderSchema = store.Schema{
	Table: store.TableOrders,
	Columns: []store.Column{
		{Name: colDate},
		{Name: colRequester},
		{Name: colDepartment},
		{Name: colBranch},
		{Name: colMaterial},
		{Name: colQuantity, Default: "0"},
		{Name: colOrderType},
		{Name: colRequisition},
		{Name: colSupplier},
		{Name: colOrderNumber},
		{Name: colItemValue, Default: "0"},
		{Name: colRenegotiated, Default: "0"},
		{Name: colApprovalDate},
		{Name: colExpectedDelivery},
		{Name: colOrderFreight},
		{Name: colDeliveryStatus, Default: DeliveryPending},
		{Name: colDeliveryDate},
		{Name: colDaysLate, Default: "0"},
		{Name: colDaysToApprove, Default: "0"},
		{Name: colInvoiceNumber},
		{Name: colInvoiceLink},
	},
}

var ReceiptSchema = store.Schema{
	Table: store.TableReceipts,
	Columns: []store.Column{
		{Name: colDate},
		{Name: colReceiver},
		{Name: colSupplier},
		{Name: colInvoiceNumber},
		{Name: colOrderNumber},
		{Name: colVolume, Default: "1"},
		{Name: colInvoiceTotal, Default: "0"},
		{Name: colReceiptFreight},
		{Name: colReceiptFreightVal, Default: "0"},
		{Name: colNotes},
		{Name: colInvoiceLink},
		{Name: colDueDate},
	},
}

var InvoiceSchema = store.Schema{
	Table: store.TableInvoices,
	Columns: []store.Column{
		{Name: colDate},
		{Name: colSupplier},
		{Name: colInvoiceNumber},
		{Name: colOrderNumber},
		{Name: colInvoiceTotal, Default: "0"},
		{Name: colDueDate},
		{Name: colFinancialStatus, Default: FinancialInProgress},
		{Name: colProblemCondition, Default: ProblemNone},
		{Name: colAdditionalNotes},
		{Name: colInterestValue, Default: "0"},
		{Name: colInterestRate, Default: "0"},
		{Name: colInterestDays, Default: "0"},
		{Name: colFreightValue, Default: "0"},
		{Name: colDaysLate, Default: "0"},
		{Name: colInvoiceLink},
	},
	Aliases: map[string]string{
		"STATUS":             colFinancialStatus,
		colNotes:             colAdditionalNotes,
		colReceiptFreightVal: colFreightValue,
	},
}

var RequesterSchema = store.Schema{
	Table: store.TableRequesters,
	Columns: []store.Column{
		{Name: colName},
		{Name: colDepartment},
		{Name: colEmail},
		{Name: colBranch},
	},
}

var ReimbursementSchema = store.Schema{
	Table: store.TableReimbursements,
	Columns: []store.Column{
		{Name: colDate},
		{Name: colName},
		{Name: colDepartment},
		{Name: colExpenseType},
		{Name: colValue, Default: "0"},
		{Name: colJustification},
		{Name: colStatus, Default: ReimbursementPending},
		{Name: colReceiptID},
	},
}

var ServiceSchema = store.Schema{
	Table: store.TableServices,
	Columns: []store.Column{
		{Name: colSupplier},
		{Name: colRequester},
		{Name: colStart},
		{Name: colEnd},
		{Name: colDescription},
		{Name: colStatus, Default: ServiceActive},
		{Name: colRating},
		{Name: colComment},
	},
}

// ── orders ──────────────────────────────────────────────────────────────────

func OrdersFromTable(t *store.Table) []Order {
	t = OrderSchema.Normalize(t)
	orders := make([]Order, 0, len(t.Rows))
	for i, r := range t.Rows {
		orders = append(orders, Order{
			Row:                  i,
			RequestDate:          ParseDate(r[colDate]),
			Requester:            r.Get(colRequester),
			Department:           r.Get(colDepartment),
			Branch:               r.Get(colBranch),
			Material:             r.Get(colMaterial),
			Quantity:             ParseMoney(r[colQuantity]),
			OrderType:            r.Get(colOrderType),
			RequisitionNumber:    r.Get(colRequisition),
			Supplier:             r.Get(colSupplier),
			OrderNumber:          r.Get(colOrderNumber),
			ItemValue:            ParseMoney(r[colItemValue]),
			RenegotiatedValue:    ParseMoney(r[colRenegotiated]),
			ApprovalDate:         ParseDate(r[colApprovalDate]),
			ExpectedDeliveryDate: ParseDate(r[colExpectedDelivery]),
			FreightTerms:         r.Get(colOrderFreight),
			DeliveryStatus:       r.Get(colDeliveryStatus),
			DeliveryDate:         ParseDate(r[colDeliveryDate]),
			DaysLate:             ParseInt(r[colDaysLate]),
			DaysToApprove:        ParseInt(r[colDaysToApprove]),
			InvoiceNumber:        r.Get(colInvoiceNumber),
			InvoiceLink:          r.Get(colInvoiceLink),
			Extra:                extraColumns(OrderSchema, r),
		})
	}
	return orders
}

func OrdersToTable(orders []Order) *store.Table {
	rows := make([]store.Row, 0, len(orders))
	extras := make([]map[string]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, store.Row{
			colDate:             o.RequestDate.String(),
			colRequester:        o.Requester,
			colDepartment:       o.Department,
			colBranch:           o.Branch,
			colMaterial:         o.Material,
			colQuantity:         FormatMoney(o.Quantity),
			colOrderType:        o.OrderType,
			colRequisition:      o.RequisitionNumber,
			colSupplier:         o.Supplier,
			colOrderNumber:      o.OrderNumber,
			colItemValue:        FormatMoney(o.ItemValue),
			colRenegotiated:     FormatMoney(o.RenegotiatedValue),
			colApprovalDate:     o.ApprovalDate.String(),
			colExpectedDelivery: o.ExpectedDeliveryDate.String(),
			colOrderFreight:     o.FreightTerms,
			colDeliveryStatus:   o.DeliveryStatus,
			colDeliveryDate:     o.DeliveryDate.String(),
			colDaysLate:         strconv.Itoa(o.DaysLate),
			colDaysToApprove:    strconv.Itoa(o.DaysToApprove),
			colInvoiceNumber:    o.InvoiceNumber,
			colInvoiceLink:      o.InvoiceLink,
		})
		extras = append(extras, o.Extra)
	}
	return buildTable(OrderSchema, rows, extras)
}

// ── receipts ────────────────────────────────────────────────────────────────

func ReceiptsFromTable(t *store.Table) []Receipt {
	t = ReceiptSchema.Normalize(t)
	receipts := make([]Receipt, 0, len(t.Rows))
	for _, r := range t.Rows {
		receipts = append(receipts, Receipt{
			ReceiptDate:         ParseDate(r[colDate]),
			ReceiverName:        r.Get(colReceiver),
			Supplier:            r.Get(colSupplier),
			InvoiceNumber:       r.Get(colInvoiceNumber),
			OrderNumber:         r.Get(colOrderNumber),
			Volume:              ParseInt(r[colVolume]),
			InvoiceTotal:        ParseMoney(r[colInvoiceTotal]),
			FreightTerms:        r.Get(colReceiptFreight),
			FreightValue:        ParseMoney(r[colReceiptFreightVal]),
			Notes:               r.Get(colNotes),
			InvoiceDocumentLink: r.Get(colInvoiceLink),
			DueDate:             ParseDate(r[colDueDate]),
			Extra:               extraColumns(ReceiptSchema, r),
		})
	}
	return receipts
}

func ReceiptsToTable(receipts []Receipt) *store.Table {
	rows := make([]store.Row, 0, len(receipts))
	extras := make([]map[string]string, 0, len(receipts))
	for _, rc := range receipts {
		rows = append(rows, store.Row{
			colDate:              rc.ReceiptDate.String(),
			colReceiver:          rc.ReceiverName,
			colSupplier:          rc.Supplier,
			colInvoiceNumber:     rc.InvoiceNumber,
			colOrderNumber:       rc.OrderNumber,
			colVolume:            strconv.Itoa(rc.Volume),
			colInvoiceTotal:      FormatMoney(rc.InvoiceTotal),
			colReceiptFreight:    rc.FreightTerms,
			colReceiptFreightVal: FormatMoney(rc.FreightValue),
			colNotes:             rc.Notes,
			colInvoiceLink:       rc.InvoiceDocumentLink,
			colDueDate:           rc.DueDate.String(),
		})
		extras = append(extras, rc.Extra)
	}
	return buildTable(ReceiptSchema, rows, extras)
}

// ── invoices ────────────────────────────────────────────────────────────────

func InvoicesFromTable(t *store.Table) []Invoice {
	t = InvoiceSchema.Normalize(t)
	invoices := make([]Invoice, 0, len(t.Rows))
	for _, r := range t.Rows {
		invoices = append(invoices, Invoice{
			IssueDate:        ParseDate(r[colDate]),
			Supplier:         r.Get(colSupplier),
			InvoiceNumber:    r.Get(colInvoiceNumber),
			OrderNumber:      r.Get(colOrderNumber),
			InvoiceTotal:     ParseMoney(r[colInvoiceTotal]),
			DueDate:          ParseDate(r[colDueDate]),
			FinancialStatus:  r.Get(colFinancialStatus),
			ProblemCondition: r.Get(colProblemCondition),
			Notes:            r.Get(colAdditionalNotes),
			InterestValue:    ParseMoney(r[colInterestValue]),
			InterestRate:     ParseMoney(r[colInterestRate]),
			InterestDays:     ParseInt(r[colInterestDays]),
			FreightValue:     ParseMoney(r[colFreightValue]),
			DaysLate:         ParseInt(r[colDaysLate]),
			DocumentLink:     r.Get(colInvoiceLink),
			Extra:            extraColumns(InvoiceSchema, r),
		})
	}
	return invoices
}

func InvoicesToTable(invoices []Invoice) *store.Table {
	rows := make([]store.Row, 0, len(invoices))
	extras := make([]map[string]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, store.Row{
			colDate:             inv.IssueDate.String(),
			colSupplier:         inv.Supplier,
			colInvoiceNumber:    inv.InvoiceNumber,
			colOrderNumber:      inv.OrderNumber,
			colInvoiceTotal:     FormatMoney(inv.InvoiceTotal),
			colDueDate:          inv.DueDate.String(),
			colFinancialStatus:  inv.FinancialStatus,
			colProblemCondition: inv.ProblemCondition,
			colAdditionalNotes:  inv.Notes,
			colInterestValue:    FormatMoney(inv.InterestValue),
			colInterestRate:     FormatMoney(inv.InterestRate),
			colInterestDays:     strconv.Itoa(inv.InterestDays),
			colFreightValue:     FormatMoney(inv.FreightValue),
			colDaysLate:         strconv.Itoa(inv.DaysLate),
			colInvoiceLink:      inv.DocumentLink,
		})
		extras = append(extras, inv.Extra)
	}
	return buildTable(InvoiceSchema, rows, extras)
}

// ── registry ────────────────────────────────────────────────────────────────

func RequestersFromTable(t *store.Table) []Requester {
	t = RequesterSchema.Normalize(t)
	out := make([]Requester, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, Requester{
			Name:       r.Get(colName),
			Department: r.Get(colDepartment),
			Email:      r.Get(colEmail),
			Branch:     r.Get(colBranch),
		})
	}
	return out
}

func RequestersToTable(requesters []Requester) *store.Table {
	rows := make([]store.Row, 0, len(requesters))
	for _, rq := range requesters {
		rows = append(rows, store.Row{
			colName:       rq.Name,
			colDepartment: rq.Department,
			colEmail:      rq.Email,
			colBranch:     rq.Branch,
		})
	}
	return buildTable(RequesterSchema, rows, nil)
}

func ReimbursementsFromTable(t *store.Table) []Reimbursement {
	t = ReimbursementSchema.Normalize(t)
	out := make([]Reimbursement, 0, len(t.Rows))
	for i, r := range t.Rows {
		out = append(out, Reimbursement{
			Row:           i,
			Date:          ParseDate(r[colDate]),
			Name:          r.Get(colName),
			Department:    r.Get(colDepartment),
			ExpenseType:   r.Get(colExpenseType),
			Value:         ParseMoney(r[colValue]),
			Justification: r.Get(colJustification),
			Status:        r.Get(colStatus),
			ReceiptID:     r.Get(colReceiptID),
			Extra:         extraColumns(ReimbursementSchema, r),
		})
	}
	return out
}

func ReimbursementsToTable(items []Reimbursement) *store.Table {
	rows := make([]store.Row, 0, len(items))
	extras := make([]map[string]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, store.Row{
			colDate:          it.Date.String(),
			colName:          it.Name,
			colDepartment:    it.Department,
			colExpenseType:   it.ExpenseType,
			colValue:         FormatMoney(it.Value),
			colJustification: it.Justification,
			colStatus:        it.Status,
			colReceiptID:     it.ReceiptID,
		})
		extras = append(extras, it.Extra)
	}
	return buildTable(ReimbursementSchema, rows, extras)
}

// ── services ────────────────────────────────────────────────────────────────

func ServiceJobsFromTable(t *store.Table) []ServiceJob {
	t = ServiceSchema.Normalize(t)
	out := make([]ServiceJob, 0, len(t.Rows))
	for i, r := range t.Rows {
		out = append(out, ServiceJob{
			Row:         i,
			Supplier:    r.Get(colSupplier),
			Requester:   r.Get(colRequester),
			Start:       ParseDate(r[colStart]),
			PlannedEnd:  ParseDate(r[colEnd]),
			Description: r.Get(colDescription),
			Status:      r.Get(colStatus),
			Rating:      ParseInt(r[colRating]),
			Comment:     r.Get(colComment),
			Extra:       extraColumns(ServiceSchema, r),
		})
	}
	return out
}

func ServiceJobsToTable(jobs []ServiceJob) *store.Table {
	rows := make([]store.Row, 0, len(jobs))
	extras := make([]map[string]string, 0, len(jobs))
	for _, j := range jobs {
		rating := ""
		if j.Rating > 0 {
			rating = strconv.Itoa(j.Rating)
		}
		rows = append(rows, store.Row{
			colSupplier:    j.Supplier,
			colRequester:   j.Requester,
			colStart:       j.Start.String(),
			colEnd:         j.PlannedEnd.String(),
			colDescription: j.Description,
			colStatus:      j.Status,
			colRating:      rating,
			colComment:     j.Comment,
		})
		extras = append(extras, j.Extra)
	}
	return buildTable(ServiceSchema, rows, extras)
}

// ── private helpers ─────────────────────────────────────────────────────────

func extraColumns(s store.Schema, r store.Row) map[string]string {
	known := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		known[c.Name] = true
	}
	var extra map[string]string
	for k, v := range r {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return extra
}

// buildTable lays rows out under the schema header followed by the union of
// extra columns, sorted by name. Extra keys naming a schema column or a legacy
// alias are dropped so they can never shadow a modelled field.
func buildTable(s store.Schema, rows []store.Row, extras []map[string]string) *store.Table {
	t := &store.Table{Name: s.Table, Columns: s.ColumnNames(), Rows: rows}

	seen := make(map[string]bool, len(s.Columns)+len(s.Aliases))
	for _, c := range s.Columns {
		seen[c.Name] = true
	}
	for alias := range s.Aliases {
		seen[alias] = true
	}
	var extraCols []string
	for _, extra := range extras {
		for k := range extra {
			if !seen[k] {
				seen[k] = true
				extraCols = append(extraCols, k)
			}
		}
	}
	sort.Strings(extraCols)
	t.Columns = append(t.Columns, extraCols...)

	for i, extra := range extras {
		for _, k := range extraCols {
			rows[i][k] = extra[k]
		}
	}
	return t
}
