package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"procurement-tracker/internal/core"
	"procurement-tracker/internal/store"
)

// tableSchemas lists every logical table in copy order.
var tableSchemas = []store.Schema{
	core.OrderSchema,
	core.ReceiptSchema,
	core.InvoiceSchema,
	core.RequesterSchema,
	core.ReimbursementSchema,
	core.ServiceSchema,
}

// CopyReport is the outcome for one table of CopyTables.
type CopyReport struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	Err   error  `json:"-"`
}

// CopyTables loads every logical table from src, normalizes its headers and
// overwrites it in dst. A failing table is reported and does not stop the others.
func CopyTables(ctx context.Context, src, dst store.Store, log *zap.Logger) []CopyReport {
	if log == nil {
		log = zap.NewNop()
	}
	reports := make([]CopyReport, 0, len(tableSchemas))
	for _, schema := range tableSchemas {
		rep := CopyReport{Table: schema.Table}
		t, err := src.LoadTable(ctx, schema.Table)
		if err != nil {
			rep.Err = fmt.Errorf("load: %w", err)
		} else {
			t = schema.Normalize(t)
			rep.Rows = len(t.Rows)
			if err := dst.SaveTable(ctx, t); err != nil {
				rep.Err = fmt.Errorf("save: %w", err)
			}
		}
		if rep.Err != nil {
			log.Warn("table copy failed", zap.String("table", rep.Table), zap.Error(rep.Err))
		} else {
			log.Info("table copied", zap.String("table", rep.Table), zap.Int("rows", rep.Rows))
		}
		reports = append(reports, rep)
	}
	return reports
}
