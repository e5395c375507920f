package core

import (
	"context"
	"fmt"
	"sort"

	"procurement-tracker/internal/store"
)

// TableErrors holds per-table failures keyed by table name.
type TableErrors map[string]error

// Messages renders the failures for display, sorted by table.
func (e TableErrors) Messages() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Sprintf("%s: %v", name, e[name]))
	}
	return out
}

// LoadTables loads orders, receipts and invoices independently. A table that
// fails to load is left empty and reported; the other two are still returned.
func LoadTables(ctx context.Context, st store.Store) (Tables, TableErrors) {
	var t Tables
	errs := TableErrors{}

	if orders, err := loadOrders(ctx, st); err != nil {
		errs[store.TableOrders] = err
	} else {
		t.Orders = orders
	}
	if receipts, err := loadReceipts(ctx, st); err != nil {
		errs[store.TableReceipts] = err
	} else {
		t.Receipts = receipts
	}
	if invoices, err := loadInvoices(ctx, st); err != nil {
		errs[store.TableInvoices] = err
	} else {
		t.Invoices = invoices
	}
	return t, errs
}

func loadOrders(ctx context.Context, st store.Store) ([]Order, error) {
	t, err := st.LoadTable(ctx, store.TableOrders)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return OrdersFromTable(t), nil
}

func saveOrders(ctx context.Context, st store.Store, orders []Order) error {
	if err := st.SaveTable(ctx, OrdersToTable(orders)); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func loadReceipts(ctx context.Context, st store.Store) ([]Receipt, error) {
	t, err := st.LoadTable(ctx, store.TableReceipts)
	if err != nil {
		return nil, fmt.Errorf("load receipts: %w", err)
	}
	return ReceiptsFromTable(t), nil
}

func saveReceipts(ctx context.Context, st store.Store, receipts []Receipt) error {
	if err := st.SaveTable(ctx, ReceiptsToTable(receipts)); err != nil {
		return fmt.Errorf("save receipts: %w", err)
	}
	return nil
}

func loadInvoices(ctx context.Context, st store.Store) ([]Invoice, error) {
	t, err := st.LoadTable(ctx, store.TableInvoices)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	return InvoicesFromTable(t), nil
}

func saveInvoices(ctx context.Context, st store.Store, invoices []Invoice) error {
	if err := st.SaveTable(ctx, InvoicesToTable(invoices)); err != nil {
		return fmt.Errorf("save invoices: %w", err)
	}
	return nil
}

// SaveRecomputed writes the orders and invoices of a recompute pass. Each
// table is saved independently and failures are reported per table. Tables
// listed in loadErrs are skipped so a failed load never overwrites stored rows.
func SaveRecomputed(ctx context.Context, st store.Store, res RecomputeResult, loadErrs TableErrors) TableErrors {
	errs := TableErrors{}
	if loadErrs[store.TableOrders] == nil {
		if err := saveOrders(ctx, st, res.Orders); err != nil {
			errs[store.TableOrders] = err
		}
	}
	if loadErrs[store.TableInvoices] == nil {
		if err := saveInvoices(ctx, st, res.Invoices); err != nil {
			errs[store.TableInvoices] = err
		}
	}
	return errs
}

// EventRecorder receives lifecycle events for metrics.
type EventRecorder interface {
	RecordReceipt(linked bool)
	RecordStageTransition(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) RecordReceipt(bool)                  {}
func (nopRecorder) RecordStageTransition(string, string) {}
