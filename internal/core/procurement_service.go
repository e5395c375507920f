package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"procurement-tracker/internal/store"
)

// ProcurementService covers the buyer side: requisitions, purchase orders and
// the orders table as a whole.
type ProcurementService interface {
	// ListOrders returns the stored orders matching filter, in table order.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// CreateRequisition appends a PENDENTE order without a purchase-order number.
	// Department and branch default to the requester's registry entry.
	CreateRequisition(ctx context.Context, req NewRequisition) (*Order, error)

	// AssignPurchaseOrder issues a purchase order for the order at the given
	// table row (PENDING_NO_PO → PO_ISSUED) and saves the table.
	AssignPurchaseOrder(ctx context.Context, row int, a AssignPO) (*Order, error)

	// ReplaceOrders overwrites the orders table with orders after recomputing
	// their derived fields. In strict mode every row whose stage changes must
	// follow the intended workflow, otherwise nothing is saved.
	ReplaceOrders(ctx context.Context, orders []Order) (*ReplaceResult, error)

	// ReconcileDeliveries re-applies stored receipts to matching orders that are
	// not yet marked delivered (receipts registered before the order got its number).
	ReconcileDeliveries(ctx context.Context) (*ReconcileResult, error)
}

// NewRequisition is a purchase request before a buyer issues the order.
type NewRequisition struct {
	RequestDate       Date            `json:"request_date"`
	Requester         string          `json:"requester"`
	Department        string          `json:"department"`
	Branch            string          `json:"branch"`
	Material          string          `json:"material"`
	Quantity          decimal.Decimal `json:"quantity"`
	OrderType         string          `json:"order_type"`
	RequisitionNumber string          `json:"requisition_number"`
}

// ReplaceResult reports a full orders-table overwrite.
type ReplaceResult struct {
	Orders      []Order   `json:"orders"`
	Transitions int       `json:"transitions"`
	Anomalies   []Anomaly `json:"anomalies"`
}

// ReconcileResult reports a reconciliation pass.
type ReconcileResult struct {
	Applied  int      `json:"applied"`
	Warnings []string `json:"warnings"`
}

type procurementService struct {
	store  store.Store
	policy Policy
	events EventRecorder
	log    *zap.Logger
}

// NewProcurementService constructs a ProcurementService over st.
func NewProcurementService(st store.Store, policy Policy, events EventRecorder, log *zap.Logger) ProcurementService {
	if events == nil {
		events = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &procurementService{store: st, policy: policy, events: events, log: log}
}

func (s *procurementService) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	orders, err := loadOrders(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if filter.Matches(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *procurementService) CreateRequisition(ctx context.Context, req NewRequisition) (*Order, error) {
	if strings.TrimSpace(req.Requester) == "" {
		return nil, fmt.Errorf("%w: requester is required", ErrValidation)
	}
	if strings.TrimSpace(req.Material) == "" {
		return nil, fmt.Errorf("%w: material is required", ErrValidation)
	}
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	orderType := normalizeText(req.OrderType)
	if orderType != "" && !slices.Contains(OrderTypes, orderType) {
		return nil, fmt.Errorf("%w: order type must be one of %s", ErrValidation, strings.Join(OrderTypes, ", "))
	}

	orders, err := loadOrders(ctx, s.store)
	if err != nil {
		return nil, err
	}

	if req.Department == "" || req.Branch == "" {
		if rq, ok := s.lookupRequester(ctx, req.Requester); ok {
			if req.Department == "" {
				req.Department = rq.Department
			}
			if req.Branch == "" {
				req.Branch = rq.Branch
			}
		}
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = Today()
	}

	o := Order{
		RequestDate:       req.RequestDate,
		Requester:         strings.TrimSpace(req.Requester),
		Department:        strings.TrimSpace(req.Department),
		Branch:            strings.TrimSpace(req.Branch),
		Material:          strings.TrimSpace(req.Material),
		Quantity:          req.Quantity,
		OrderType:         orderType,
		RequisitionNumber: strings.TrimSpace(req.RequisitionNumber),
		DeliveryStatus:    DeliveryPending,
		Row:               len(orders),
	}
	orders = append(orders, o)
	if err := saveOrders(ctx, s.store, orders); err != nil {
		return nil, err
	}
	s.log.Info("requisition created",
		zap.String("requester", o.Requester),
		zap.String("requisition", o.RequisitionNumber),
		zap.Int("row", o.Row))
	return &o, nil
}

// lookupRequester is best effort: a registry that fails to load just means no defaults.
func (s *procurementService) lookupRequester(ctx context.Context, name string) (Requester, bool) {
	t, err := s.store.LoadTable(ctx, store.TableRequesters)
	if err != nil {
		s.log.Warn("requester registry unavailable", zap.Error(err))
		return Requester{}, false
	}
	for _, rq := range RequestersFromTable(t) {
		if normalizeText(rq.Name) == normalizeText(name) {
			return rq, true
		}
	}
	return Requester{}, false
}

func (s *procurementService) AssignPurchaseOrder(ctx context.Context, row int, a AssignPO) (*Order, error) {
	orders, err := loadOrders(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(orders) {
		return nil, fmt.Errorf("order row %d: %w", row, ErrNotFound)
	}

	before := orders[row]
	after, err := AssignPurchaseOrder(before, a)
	if err != nil {
		return nil, err
	}
	after = s.policy.RecomputeOrder(after)

	from, to := StageOf(before, Linkage{}), StageOf(after, Linkage{})
	if s.policy.StrictTransitions {
		if err := CheckTransition(from, to); err != nil {
			return nil, err
		}
	}

	orders[row] = after
	if err := saveOrders(ctx, s.store, orders); err != nil {
		return nil, err
	}
	s.events.RecordStageTransition(string(from), string(to))
	s.log.Info("purchase order assigned",
		zap.Int("row", row),
		zap.String("order_number", after.OrderNumber),
		zap.String("supplier", after.Supplier))
	return &after, nil
}

func (s *procurementService) ReplaceOrders(ctx context.Context, orders []Order) (*ReplaceResult, error) {
	tables, errs := LoadTables(ctx, s.store)
	if err := errs[store.TableOrders]; err != nil {
		return nil, err
	}
	for name, err := range errs {
		s.log.Warn("linked table unavailable during save", zap.String("table", name), zap.Error(err))
	}

	next := make([]Order, len(orders))
	for i, o := range orders {
		o = s.policy.RecomputeOrder(o)
		o.Row = i
		next[i] = o
	}

	res := &ReplaceResult{Orders: next}
	type change struct{ from, to Stage }
	var changes []change
	for _, o := range next {
		prev, ok := findSameRow(tables.Orders, o)
		if !ok {
			continue
		}
		from := StageOf(prev, ResolveOrder(prev, tables.Receipts, tables.Invoices))
		l := ResolveOrder(o, tables.Receipts, tables.Invoices)
		to := StageOf(o, l)
		res.Anomalies = append(res.Anomalies, l.Anomalies...)
		if from == to {
			continue
		}
		if s.policy.StrictTransitions {
			if err := CheckTransition(from, to); err != nil {
				return nil, fmt.Errorf("order %q row %d: %w", o.RequisitionNumber, o.Row, err)
			}
		}
		changes = append(changes, change{from, to})
	}
	res.Anomalies = dedupeAnomalies(res.Anomalies)

	if err := saveOrders(ctx, s.store, next); err != nil {
		return nil, err
	}
	for _, c := range changes {
		s.events.RecordStageTransition(string(c.from), string(c.to))
	}
	res.Transitions = len(changes)
	s.log.Info("orders table replaced", zap.Int("rows", len(next)), zap.Int("transitions", res.Transitions))
	return res, nil
}

func findSameRow(orders []Order, o Order) (Order, bool) {
	if o.Row >= 0 && o.Row < len(orders) && SameOrderRow(orders[o.Row], o) {
		return orders[o.Row], true
	}
	for _, prev := range orders {
		if SameOrderRow(prev, o) {
			return prev, true
		}
	}
	return Order{}, false
}

func (s *procurementService) ReconcileDeliveries(ctx context.Context) (*ReconcileResult, error) {
	orders, err := loadOrders(ctx, s.store)
	if err != nil {
		return nil, err
	}
	receipts, err := loadReceipts(ctx, s.store)
	if err != nil {
		return nil, err
	}

	res := &ReconcileResult{}
	delivered := 0
	for _, rc := range receipts {
		key := rc.Key()
		if key.IsZero() {
			continue
		}
		pending := slices.ContainsFunc(orders, func(o Order) bool {
			return o.Key() == key && !o.IsDelivered()
		})
		if !pending {
			continue
		}
		var outcome ReceiptOutcome
		orders, outcome = ApplyReceipt(orders, rc)
		if outcome.Warning != "" {
			res.Warnings = append(res.Warnings, outcome.Warning)
		}
		delivered += outcome.Matched
		res.Applied++
	}
	if res.Applied == 0 {
		return res, nil
	}

	for i := range orders {
		orders[i] = s.policy.RecomputeOrder(orders[i])
	}
	if err := saveOrders(ctx, s.store, orders); err != nil {
		return nil, err
	}
	for range delivered {
		s.events.RecordStageTransition(string(StagePOIssued), string(StageDelivered))
	}
	s.log.Info("deliveries reconciled", zap.Int("receipts_applied", res.Applied), zap.Int("orders_delivered", delivered))
	return res, nil
}
