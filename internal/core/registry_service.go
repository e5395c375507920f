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

// RegistryService manages the requester registry and employee reimbursements.
type RegistryService interface {
	// ListRequesters returns every registered requester in table order.
	ListRequesters(ctx context.Context) ([]Requester, error)

	// RegisterRequester appends a requester. Name, department, email and branch
	// are all required; the same name and email cannot be registered twice.
	RegisterRequester(ctx context.Context, rq Requester) (*Requester, error)

	// SubmitReimbursement appends a PENDENTE claim dated today when no date is given.
	SubmitReimbursement(ctx context.Context, in NewReimbursement) (*Reimbursement, error)

	// ListReimbursements returns claims, optionally restricted to one status.
	ListReimbursements(ctx context.Context, status string) ([]Reimbursement, error)

	// UpdateReimbursementStatus sets the status of the claim at the given table row.
	UpdateReimbursementStatus(ctx context.Context, row int, status string) (*Reimbursement, error)
}

// NewReimbursement is an expense claim as submitted by an employee.
type NewReimbursement struct {
	Date          Date            `json:"date"`
	Name          string          `json:"name"`
	Department    string          `json:"department"`
	ExpenseType   string          `json:"expense_type"`
	Value         decimal.Decimal `json:"value"`
	Justification string          `json:"justification"`
	ReceiptID     string          `json:"receipt_id"`
}

type registryService struct {
	store store.Store
	log   *zap.Logger
}

// NewRegistryService constructs a RegistryService over st.
func NewRegistryService(st store.Store, log *zap.Logger) RegistryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &registryService{store: st, log: log}
}

func (s *registryService) ListRequesters(ctx context.Context) ([]Requester, error) {
	t, err := s.store.LoadTable(ctx, store.TableRequesters)
	if err != nil {
		return nil, fmt.Errorf("load requesters: %w", err)
	}
	return RequestersFromTable(t), nil
}

func (s *registryService) RegisterRequester(ctx context.Context, rq Requester) (*Requester, error) {
	rq = Requester{
		Name:       strings.TrimSpace(rq.Name),
		Department: strings.TrimSpace(rq.Department),
		Email:      strings.TrimSpace(rq.Email),
		Branch:     strings.TrimSpace(rq.Branch),
	}
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", rq.Name}, {"department", rq.Department}, {"email", rq.Email}, {"branch", rq.Branch},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if !strings.Contains(rq.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, rq.Email)
	}

	requesters, err := s.ListRequesters(ctx)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(requesters, func(r Requester) bool {
		return normalizeText(r.Name) == normalizeText(rq.Name) && strings.EqualFold(r.Email, rq.Email)
	}) {
		return nil, fmt.Errorf("%w: requester %s <%s> already registered", ErrValidation, rq.Name, rq.Email)
	}

	requesters = append(requesters, rq)
	if err := s.store.SaveTable(ctx, RequestersToTable(requesters)); err != nil {
		return nil, fmt.Errorf("save requesters: %w", err)
	}
	s.log.Info("requester registered", zap.String("name", rq.Name), zap.String("department", rq.Department))
	return &rq, nil
}

func (s *registryService) loadReimbursements(ctx context.Context) ([]Reimbursement, error) {
	t, err := s.store.LoadTable(ctx, store.TableReimbursements)
	if err != nil {
		return nil, fmt.Errorf("load reimbursements: %w", err)
	}
	return ReimbursementsFromTable(t), nil
}

func (s *registryService) saveReimbursements(ctx context.Context, items []Reimbursement) error {
	if err := s.store.SaveTable(ctx, ReimbursementsToTable(items)); err != nil {
		return fmt.Errorf("save reimbursements: %w", err)
	}
	return nil
}

func (s *registryService) SubmitReimbursement(ctx context.Context, in NewReimbursement) (*Reimbursement, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.Value.IsPositive() {
		return nil, fmt.Errorf("%w: value must be greater than zero", ErrValidation)
	}
	if strings.TrimSpace(in.Justification) == "" {
		return nil, fmt.Errorf("%w: justification is required", ErrValidation)
	}

	items, err := s.loadReimbursements(ctx)
	if err != nil {
		return nil, err
	}
	r := Reimbursement{
		Date:          in.Date,
		Name:          strings.TrimSpace(in.Name),
		Department:    strings.TrimSpace(in.Department),
		ExpenseType:   strings.TrimSpace(in.ExpenseType),
		Value:         in.Value.Round(2),
		Justification: strings.TrimSpace(in.Justification),
		Status:        ReimbursementPending,
		ReceiptID:     strings.TrimSpace(in.ReceiptID),
		Row:           len(items),
	}
	if r.Date.IsZero() {
		r.Date = Today()
	}
	items = append(items, r)
	if err := s.saveReimbursements(ctx, items); err != nil {
		return nil, err
	}
	s.log.Info("reimbursement submitted", zap.String("name", r.Name), zap.String("value", FormatMoney(r.Value)))
	return &r, nil
}

func (s *registryService) ListReimbursements(ctx context.Context, status string) ([]Reimbursement, error) {
	items, err := s.loadReimbursements(ctx)
	if err != nil {
		return nil, err
	}
	status = normalizeText(status)
	if status == "" {
		return items, nil
	}
	out := make([]Reimbursement, 0, len(items))
	for _, it := range items {
		if normalizeText(it.Status) == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *registryService) UpdateReimbursementStatus(ctx context.Context, row int, status string) (*Reimbursement, error) {
	status = normalizeText(status)
	if !slices.Contains(ReimbursementStatuses, status) {
		return nil, fmt.Errorf("%w: status must be one of %s", ErrValidation, strings.Join(ReimbursementStatuses, ", "))
	}
	items, err := s.loadReimbursements(ctx)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(items) {
		return nil, fmt.Errorf("reimbursement row %d: %w", row, ErrNotFound)
	}
	items[row].Status = status
	if err := s.saveReimbursements(ctx, items); err != nil {
		return nil, err
	}
	s.log.Info("reimbursement status updated", zap.Int("row", row), zap.String("status", status))
	return &items[row], nil
}
