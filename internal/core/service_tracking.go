package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"procurement-tracker/internal/store"
)

// ServiceTrackingService follows contracted supplier services from
// registration to the requester's rating.
type ServiceTrackingService interface {
	// ListServiceJobs returns jobs, optionally restricted to one status.
	ListServiceJobs(ctx context.Context, status string) ([]ServiceJob, error)

	// RegisterServiceJob appends an EM ANDAMENTO job.
	RegisterServiceJob(ctx context.Context, in NewServiceJob) (*ServiceJob, error)

	// CompleteServiceJob rates the job at row and marks it CONCLUIDO.
	// Only a job still EM ANDAMENTO can be completed.
	CompleteServiceJob(ctx context.Context, row int, r ServiceRating) (*ServiceJob, error)
}

type serviceTracking struct {
	store store.Store
	log   *zap.Logger
}

// NewServiceTrackingService constructs a ServiceTrackingService over st.
func NewServiceTrackingService(st store.Store, log *zap.Logger) ServiceTrackingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &serviceTracking{store: st, log: log}
}

func (s *serviceTracking) load(ctx context.Context) ([]ServiceJob, error) {
	t, err := s.store.LoadTable(ctx, store.TableServices)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	return ServiceJobsFromTable(t), nil
}

func (s *serviceTracking) save(ctx context.Context, jobs []ServiceJob) error {
	if err := s.store.SaveTable(ctx, ServiceJobsToTable(jobs)); err != nil {
		return fmt.Errorf("save services: %w", err)
	}
	return nil
}

func (s *serviceTracking) ListServiceJobs(ctx context.Context, status string) ([]ServiceJob, error) {
	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	status = normalizeText(status)
	if status == "" {
		return jobs, nil
	}
	out := make([]ServiceJob, 0, len(jobs))
	for _, j := range jobs {
		switch {
		case status == ServiceCompleted && j.IsCompleted(),
			status == ServiceActive && j.IsActive(),
			normalizeText(j.Status) == status:
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *serviceTracking) RegisterServiceJob(ctx context.Context, in NewServiceJob) (*ServiceJob, error) {
	j := ServiceJob{
		Supplier:    strings.TrimSpace(in.Supplier),
		Requester:   strings.TrimSpace(in.Requester),
		Start:       in.Start,
		PlannedEnd:  in.PlannedEnd,
		Description: strings.TrimSpace(in.Description),
		Status:      ServiceActive,
	}
	if j.Supplier == "" {
		return nil, fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	if j.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if j.Start.IsZero() {
		j.Start = Today()
	}
	if j.PlannedEnd.IsZero() {
		j.PlannedEnd = j.Start.AddDays(DefaultServiceDuration)
	}
	if j.PlannedEnd.Before(j.Start) {
		return nil, fmt.Errorf("%w: planned end %s is before start %s", ErrValidation, j.PlannedEnd, j.Start)
	}

	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	j.Row = len(jobs)
	jobs = append(jobs, j)
	if err := s.save(ctx, jobs); err != nil {
		return nil, err
	}
	s.log.Info("service registered", zap.String("supplier", j.Supplier), zap.String("end", j.PlannedEnd.String()))
	return &j, nil
}

func (s *serviceTracking) CompleteServiceJob(ctx context.Context, row int, r ServiceRating) (*ServiceJob, error) {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	jobs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(jobs) {
		return nil, fmt.Errorf("service row %d: %w", row, ErrNotFound)
	}
	if !jobs[row].IsActive() {
		return nil, fmt.Errorf("%w: service row %d is %s, not %s", ErrIllegalTransition, row, jobs[row].Status, ServiceActive)
	}
	jobs[row].Status = ServiceCompleted
	jobs[row].Rating = r.Rating
	jobs[row].Comment = strings.TrimSpace(r.Comment)
	if err := s.save(ctx, jobs); err != nil {
		return nil, err
	}
	s.log.Info("service completed", zap.Int("row", row), zap.String("supplier", jobs[row].Supplier), zap.Int("rating", r.Rating))
	return &jobs[row], nil
}
