package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"procurement-tracker/internal/core"
	"procurement-tracker/internal/store"
)

func TestServiceTracking_Register(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := core.NewServiceTrackingService(st, zaptest.NewLogger(t))

	job, err := svc.RegisterServiceJob(ctx, core.NewServiceJob{Supplier: " Limpa Tudo ", Requester: "Ana", Description: "Limpeza da caixa d'água"})
	require.NoError(t, err)
	assert.Equal(t, "Limpa Tudo", job.Supplier)
	assert.Equal(t, core.ServiceActive, job.Status)
	assert.Equal(t, core.Today(), job.Start)
	assert.Equal(t, core.Today().AddDays(7), job.PlannedEnd)
	assert.Equal(t, 0, job.Row)

	tbl, err := st.LoadTable(ctx, store.TableServices)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "EM ANDAMENTO", tbl.Rows[0]["STATUS"])
	assert.Equal(t, "", tbl.Rows[0]["AVALIACAO"])

	cases := []struct {
		name string
		in   core.NewServiceJob
	}{
		{"no supplier", core.NewServiceJob{Description: "x"}},
		{"no description", core.NewServiceJob{Supplier: "ACME"}},
		{"end before start", core.NewServiceJob{Supplier: "ACME", Description: "x", Start: day(2024, 3, 10), PlannedEnd: day(2024, 3, 9)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterServiceJob(ctx, tc.in)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestServiceTracking_Complete(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(core.ServiceJobsToTable([]core.ServiceJob{
		{Supplier: "ACME", Description: "Pintura", Start: day(2024, 3, 1), PlannedEnd: day(2024, 3, 8), Status: core.ServiceActive},
		{Supplier: "Beta", Description: "Poda", Start: day(2024, 3, 1), PlannedEnd: day(2024, 3, 8), Status: "Concluído", Rating: 3},
	}))
	svc := core.NewServiceTrackingService(st, zaptest.NewLogger(t))

	_, err := svc.CompleteServiceJob(ctx, 0, core.ServiceRating{Rating: 6})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = svc.CompleteServiceJob(ctx, 0, core.ServiceRating{Rating: 0})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = svc.CompleteServiceJob(ctx, 7, core.ServiceRating{Rating: 5})
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = svc.CompleteServiceJob(ctx, 1, core.ServiceRating{Rating: 5})
	assert.ErrorIs(t, err, core.ErrIllegalTransition)

	done, err := svc.CompleteServiceJob(ctx, 0, core.ServiceRating{Rating: 5, Comment: " caprichado "})
	require.NoError(t, err)
	assert.Equal(t, core.ServiceCompleted, done.Status)
	assert.Equal(t, 5, done.Rating)
	assert.Equal(t, "caprichado", done.Comment)

	jobs, err := svc.ListServiceJobs(ctx, "")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 5, jobs[0].Rating)
	assert.Equal(t, day(2024, 3, 8), jobs[0].PlannedEnd)

	completed, err := svc.ListServiceJobs(ctx, "concluido")
	require.NoError(t, err)
	assert.Len(t, completed, 2, "accented legacy status counts as completed")

	active, err := svc.ListServiceJobs(ctx, core.ServiceActive)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestServiceTracking_StoreFailure(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailSave = map[string]error{store.TableServices: errBackend}
	svc := core.NewServiceTrackingService(st, zaptest.NewLogger(t))

	_, err := svc.RegisterServiceJob(context.Background(), core.NewServiceJob{Supplier: "ACME", Description: "x"})
	assert.ErrorIs(t, err, errBackend)
}

func TestServiceJobsFromTable_LegacyValues(t *testing.T) {
	tbl := &store.Table{
		Name:    store.TableServices,
		Columns: []string{"FORNECEDOR", "INICIO", "FIM", "STATUS", "AVALIACAO", "OBS"},
		Rows: []store.Row{
			{"FORNECEDOR": "ACME", "INICIO": "2024-03-01 00:00:00", "FIM": "08/03/2024", "STATUS": "Em andamento", "AVALIACAO": "", "OBS": "portão 2"},
			{"FORNECEDOR": "Beta", "INICIO": "01/03/2024", "STATUS": "Concluído", "AVALIACAO": "4.0"},
		},
	}
	jobs := core.ServiceJobsFromTable(tbl)
	require.Len(t, jobs, 2)
	assert.Equal(t, day(2024, 3, 1), jobs[0].Start)
	assert.True(t, jobs[0].IsActive())
	assert.Equal(t, 0, jobs[0].Rating)
	assert.Equal(t, "portão 2", jobs[0].Extra["OBS"])
	assert.True(t, jobs[1].IsCompleted())
	assert.Equal(t, 4, jobs[1].Rating)

	back := core.ServiceJobsToTable(jobs)
	assert.Contains(t, back.Columns, "OBS")
	assert.Equal(t, "4", back.Rows[1]["AVALIACAO"])
	assert.Equal(t, "", back.Rows[0]["AVALIACAO"])
}

func TestServiceOverview(t *testing.T) {
	jobs := []core.ServiceJob{
		{Supplier: "Beta", Status: core.ServiceActive},
		{Supplier: "ACME", Status: core.ServiceCompleted, Rating: 5},
		{Supplier: "ACME", Status: core.ServiceCompleted, Rating: 4},
		{Supplier: "Beta", Status: "Concluído", Rating: 2},
	}
	r := core.ServiceOverview(jobs)
	assert.Equal(t, 1, r.Active)
	assert.Equal(t, 3, r.Completed)
	assert.Equal(t, 3, r.Rated)
	assert.Equal(t, "3.7", r.AverageRating.String())
	require.Len(t, r.BySupplier, 2)
	assert.Equal(t, "ACME", r.BySupplier[0].Supplier)
	assert.Equal(t, "4.5", r.BySupplier[0].Average.String())
	assert.Equal(t, 2, r.BySupplier[0].Rated)
	assert.Equal(t, "Beta", r.BySupplier[1].Supplier)
	assert.Equal(t, "2", r.BySupplier[1].Average.String())

	empty := core.ServiceOverview(nil)
	assert.Zero(t, empty.Rated)
	assert.Empty(t, empty.BySupplier)
}
