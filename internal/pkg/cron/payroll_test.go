package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayrollService(t *testing.T) payroll.PayrollService {
	t.Helper()
	store := memory.NewStore()
	components := memory.NewPayComponentRepository(store)
	_, err := fixtures.SeedPayComponents(context.Background(), components)
	require.NoError(t, err)

	return payrollService.NewPayrollService(
		store,
		memory.NewCompetenceRepository(store),
		memory.NewEventRepository(store),
		memory.NewLineItemRepository(store),
		memory.NewSummaryRepository(store),
		components,
		memory.NewGeneralFixedEntryRepository(store),
		memory.NewContractRepository(store),
		memory.NewFixedEntryRepository(store),
		memory.NewAdvanceRepository(store),
		config.DefaultPayrollConfig(),
	)
}

func TestPayrollJobs_GenerateCurrentCompetence(t *testing.T) {
	ctx := context.Background()
	svc := newPayrollService(t)
	jobs := NewPayrollJobs(svc)
	jobs.now = func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }

	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler, time.Hour)
	scheduler.RunOnce(ctx)
	scheduler.RunOnce(ctx)

	competences, err := svc.ListCompetences(ctx, payroll.CompetenceFilter{})
	require.NoError(t, err)
	require.Len(t, competences, 1)
	assert.Equal(t, 3, competences[0].Month)
	assert.Equal(t, 2025, competences[0].Year)

	events, err := svc.ListEvents(ctx, competences[0].ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestScheduler_RunStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	ran := make(chan struct{}, 1)

	scheduler := NewScheduler()
	scheduler.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	<-ran
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), calls.Load())
}
