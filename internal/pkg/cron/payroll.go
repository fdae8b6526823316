package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RegisterJobs registers all payroll-related cron jobs
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("generate_current_competence", interval, j.GenerateCurrentCompetence)
}

// GenerateCurrentCompetence generates the payroll of the current month,
// with its default event, unless it already exists.
func (j *PayrollJobs) GenerateCurrentCompetence(ctx context.Context) error {
	now := j.now()
	month, year := int(now.Month()), now.Year()

	_, err := j.payrollService.GetCompetenceByPeriod(ctx, month, year)
	if err == nil {
		return nil
	}
	if !errors.Is(err, payroll.ErrCompetenceNotFound) {
		return err
	}

	competence, err := j.payrollService.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{
		Month:              month,
		Year:               year,
		CreateDefaultEvent: true,
	})
	if errors.Is(err, payroll.ErrDuplicateCompetence) {
		// Another instance got there first.
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Scheduled payroll generated", "competence_id", competence.ID, "month", month, "year", year)
	return nil
}
