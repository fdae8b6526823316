package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ========== PAYROLL GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.Competence, error) {
	if err := req.Validate(); err != nil {
		return payroll.Competence{}, err
	}
	period, _ := payroll.NewPeriod(req.Month, req.Year)

	var (
		competence payroll.Competence
		employees  int
		total      decimal.Decimal
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		competence, err = s.competenceRepo.Create(ctx, payroll.Competence{
			Month:  period.Month,
			Year:   period.Year,
			Status: payroll.StatusDraft,
			Notes:  req.Notes,
		})
		if err != nil {
			return err
		}

		eligible, err := s.contractRepo.ListEligible(ctx, period.Start(), period.End())
		if err != nil {
			return err
		}
		contractIDs := make([]string, len(eligible))
		for i, ec := range eligible {
			contractIDs[i] = ec.ContractID
		}
		if err := s.competenceRepo.AttachContracts(ctx, competence.ID, contractIDs); err != nil {
			return err
		}

		if !req.CreateDefaultEvent {
			return nil
		}

		event, err := s.createDefaultEvent(ctx, competence)
		if err != nil {
			return err
		}

		generalEntries, err := s.generalEntryRepo.ListActiveDuring(ctx, period.Start(), period.End())
		if err != nil {
			return err
		}

		p := s.newPosting(event)
		for _, emp := range uniqueEmployees(eligible) {
			if err := p.baseSalary(ctx, emp); err != nil {
				return fmt.Errorf("failed to post base salary of %s: %w", emp.ID, err)
			}
			if err := p.generalEntries(ctx, emp, generalEntries); err != nil {
				return fmt.Errorf("failed to post general entries of %s: %w", emp.ID, err)
			}
			if err := p.employeeFixedEntries(ctx, emp, period); err != nil {
				return fmt.Errorf("failed to post fixed entries of %s: %w", emp.ID, err)
			}
			if _, err := p.advances(ctx, emp); err != nil {
				return fmt.Errorf("failed to deduct advances of %s: %w", emp.ID, err)
			}
			employees++
		}

		event, err = p.finish(ctx)
		if err != nil {
			return err
		}
		total = event.TotalAmount
		return nil
	})
	if err != nil {
		return payroll.Competence{}, err
	}

	slog.Info("Payroll generated",
		"competence_id", competence.ID,
		"month", competence.Month,
		"year", competence.Year,
		"employees", employees,
		"total", total,
	)
	return competence, nil
}

// createDefaultEvent opens the final payment event dated on the last day of the month.
func (s *PayrollServiceImpl) createDefaultEvent(ctx context.Context, competence payroll.Competence) (payroll.Event, error) {
	period := competence.Period()
	return s.eventRepo.Create(ctx, payroll.Event{
		CompetenceID: competence.ID,
		Type:         payroll.EventTypeFinalPayment,
		Description:  "Final Payment " + period.String(),
		EventDate:    period.LastDay(),
		Status:       payroll.StatusDraft,
		TotalAmount:  decimal.Zero,
	})
}
