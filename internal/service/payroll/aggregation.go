package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetCompetence(ctx context.Context, id string) (payroll.Competence, error) {
	return s.competenceRepo.GetByID(ctx, id)
}

func (s *PayrollServiceImpl) GetCompetenceByPeriod(ctx context.Context, month, year int) (payroll.Competence, error) {
	if _, err := payroll.NewPeriod(month, year); err != nil {
		return payroll.Competence{}, err
	}
	return s.competenceRepo.GetByPeriod(ctx, month, year)
}

func (s *PayrollServiceImpl) ListCompetences(ctx context.Context, filter payroll.CompetenceFilter) ([]payroll.Competence, error) {
	return s.competenceRepo.List(ctx, filter)
}

func (s *PayrollServiceImpl) ListEligibleEmployees(ctx context.Context, competenceID string) ([]employee.Employee, error) {
	return s.competenceEmployees(ctx, competenceID)
}

// ========== AGGREGATION ==========

func (s *PayrollServiceImpl) CompetenceTotals(ctx context.Context, competenceID string) (payroll.Totals, error) {
	if _, err := s.competenceRepo.GetByID(ctx, competenceID); err != nil {
		return payroll.Totals{}, err
	}
	return s.lineItemRepo.Totals(ctx, payroll.LineItemFilter{CompetenceID: &competenceID})
}

func (s *PayrollServiceImpl) EventTotals(ctx context.Context, eventID string) (payroll.Totals, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return payroll.Totals{}, err
	}
	return s.lineItemRepo.Totals(ctx, payroll.LineItemFilter{EventID: &eventID})
}

func (s *PayrollServiceImpl) RefreshEmployeeSummary(ctx context.Context, competenceID, employeeID string) (payroll.EmployeeSummary, error) {
	var summary payroll.EmployeeSummary
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.competenceRepo.GetByID(ctx, competenceID); err != nil {
			return err
		}
		var err error
		summary, err = s.refreshSummary(ctx, competenceID, employeeID)
		return err
	})
	if err != nil {
		return payroll.EmployeeSummary{}, err
	}
	return summary, nil
}

func (s *PayrollServiceImpl) ListSummaries(ctx context.Context, competenceID string) ([]payroll.EmployeeSummary, error) {
	if _, err := s.competenceRepo.GetByID(ctx, competenceID); err != nil {
		return nil, err
	}
	return s.summaryRepo.ListByCompetence(ctx, competenceID)
}

// GetOverview splits event totals into paid and still pending; cancelled
// events count in neither.
func (s *PayrollServiceImpl) GetOverview(ctx context.Context, competenceID string) (payroll.CompetenceOverview, error) {
	competence, err := s.competenceRepo.GetByID(ctx, competenceID)
	if err != nil {
		return payroll.CompetenceOverview{}, err
	}

	totals, err := s.lineItemRepo.Totals(ctx, payroll.LineItemFilter{CompetenceID: &competenceID})
	if err != nil {
		return payroll.CompetenceOverview{}, err
	}

	events, err := s.eventRepo.ListByCompetence(ctx, competenceID)
	if err != nil {
		return payroll.CompetenceOverview{}, err
	}

	employees, err := s.competenceEmployees(ctx, competenceID)
	if err != nil {
		return payroll.CompetenceOverview{}, err
	}

	paid, pending := decimal.Zero, decimal.Zero
	for _, e := range events {
		switch e.Status {
		case payroll.StatusPaid:
			paid = paid.Add(e.TotalAmount)
		case payroll.StatusCancelled:
		default:
			pending = pending.Add(e.TotalAmount)
		}
	}

	return payroll.CompetenceOverview{
		Competence:    competence,
		Totals:        totals,
		EventCount:    len(events),
		EmployeeCount: len(employees),
		PaidTotal:     paid,
		PendingTotal:  pending,
	}, nil
}
