package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ========== EVENTS ==========

func (s *PayrollServiceImpl) CreateEvent(ctx context.Context, req payroll.CreateEventRequest) (payroll.Event, error) {
	if err := req.Validate(); err != nil {
		return payroll.Event{}, err
	}

	var event payroll.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		competence, err := s.openEvent(ctx, req.CompetenceID, req.EventDate)
		if err != nil {
			return err
		}

		event, err = s.eventRepo.Create(ctx, payroll.Event{
			CompetenceID: competence.ID,
			Type:         payroll.EventType(req.Type),
			Description:  req.Description,
			EventDate:    req.EventDate,
			Status:       payroll.StatusDraft,
			TotalAmount:  decimal.Zero,
			Notes:        req.Notes,
		})
		if err != nil {
			return err
		}

		if !req.AutoProcess {
			return nil
		}

		// Only the base salary is automatic; anything else is posted by hand.
		employees, err := s.competenceEmployees(ctx, competence.ID)
		if err != nil {
			return err
		}
		p := s.newPosting(event)
		for _, emp := range employees {
			if err := p.baseSalary(ctx, emp); err != nil {
				return err
			}
		}
		event, err = p.finish(ctx)
		return err
	})
	if err != nil {
		return payroll.Event{}, err
	}

	slog.Info("Created payment event", "id", event.ID, "type", event.Type, "competence_id", event.CompetenceID)
	return event, nil
}

// openEvent locks a draft competence and checks the event date falls in its month.
func (s *PayrollServiceImpl) openEvent(ctx context.Context, competenceID string, eventDate time.Time) (payroll.Competence, error) {
	competence, err := s.draftCompetence(ctx, competenceID, "add event to")
	if err != nil {
		return payroll.Competence{}, err
	}
	if !competence.Period().Contains(eventDate) {
		return payroll.Competence{}, payroll.ErrEventDateOutsideCompetence
	}
	return competence, nil
}

func (s *PayrollServiceImpl) CreateBulkAdvanceEvent(ctx context.Context, req payroll.BulkAdvanceRequest) (payroll.Event, error) {
	if err := req.Validate(); err != nil {
		return payroll.Event{}, err
	}

	var (
		event    payroll.Event
		advances int
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		competence, err := s.openEvent(ctx, req.CompetenceID, req.EventDate)
		if err != nil {
			return err
		}

		event, err = s.eventRepo.Create(ctx, payroll.Event{
			CompetenceID: competence.ID,
			Type:         payroll.EventTypeAdvance,
			Description:  req.Description,
			EventDate:    req.EventDate,
			Status:       payroll.StatusDraft,
			TotalAmount:  decimal.Zero,
		})
		if err != nil {
			return err
		}

		employees, err := s.competenceEmployees(ctx, competence.ID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, emp := range employees {
			if !req.Filter.Match(emp) {
				continue
			}

			var amount decimal.Decimal
			if req.Amount != nil {
				amount = req.Amount.Round(2)
			} else {
				amount = emp.BaseSalary.Mul(*req.Percentage).Div(hundred).Round(2)
			}
			if !amount.IsPositive() {
				slog.Debug("Skipped zero advance", "employee_id", emp.ID, "event_id", event.ID)
				continue
			}

			eventID := event.ID
			if _, err := s.advanceRepo.Create(ctx, employee.Advance{
				EmployeeID: emp.ID,
				EventID:    &eventID,
				Date:       req.EventDate,
				Amount:     amount,
				Status:     employee.AdvanceStatusPending,
				Notes:      req.Description,
			}); err != nil {
				return fmt.Errorf("failed to create advance for %s: %w", emp.ID, err)
			}
			total = total.Add(amount)
			advances++
		}

		event.TotalAmount = total.Round(2)
		return s.eventRepo.UpdateTotal(ctx, event.ID, event.TotalAmount)
	})
	if err != nil {
		return payroll.Event{}, err
	}

	slog.Info("Created advance event", "id", event.ID, "advances", advances, "total", event.TotalAmount)
	return event, nil
}

func (s *PayrollServiceImpl) CreateThirteenthSalaryEvent(ctx context.Context, req payroll.ThirteenthSalaryRequest) (payroll.Event, error) {
	if err := req.Validate(); err != nil {
		return payroll.Event{}, err
	}

	factor := s.cfg.ThirteenthFirstInstallmentFactor
	if req.Installment == 2 {
		factor = s.cfg.ThirteenthSecondInstallmentFactor
	}

	var event payroll.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		competence, err := s.openEvent(ctx, req.CompetenceID, req.EventDate)
		if err != nil {
			return err
		}

		event, err = s.eventRepo.Create(ctx, payroll.Event{
			CompetenceID: competence.ID,
			Type:         payroll.EventTypeThirteenthSalary,
			Description:  req.Description,
			EventDate:    req.EventDate,
			Status:       payroll.StatusDraft,
			TotalAmount:  decimal.Zero,
		})
		if err != nil {
			return err
		}

		employees, err := s.competenceEmployees(ctx, competence.ID)
		if err != nil {
			return err
		}

		p := s.newPosting(event)
		thirteenth, err := p.component(ctx, catalog.CodeThirteenthSalary)
		if err != nil {
			return err
		}
		justification := fmt.Sprintf("13th salary - installment %d", req.Installment)
		for _, emp := range employees {
			amount := emp.BaseSalary.Mul(factor).Round(2)
			if !amount.IsPositive() {
				continue
			}
			if _, err := p.add(ctx, payroll.LineItem{
				EmployeeID:     emp.ID,
				PayComponentID: thirteenth.ID,
				Amount:         amount,
				Justification:  justification,
			}); err != nil {
				return err
			}
		}
		event, err = p.finish(ctx)
		return err
	})
	if err != nil {
		return payroll.Event{}, err
	}

	slog.Info("Created thirteenth salary event", "id", event.ID, "installment", req.Installment, "total", event.TotalAmount)
	return event, nil
}

func (s *PayrollServiceImpl) GetEvent(ctx context.Context, id string) (payroll.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *PayrollServiceImpl) ListEvents(ctx context.Context, competenceID string) ([]payroll.Event, error) {
	if _, err := s.competenceRepo.GetByID(ctx, competenceID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByCompetence(ctx, competenceID)
}
