package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

// ========== COMPETENCE LIFECYCLE ==========

// transitionCompetence applies move to the locked competence and persists
// the result; a refused move leaves the row untouched.
func (s *PayrollServiceImpl) transitionCompetence(ctx context.Context, id string, move func(*payroll.Competence) error) (payroll.Competence, error) {
	var competence payroll.Competence
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		competence, err = s.competenceRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := move(&competence); err != nil {
			return err
		}
		return s.competenceRepo.UpdateStatus(ctx, competence)
	})
	if err != nil {
		return payroll.Competence{}, err
	}

	slog.Info("Competence status changed", "id", competence.ID, "period", competence.Period().String(), "status", competence.Status)
	return competence, nil
}

func (s *PayrollServiceImpl) CloseCompetence(ctx context.Context, id string) (payroll.Competence, error) {
	return s.transitionCompetence(ctx, id, func(c *payroll.Competence) error {
		return c.Close(s.now())
	})
}

func (s *PayrollServiceImpl) ReopenCompetence(ctx context.Context, id string) (payroll.Competence, error) {
	return s.transitionCompetence(ctx, id, (*payroll.Competence).Reopen)
}

func (s *PayrollServiceImpl) MarkCompetencePaid(ctx context.Context, id string) (payroll.Competence, error) {
	return s.transitionCompetence(ctx, id, (*payroll.Competence).MarkPaid)
}

func (s *PayrollServiceImpl) CancelCompetence(ctx context.Context, id string) (payroll.Competence, error) {
	return s.transitionCompetence(ctx, id, (*payroll.Competence).Cancel)
}

// DeleteCompetence removes a draft or cancelled competence with everything it
// owns. Advances its line items deducted go back to pending first.
func (s *PayrollServiceImpl) DeleteCompetence(ctx context.Context, id string) error {
	reverted := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		competence, err := s.competenceRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := competence.CanDelete(); err != nil {
			return err
		}

		items, err := s.lineItemRepo.List(ctx, payroll.LineItemFilter{CompetenceID: &id})
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.AdvanceID == nil {
				continue
			}
			if err := s.advanceRepo.MarkPending(ctx, *item.AdvanceID); err != nil {
				return err
			}
			reverted++
		}

		return s.competenceRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("Deleted competence", "id", id, "advances_reverted", reverted)
	return nil
}

// ========== EVENT LIFECYCLE ==========

func (s *PayrollServiceImpl) transitionEvent(ctx context.Context, id string, move func(context.Context, *payroll.Event) error) (payroll.Event, error) {
	var event payroll.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := move(ctx, &event); err != nil {
			return err
		}
		return s.eventRepo.Update(ctx, event)
	})
	if err != nil {
		return payroll.Event{}, err
	}

	slog.Info("Event status changed", "id", event.ID, "type", event.Type, "status", event.Status, "total", event.TotalAmount)
	return event, nil
}

// CloseEvent freezes a draft event with a fresh total. With SweepAdvances
// set, a final payment event first deducts the advances still pending.
func (s *PayrollServiceImpl) CloseEvent(ctx context.Context, req payroll.CloseEventRequest) (payroll.Event, error) {
	return s.transitionEvent(ctx, req.ID, func(ctx context.Context, event *payroll.Event) error {
		if err := event.RequireDraft("close"); err != nil {
			return err
		}

		if req.SweepAdvances && event.Type == payroll.EventTypeFinalPayment {
			if _, err := s.sweep(ctx, *event); err != nil {
				return err
			}
		}

		total, err := s.recomputeTotal(ctx, *event)
		if err != nil {
			return err
		}
		event.TotalAmount = total
		return event.Close()
	})
}

func (s *PayrollServiceImpl) ReopenEvent(ctx context.Context, id string) (payroll.Event, error) {
	return s.transitionEvent(ctx, id, func(_ context.Context, event *payroll.Event) error {
		return event.Reopen()
	})
}

// MarkEventPaid records the payment date, today when none is given.
func (s *PayrollServiceImpl) MarkEventPaid(ctx context.Context, req payroll.MarkEventPaidRequest) (payroll.Event, error) {
	paymentDate := s.today()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	return s.transitionEvent(ctx, req.ID, func(_ context.Context, event *payroll.Event) error {
		return event.MarkPaid(paymentDate)
	})
}

// CancelEvent also cancels the advances an advance event disbursed, so no
// later sweep deducts money that was never paid.
func (s *PayrollServiceImpl) CancelEvent(ctx context.Context, id string) (payroll.Event, error) {
	return s.transitionEvent(ctx, id, func(ctx context.Context, event *payroll.Event) error {
		if err := event.Cancel(); err != nil {
			return err
		}
		if event.Type != payroll.EventTypeAdvance {
			return nil
		}
		return s.cancelEventAdvances(ctx, event.ID)
	})
}

func (s *PayrollServiceImpl) cancelEventAdvances(ctx context.Context, eventID string) error {
	advances, err := s.advanceRepo.List(ctx, employee.AdvanceFilter{EventID: &eventID})
	if err != nil {
		return err
	}

	var pending []string
	for _, a := range advances {
		switch a.Status {
		case employee.AdvanceStatusDeducted:
			return fmt.Errorf("%w: advance %s", payroll.ErrAdvancesDeducted, a.ID)
		case employee.AdvanceStatusPending:
			pending = append(pending, a.ID)
		}
	}

	for _, id := range pending {
		if err := s.advanceRepo.Cancel(ctx, id); err != nil {
			return fmt.Errorf("failed to cancel advance %s: %w", id, err)
		}
	}
	slog.Info("Cancelled event advances", "event_id", eventID, "count", len(pending))
	return nil
}

// ========== ADVANCE SWEEP ==========

func (s *PayrollServiceImpl) SweepPendingAdvances(ctx context.Context, eventID string) (int, error) {
	var swept int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		event, err := s.draftEvent(ctx, eventID, "sweep advances into")
		if err != nil {
			return err
		}
		swept, err = s.sweep(ctx, event)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Swept pending advances", "event_id", eventID, "deducted", swept)
	return swept, nil
}

// sweep deducts, inside event, the pending advances of every competence employee.
func (s *PayrollServiceImpl) sweep(ctx context.Context, event payroll.Event) (int, error) {
	employees, err := s.competenceEmployees(ctx, event.CompetenceID)
	if err != nil {
		return 0, err
	}

	p := s.newPosting(event)
	count := 0
	for _, emp := range employees {
		n, err := p.advances(ctx, emp)
		if err != nil {
			return count, err
		}
		count += n
	}

	if _, err := p.finish(ctx); err != nil {
		return count, err
	}
	return count, nil
}

func (s *PayrollServiceImpl) RecomputeEventTotal(ctx context.Context, eventID string) (payroll.Event, error) {
	var event payroll.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		event.TotalAmount, err = s.recomputeTotal(ctx, event)
		return err
	})
	if err != nil {
		return payroll.Event{}, err
	}
	return event, nil
}
