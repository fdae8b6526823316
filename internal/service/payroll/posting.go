package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// posting collects the line items written to one event inside a
// transaction, so summaries and the event total are refreshed once at the end.
type posting struct {
	s          *PayrollServiceImpl
	event      payroll.Event
	components map[string]catalog.PayComponent
	touched    []string
	seen       map[string]bool
}

func (s *PayrollServiceImpl) newPosting(event payroll.Event) *posting {
	return &posting{
		s:          s,
		event:      event,
		components: make(map[string]catalog.PayComponent),
		seen:       make(map[string]bool),
	}
}

// component resolves a seeded system component by code.
func (p *posting) component(ctx context.Context, code string) (catalog.PayComponent, error) {
	if c, ok := p.components[code]; ok {
		return c, nil
	}
	c, err := p.s.componentRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrPayComponentNotFound) {
			return catalog.PayComponent{}, fmt.Errorf("%w: %s", catalog.ErrSystemComponentMissing, code)
		}
		return catalog.PayComponent{}, err
	}
	p.components[code] = c
	return c, nil
}

func (p *posting) add(ctx context.Context, item payroll.LineItem) (payroll.LineItem, error) {
	item.EventID = p.event.ID
	item.CompetenceID = p.event.CompetenceID
	created, err := p.s.lineItemRepo.Create(ctx, item)
	if err != nil {
		return payroll.LineItem{}, err
	}
	if !p.seen[item.EmployeeID] {
		p.seen[item.EmployeeID] = true
		p.touched = append(p.touched, item.EmployeeID)
	}
	return created, nil
}

func (p *posting) baseSalary(ctx context.Context, emp employee.Employee) error {
	salary, err := p.component(ctx, catalog.CodeBaseSalary)
	if err != nil {
		return err
	}
	_, err = p.add(ctx, payroll.LineItem{
		EmployeeID:     emp.ID,
		PayComponentID: salary.ID,
		Amount:         emp.BaseSalary.Round(2),
		Justification:  "Monthly base salary",
	})
	return err
}

// fixedTerms posts one valuated fixed entry; zero values are skipped.
func (p *posting) fixedTerms(ctx context.Context, emp employee.Employee, component *catalog.PayComponent, terms catalog.FixedTerms, justification string) error {
	if component == nil {
		return catalog.ErrPayComponentNotFound
	}
	amount, base := terms.Valuate(component.Basis, emp.BaseSalary)
	if !amount.IsPositive() {
		slog.Debug("Skipped zero fixed entry", "employee_id", emp.ID, "component", component.Code)
		return nil
	}
	_, err := p.add(ctx, payroll.LineItem{
		EmployeeID:      emp.ID,
		PayComponentID:  component.ID,
		Amount:          amount,
		CalculationBase: base,
		Justification:   justification,
	})
	return err
}

func (p *posting) generalEntries(ctx context.Context, emp employee.Employee, entries []catalog.GeneralFixedEntry) error {
	for _, entry := range entries {
		if err := p.fixedTerms(ctx, emp, entry.Component, entry.FixedTerms, "General fixed entry - "+entry.Notes); err != nil {
			return err
		}
	}
	return nil
}

func (p *posting) employeeFixedEntries(ctx context.Context, emp employee.Employee, period payroll.Period) error {
	entries, err := p.s.fixedEntryRepo.ListActiveForEmployee(ctx, emp.ID, period.Start(), period.End())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := p.fixedTerms(ctx, emp, entry.Component, entry.FixedTerms, "Fixed entry - "+entry.Notes); err != nil {
			return err
		}
	}
	return nil
}

// advances deducts every pending advance of the employee. An advance that
// another transaction deducted first is skipped.
func (p *posting) advances(ctx context.Context, emp employee.Employee) (int, error) {
	pending, err := p.s.advanceRepo.ListPendingByEmployee(ctx, emp.ID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	deduction, err := p.component(ctx, catalog.CodeAdvanceDeduction)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, advance := range pending {
		if err := p.s.advanceRepo.MarkDeducted(ctx, advance.ID); err != nil {
			if errors.Is(err, employee.ErrAdvanceNotPending) {
				slog.Warn("Advance no longer pending, not swept", "advance_id", advance.ID, "employee_id", emp.ID)
				continue
			}
			return swept, err
		}

		advanceID := advance.ID
		if _, err := p.add(ctx, payroll.LineItem{
			EmployeeID:     emp.ID,
			PayComponentID: deduction.ID,
			Amount:         advance.Amount.Round(2),
			Justification:  "Advance of " + advance.Date.Format("2006-01-02"),
			AdvanceID:      &advanceID,
		}); err != nil {
			return swept, err
		}
		swept++
	}
	return swept, nil
}

// finish refreshes the summary of every touched employee and the event total.
func (p *posting) finish(ctx context.Context) (payroll.Event, error) {
	for _, employeeID := range p.touched {
		if _, err := p.s.refreshSummary(ctx, p.event.CompetenceID, employeeID); err != nil {
			return payroll.Event{}, err
		}
	}
	total, err := p.s.recomputeTotal(ctx, p.event)
	if err != nil {
		return payroll.Event{}, err
	}
	p.event.TotalAmount = total
	return p.event, nil
}

// refreshSummary rescans the employee line items of the competence.
func (s *PayrollServiceImpl) refreshSummary(ctx context.Context, competenceID, employeeID string) (payroll.EmployeeSummary, error) {
	totals, err := s.lineItemRepo.Totals(ctx, payroll.LineItemFilter{CompetenceID: &competenceID, EmployeeID: &employeeID})
	if err != nil {
		return payroll.EmployeeSummary{}, err
	}
	return s.summaryRepo.Upsert(ctx, payroll.EmployeeSummary{
		CompetenceID: competenceID,
		EmployeeID:   employeeID,
		TotalCredits: totals.Credits,
		TotalDebits:  totals.Debits,
		Net:          totals.Net,
	})
}

// recomputeTotal stores the line-item net of the event. Advance events also
// count the advances they disbursed.
func (s *PayrollServiceImpl) recomputeTotal(ctx context.Context, event payroll.Event) (decimal.Decimal, error) {
	totals, err := s.lineItemRepo.Totals(ctx, payroll.LineItemFilter{EventID: &event.ID})
	if err != nil {
		return decimal.Zero, err
	}
	total := totals.Net
	if event.Type == payroll.EventTypeAdvance {
		disbursed, err := s.advanceRepo.SumByEvent(ctx, event.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(disbursed)
	}
	total = total.Round(2)

	if err := s.eventRepo.UpdateTotal(ctx, event.ID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ========== MANUAL LINE ITEMS ==========

func (s *PayrollServiceImpl) AddManualLineItem(ctx context.Context, req payroll.AddLineItemRequest) (payroll.LineItem, error) {
	if err := req.Validate(); err != nil {
		return payroll.LineItem{}, err
	}

	var created payroll.LineItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		event, err := s.targetEvent(ctx, req)
		if err != nil {
			return err
		}

		if _, err := s.componentRepo.GetByID(ctx, req.PayComponentID); err != nil {
			return err
		}

		p := s.newPosting(event)
		created, err = p.add(ctx, payroll.LineItem{
			EmployeeID:      req.EmployeeID,
			PayComponentID:  req.PayComponentID,
			Amount:          req.Amount.Round(2),
			CalculationBase: req.CalculationBase,
			Justification:   req.Justification,
		})
		if err != nil {
			return err
		}
		_, err = p.finish(ctx)
		return err
	})
	if err != nil {
		return payroll.LineItem{}, err
	}

	slog.Info("Posted line item", "event_id", created.EventID, "employee_id", created.EmployeeID, "amount", created.Amount)
	return created, nil
}

// targetEvent resolves the draft event a manual item goes to. Without an
// event id, the first final payment event of the competence is used and
// created when missing.
func (s *PayrollServiceImpl) targetEvent(ctx context.Context, req payroll.AddLineItemRequest) (payroll.Event, error) {
	if req.EventID != nil {
		return s.draftEvent(ctx, *req.EventID, "post to")
	}

	competence, err := s.competenceRepo.GetByIDForUpdate(ctx, *req.CompetenceID)
	if err != nil {
		return payroll.Event{}, err
	}

	event, err := s.eventRepo.FindFirstByType(ctx, competence.ID, payroll.EventTypeFinalPayment)
	switch {
	case err == nil:
		return s.draftEvent(ctx, event.ID, "post to")
	case !errors.Is(err, payroll.ErrEventNotFound):
		return payroll.Event{}, err
	}

	if err := competence.RequireDraft("add event to"); err != nil {
		return payroll.Event{}, err
	}
	return s.createDefaultEvent(ctx, competence)
}

func (s *PayrollServiceImpl) RemoveLineItem(ctx context.Context, id string) error {
	var item payroll.LineItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.lineItemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		event, err := s.draftEvent(ctx, item.EventID, "remove line item from")
		if err != nil {
			return err
		}

		if err := s.lineItemRepo.Delete(ctx, id); err != nil {
			return err
		}
		if item.AdvanceID != nil {
			if err := s.advanceRepo.MarkPending(ctx, *item.AdvanceID); err != nil {
				return err
			}
		}

		if _, err := s.refreshSummary(ctx, item.CompetenceID, item.EmployeeID); err != nil {
			return err
		}
		_, err = s.recomputeTotal(ctx, event)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("Removed line item", "id", id, "event_id", item.EventID, "employee_id", item.EmployeeID)
	return nil
}

func (s *PayrollServiceImpl) ListLineItems(ctx context.Context, filter payroll.LineItemFilter) ([]payroll.LineItem, error) {
	return s.lineItemRepo.List(ctx, filter)
}
