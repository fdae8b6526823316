package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type PayrollServiceImpl struct {
	tx               database.Transactor
	competenceRepo   payroll.CompetenceRepository
	eventRepo        payroll.EventRepository
	lineItemRepo     payroll.LineItemRepository
	summaryRepo      payroll.SummaryRepository
	componentRepo    catalog.PayComponentRepository
	generalEntryRepo catalog.GeneralFixedEntryRepository
	contractRepo     employee.ContractRepository
	fixedEntryRepo   employee.FixedEntryRepository
	advanceRepo      employee.AdvanceRepository
	cfg              config.PayrollConfig
	now              func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	competenceRepo payroll.CompetenceRepository,
	eventRepo payroll.EventRepository,
	lineItemRepo payroll.LineItemRepository,
	summaryRepo payroll.SummaryRepository,
	componentRepo catalog.PayComponentRepository,
	generalEntryRepo catalog.GeneralFixedEntryRepository,
	contractRepo employee.ContractRepository,
	fixedEntryRepo employee.FixedEntryRepository,
	advanceRepo employee.AdvanceRepository,
	cfg config.PayrollConfig,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:               tx,
		competenceRepo:   competenceRepo,
		eventRepo:        eventRepo,
		lineItemRepo:     lineItemRepo,
		summaryRepo:      summaryRepo,
		componentRepo:    componentRepo,
		generalEntryRepo: generalEntryRepo,
		contractRepo:     contractRepo,
		fixedEntryRepo:   fixedEntryRepo,
		advanceRepo:      advanceRepo,
		cfg:              cfg,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// today truncates the service clock to a calendar date.
func (s *PayrollServiceImpl) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// competenceEmployees returns the employees of the persisted eligible set,
// each one once even when two of their contracts overlap the month.
func (s *PayrollServiceImpl) competenceEmployees(ctx context.Context, competenceID string) ([]employee.Employee, error) {
	eligible, err := s.competenceRepo.ListEligible(ctx, competenceID)
	if err != nil {
		return nil, err
	}
	return uniqueEmployees(eligible), nil
}

func uniqueEmployees(eligible []employee.EligibleContract) []employee.Employee {
	seen := make(map[string]bool, len(eligible))
	employees := make([]employee.Employee, 0, len(eligible))
	for _, ec := range eligible {
		if seen[ec.Employee.ID] {
			continue
		}
		seen[ec.Employee.ID] = true
		employees = append(employees, ec.Employee)
	}
	return employees
}

// draftCompetence locks the competence and requires it to accept new events.
func (s *PayrollServiceImpl) draftCompetence(ctx context.Context, id, op string) (payroll.Competence, error) {
	competence, err := s.competenceRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return payroll.Competence{}, err
	}
	if err := competence.RequireDraft(op); err != nil {
		return payroll.Competence{}, err
	}
	return competence, nil
}

// draftEvent locks the event and requires it to accept postings.
func (s *PayrollServiceImpl) draftEvent(ctx context.Context, id, op string) (payroll.Event, error) {
	event, err := s.eventRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return payroll.Event{}, err
	}
	if err := event.RequireDraft(op); err != nil {
		return payroll.Event{}, err
	}
	return event, nil
}
