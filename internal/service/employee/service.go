package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	tx             database.Transactor
	employeeRepo   employee.EmployeeRepository
	contractRepo   employee.ContractRepository
	fixedEntryRepo employee.FixedEntryRepository
	advanceRepo    employee.AdvanceRepository
	vacationRepo   employee.VacationRepository
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	contractRepo employee.ContractRepository,
	fixedEntryRepo employee.FixedEntryRepository,
	advanceRepo employee.AdvanceRepository,
	vacationRepo employee.VacationRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:             tx,
		employeeRepo:   employeeRepo,
		contractRepo:   contractRepo,
		fixedEntryRepo: fixedEntryRepo,
		advanceRepo:    advanceRepo,
		vacationRepo:   vacationRepo,
	}
}

// ========== EMPLOYEES ==========

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	status := employee.StatusActive
	if req.Status != "" {
		status = employee.Status(req.Status)
	}
	inPayroll := true
	if req.InPayroll != nil {
		inPayroll = *req.InPayroll
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		FullName:      strings.TrimSpace(req.FullName),
		TaxID:         validator.NormalizeCPF(req.TaxID),
		Email:         req.Email,
		BaseSalary:    req.BaseSalary.Round(2),
		Status:        status,
		InPayroll:     inPayroll,
		AdmissionDate: req.AdmissionDate,
		Sector:        req.Sector,
		Role:          req.Role,
		SuperiorID:    req.SuperiorID,
		Notes:         req.Notes,
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("Created employee", "employee_id", created.ID, "in_payroll", created.InPayroll)
	return created, nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return s.employeeRepo.List(ctx, filter)
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	var updated employee.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.employeeRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.FullName != nil {
			current.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Email != nil {
			current.Email = req.Email
		}
		if req.BaseSalary != nil {
			current.BaseSalary = req.BaseSalary.Round(2)
		}
		if req.Status != nil {
			current.Status = employee.Status(*req.Status)
		}
		if req.InPayroll != nil {
			current.InPayroll = *req.InPayroll
		}
		if req.Sector != nil {
			current.Sector = req.Sector
		}
		if req.Role != nil {
			current.Role = req.Role
		}
		if req.ClearSuperior {
			current.SuperiorID = nil
		} else if req.SuperiorID != nil {
			current.SuperiorID = req.SuperiorID
		}
		if req.Notes != nil {
			current.Notes = req.Notes
		}

		updated, err = s.employeeRepo.Update(ctx, current)
		return err
	})
	if err != nil {
		return employee.Employee{}, err
	}

	return updated, nil
}

func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Deleted employee", "employee_id", id)
	return nil
}

// ========== CONTRACTS ==========

// checkOverlap fails when candidate shares a day with another contract of
// the same employee. The caller must hold the employee row lock.
func (s *EmployeeServiceImpl) checkOverlap(ctx context.Context, candidate employee.Contract) error {
	existing, err := s.contractRepo.ListByEmployee(ctx, candidate.EmployeeID)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c.ID != candidate.ID && c.Overlaps(candidate) {
			return employee.ErrContractOverlap
		}
	}
	return nil
}

func (s *EmployeeServiceImpl) CreateContract(ctx context.Context, req employee.CreateContractRequest) (employee.Contract, error) {
	if err := req.Validate(); err != nil {
		return employee.Contract{}, err
	}

	contract := employee.Contract{
		EmployeeID:   req.EmployeeID,
		ContractType: strings.TrimSpace(req.ContractType),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		WeeklyHours:  req.WeeklyHours,
		Notes:        req.Notes,
	}

	var created employee.Contract
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByIDForUpdate(ctx, req.EmployeeID); err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, contract); err != nil {
			return err
		}

		var err error
		created, err = s.contractRepo.Create(ctx, contract)
		return err
	})
	if err != nil {
		return employee.Contract{}, err
	}

	return created, nil
}

func (s *EmployeeServiceImpl) GetContract(ctx context.Context, id string) (employee.Contract, error) {
	return s.contractRepo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) ListContracts(ctx context.Context, employeeID string) ([]employee.Contract, error) {
	return s.contractRepo.ListByEmployee(ctx, employeeID)
}

func (s *EmployeeServiceImpl) UpdateContract(ctx context.Context, req employee.UpdateContractRequest) (employee.Contract, error) {
	if err := req.Validate(); err != nil {
		return employee.Contract{}, err
	}

	var updated employee.Contract
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.contractRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if _, err := s.employeeRepo.GetByIDForUpdate(ctx, current.EmployeeID); err != nil {
			return err
		}

		if req.ContractType != nil {
			current.ContractType = strings.TrimSpace(*req.ContractType)
		}
		if req.StartDate != nil {
			current.StartDate = *req.StartDate
		}
		if req.ClearEndDate {
			current.EndDate = nil
		} else if req.EndDate != nil {
			current.EndDate = req.EndDate
		}
		if req.WeeklyHours != nil {
			current.WeeklyHours = *req.WeeklyHours
		}
		if req.Notes != nil {
			current.Notes = req.Notes
		}

		if current.EndDate != nil && current.EndDate.Before(current.StartDate) {
			return validator.Field("end_date", "must not be before start_date")
		}
		if err := s.checkOverlap(ctx, current); err != nil {
			return err
		}

		updated, err = s.contractRepo.Update(ctx, current)
		return err
	})
	if err != nil {
		return employee.Contract{}, err
	}

	return updated, nil
}

func (s *EmployeeServiceImpl) DeleteContract(ctx context.Context, id string) error {
	return s.contractRepo.Delete(ctx, id)
}

func (s *EmployeeServiceImpl) ActiveContract(ctx context.Context, employeeID string, day time.Time) (employee.Contract, error) {
	contracts, err := s.contractRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return employee.Contract{}, err
	}
	for _, c := range contracts {
		if c.ActiveOn(day) {
			return c, nil
		}
	}
	return employee.Contract{}, employee.ErrNoActiveContract
}

// ========== FIXED ENTRIES ==========

func (s *EmployeeServiceImpl) CreateFixedEntry(ctx context.Context, req employee.CreateFixedEntryRequest) (employee.FixedEntry, error) {
	if err := req.Validate(); err != nil {
		return employee.FixedEntry{}, err
	}

	return s.fixedEntryRepo.Create(ctx, employee.FixedEntry{
		EmployeeID:     req.EmployeeID,
		PayComponentID: req.PayComponentID,
		FixedTerms:     req.Terms(),
		Notes:          req.Notes,
	})
}

func (s *EmployeeServiceImpl) GetFixedEntry(ctx context.Context, id string) (employee.FixedEntry, error) {
	return s.fixedEntryRepo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) ListFixedEntries(ctx context.Context, filter employee.FixedEntryFilter) ([]employee.FixedEntry, error) {
	return s.fixedEntryRepo.List(ctx, filter)
}

func (s *EmployeeServiceImpl) UpdateFixedEntry(ctx context.Context, req employee.UpdateFixedEntryRequest) (employee.FixedEntry, error) {
	if err := req.Validate(); err != nil {
		return employee.FixedEntry{}, err
	}

	current, err := s.fixedEntryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.FixedEntry{}, err
	}

	terms := catalog.MergeTerms(current.FixedTerms, req.Amount, req.Percentage, req.ActiveFrom, req.ActiveUntil, req.ClearActiveUntil)
	if err := terms.Validate(); err != nil {
		return employee.FixedEntry{}, err
	}
	current.FixedTerms = terms
	if req.Notes != nil {
		current.Notes = *req.Notes
	}

	return s.fixedEntryRepo.Update(ctx, current)
}

func (s *EmployeeServiceImpl) DeleteFixedEntry(ctx context.Context, id string) error {
	return s.fixedEntryRepo.Delete(ctx, id)
}

// ========== ADVANCES ==========

func (s *EmployeeServiceImpl) CreateAdvance(ctx context.Context, req employee.CreateAdvanceRequest) (employee.Advance, error) {
	if err := req.Validate(); err != nil {
		return employee.Advance{}, err
	}

	created, err := s.advanceRepo.Create(ctx, employee.Advance{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Amount:     req.Amount.Round(2),
		Status:     employee.AdvanceStatusPending,
		Notes:      req.Notes,
	})
	if err != nil {
		return employee.Advance{}, err
	}

	slog.Info("Created advance", "advance_id", created.ID, "employee_id", created.EmployeeID, "amount", created.Amount.StringFixed(2))
	return created, nil
}

func (s *EmployeeServiceImpl) GetAdvance(ctx context.Context, id string) (employee.Advance, error) {
	return s.advanceRepo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) ListAdvances(ctx context.Context, filter employee.AdvanceFilter) ([]employee.Advance, error) {
	return s.advanceRepo.List(ctx, filter)
}

func (s *EmployeeServiceImpl) CancelAdvance(ctx context.Context, id string) error {
	return s.advanceRepo.Cancel(ctx, id)
}

// DeleteAdvance removes an advance that no payroll has deducted yet.
func (s *EmployeeServiceImpl) DeleteAdvance(ctx context.Context, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.advanceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status == employee.AdvanceStatusDeducted {
			return fmt.Errorf("cannot delete advance %s: %w", id, employee.ErrAdvanceNotPending)
		}
		return s.advanceRepo.Delete(ctx, id)
	})
}

// ========== VACATIONS ==========

func (s *EmployeeServiceImpl) ScheduleVacation(ctx context.Context, req employee.ScheduleVacationRequest) (employee.Vacation, error) {
	if err := req.Validate(); err != nil {
		return employee.Vacation{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.Vacation{}, err
	}

	acqStart, acqEnd := employee.AcquisitionPeriod(emp.AdmissionDate, req.StartDate)
	if req.AcquisitionStart != nil {
		acqStart, acqEnd = *req.AcquisitionStart, *req.AcquisitionEnd
	}

	return s.vacationRepo.Create(ctx, employee.Vacation{
		EmployeeID:       emp.ID,
		AcquisitionStart: acqStart,
		AcquisitionEnd:   acqEnd,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Days:             employee.VacationDays(req.StartDate, req.EndDate),
		Status:           employee.VacationStatusScheduled,
		Notes:            req.Notes,
	})
}

func (s *EmployeeServiceImpl) ListVacations(ctx context.Context, filter employee.VacationFilter) ([]employee.Vacation, error) {
	return s.vacationRepo.List(ctx, filter)
}

// MoveVacation transitions a vacation and keeps the employee status in
// step: on_vacation while it runs, active again once it ends.
func (s *EmployeeServiceImpl) MoveVacation(ctx context.Context, id string, status employee.VacationStatus) (employee.Vacation, error) {
	var moved employee.Vacation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		v, err := s.vacationRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !v.CanMoveTo(status) {
			return fmt.Errorf("%w: %s to %s", employee.ErrInvalidVacationMove, v.Status, status)
		}

		emp, err := s.employeeRepo.GetByIDForUpdate(ctx, v.EmployeeID)
		if err != nil {
			return err
		}

		wasRunning := v.Status == employee.VacationStatusInProgress
		if err := s.vacationRepo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}

		v.Status = status
		moved = v

		next := emp.Status
		switch {
		case status == employee.VacationStatusInProgress:
			next = employee.StatusOnVacation
		case wasRunning && emp.Status == employee.StatusOnVacation:
			next = employee.StatusActive
		}
		if next == emp.Status {
			return nil
		}
		emp.Status = next
		_, err = s.employeeRepo.Update(ctx, emp)
		return err
	})
	if err != nil {
		return employee.Vacation{}, err
	}

	return moved, nil
}
