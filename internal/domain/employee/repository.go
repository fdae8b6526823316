package employee

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the employee row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Update(ctx context.Context, employee Employee) (Employee, error)
	// Delete fails with ErrEmployeeInUse while payroll line items or a
	// competence's eligible set reference the employee.
	Delete(ctx context.Context, id string) error
}

type ContractRepository interface {
	Create(ctx context.Context, contract Contract) (Contract, error)
	GetByID(ctx context.Context, id string) (Contract, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Contract, error)
	// ListEligible returns contracts overlapping [start, end) whose employee
	// participates in payroll, ordered by employee name.
	ListEligible(ctx context.Context, start, end time.Time) ([]EligibleContract, error)
	Update(ctx context.Context, contract Contract) (Contract, error)
	// Delete fails with ErrContractInUse once a competence recorded the contract as eligible.
	Delete(ctx context.Context, id string) error
}

type FixedEntryRepository interface {
	Create(ctx context.Context, entry FixedEntry) (FixedEntry, error)
	GetByID(ctx context.Context, id string) (FixedEntry, error)
	List(ctx context.Context, filter FixedEntryFilter) ([]FixedEntry, error)
	// ListActiveForEmployee returns the entries overlapping [start, end), with Component joined.
	ListActiveForEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]FixedEntry, error)
	Update(ctx context.Context, entry FixedEntry) (FixedEntry, error)
	Delete(ctx context.Context, id string) error
}

type AdvanceRepository interface {
	Create(ctx context.Context, advance Advance) (Advance, error)
	GetByID(ctx context.Context, id string) (Advance, error)
	List(ctx context.Context, filter AdvanceFilter) ([]Advance, error)
	// ListPendingByEmployee locks and returns the pending advances of an employee ordered by date.
	ListPendingByEmployee(ctx context.Context, employeeID string) ([]Advance, error)
	// MarkDeducted moves a pending advance to deducted; ErrAdvanceNotPending otherwise.
	MarkDeducted(ctx context.Context, id string) error
	// MarkPending moves a deducted advance back to pending.
	MarkPending(ctx context.Context, id string) error
	// Cancel moves a pending advance to cancelled; ErrAdvanceNotPending otherwise.
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// SumByEvent totals the non-cancelled advances disbursed by an event.
	SumByEvent(ctx context.Context, eventID string) (decimal.Decimal, error)
}

type VacationRepository interface {
	Create(ctx context.Context, vacation Vacation) (Vacation, error)
	GetByID(ctx context.Context, id string) (Vacation, error)
	List(ctx context.Context, filter VacationFilter) ([]Vacation, error)
	UpdateStatus(ctx context.Context, id string, status VacationStatus) error
}
