package employee

import (
	"context"
	"time"
)

type EmployeeService interface {
	// Employees
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (Employee, error)
	DeleteEmployee(ctx context.Context, id string) error

	// Contracts
	CreateContract(ctx context.Context, req CreateContractRequest) (Contract, error)
	GetContract(ctx context.Context, id string) (Contract, error)
	ListContracts(ctx context.Context, employeeID string) ([]Contract, error)
	UpdateContract(ctx context.Context, req UpdateContractRequest) (Contract, error)
	DeleteContract(ctx context.Context, id string) error
	ActiveContract(ctx context.Context, employeeID string, day time.Time) (Contract, error)

	// Fixed entries
	CreateFixedEntry(ctx context.Context, req CreateFixedEntryRequest) (FixedEntry, error)
	GetFixedEntry(ctx context.Context, id string) (FixedEntry, error)
	ListFixedEntries(ctx context.Context, filter FixedEntryFilter) ([]FixedEntry, error)
	UpdateFixedEntry(ctx context.Context, req UpdateFixedEntryRequest) (FixedEntry, error)
	DeleteFixedEntry(ctx context.Context, id string) error

	// Advances
	CreateAdvance(ctx context.Context, req CreateAdvanceRequest) (Advance, error)
	GetAdvance(ctx context.Context, id string) (Advance, error)
	ListAdvances(ctx context.Context, filter AdvanceFilter) ([]Advance, error)
	CancelAdvance(ctx context.Context, id string) error
	DeleteAdvance(ctx context.Context, id string) error

	// Vacations
	ScheduleVacation(ctx context.Context, req ScheduleVacationRequest) (Vacation, error)
	ListVacations(ctx context.Context, filter VacationFilter) ([]Vacation, error)
	MoveVacation(ctx context.Context, id string, status VacationStatus) (Vacation, error)
}
