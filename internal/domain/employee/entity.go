package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            string
	FullName      string
	TaxID         string
	Email         *string
	BaseSalary    decimal.Decimal
	Status        Status
	InPayroll     bool
	AdmissionDate time.Time
	Sector        *string
	Role          *string
	SuperiorID    *string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOnLeave    Status = "on_leave"
	StatusOnVacation Status = "on_vacation"
)

// Contract - employment contract; EndDate is the last working day, inclusive
type Contract struct {
	ID           string
	EmployeeID   string
	ContractType string
	StartDate    time.Time
	EndDate      *time.Time
	WeeklyHours  int
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Overlaps reports whether two contracts share at least one day.
func (c Contract) Overlaps(other Contract) bool {
	if c.EndDate != nil && c.EndDate.Before(other.StartDate) {
		return false
	}
	if other.EndDate != nil && other.EndDate.Before(c.StartDate) {
		return false
	}
	return true
}

// ActiveOn reports whether the contract covers the given day.
func (c Contract) ActiveOn(day time.Time) bool {
	if day.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(day)
}

// ActiveDuring reports whether the contract overlaps the half-open period
// [start, end): it starts before the period ends and has not ended before
// the period starts.
func (c Contract) ActiveDuring(start, end time.Time) bool {
	if !c.StartDate.Before(end) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(start)
}

// EligibleContract pairs a contract with its employee for a payroll run.
type EligibleContract struct {
	ContractID string
	Employee   Employee
}

// FixedEntry - recurring value assigned to a single employee
type FixedEntry struct {
	ID             string
	EmployeeID     string
	PayComponentID string
	catalog.FixedTerms
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	Component *catalog.PayComponent
}

// Advance - amount paid ahead of the final payment, deducted later
type Advance struct {
	ID         string
	EmployeeID string
	EventID    *string
	Date       time.Time
	Amount     decimal.Decimal
	Status     AdvanceStatus
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type AdvanceStatus string

const (
	AdvanceStatusPending   AdvanceStatus = "pending"
	AdvanceStatusDeducted  AdvanceStatus = "deducted"
	AdvanceStatusCancelled AdvanceStatus = "cancelled"
)

type Vacation struct {
	ID               string
	EmployeeID       string
	AcquisitionStart time.Time
	AcquisitionEnd   time.Time
	StartDate        time.Time
	EndDate          time.Time
	Days             int
	Status           VacationStatus
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type VacationStatus string

const (
	VacationStatusScheduled  VacationStatus = "scheduled"
	VacationStatusInProgress VacationStatus = "in_progress"
	VacationStatusCompleted  VacationStatus = "completed"
	VacationStatusCancelled  VacationStatus = "cancelled"
)

// vacationTransitions lists the statuses each vacation status may move to.
var vacationTransitions = map[VacationStatus][]VacationStatus{
	VacationStatusScheduled:  {VacationStatusInProgress, VacationStatusCancelled},
	VacationStatusInProgress: {VacationStatusCompleted, VacationStatusCancelled},
}

func (v Vacation) CanMoveTo(next VacationStatus) bool {
	for _, s := range vacationTransitions[v.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// VacationDays counts the days between start and end, both inclusive.
func VacationDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// AcquisitionPeriod returns the twelve-month period, counted from the
// admission date, that contains day. The end is inclusive.
func AcquisitionPeriod(admission, day time.Time) (time.Time, time.Time) {
	years := day.Year() - admission.Year()
	start := admission.AddDate(years, 0, 0)
	if start.After(day) {
		start = admission.AddDate(years-1, 0, 0)
	}
	if start.Before(admission) {
		start = admission
	}
	return start, start.AddDate(1, 0, -1)
}
