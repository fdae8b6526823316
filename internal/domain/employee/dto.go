package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== EMPLOYEE DTOs ==========

type CreateEmployeeRequest struct {
	FullName      string          `json:"full_name" validate:"required,max=200"`
	TaxID         string          `json:"tax_id" validate:"required,cpf"`
	Email         *string         `json:"email,omitempty" validate:"omitnil,email"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	Status        string          `json:"status" validate:"omitempty,oneof=active inactive on_leave on_vacation"`
	InPayroll     *bool           `json:"in_payroll,omitempty"`
	AdmissionDate time.Time       `json:"admission_date"`
	Sector        *string         `json:"sector,omitempty"`
	Role          *string         `json:"role,omitempty"`
	SuperiorID    *string         `json:"superior_id,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.AdmissionDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "admission_date", Message: "is required"})
	}
	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID            string           `json:"-" validate:"required"`
	FullName      *string          `json:"full_name,omitempty" validate:"omitnil,min=1,max=200"`
	Email         *string          `json:"email,omitempty" validate:"omitnil,email"`
	BaseSalary    *decimal.Decimal `json:"base_salary,omitempty"`
	Status        *string          `json:"status,omitempty" validate:"omitnil,oneof=active inactive on_leave on_vacation"`
	InPayroll     *bool            `json:"in_payroll,omitempty"`
	Sector        *string          `json:"sector,omitempty"`
	Role          *string          `json:"role,omitempty"`
	SuperiorID    *string          `json:"superior_id,omitempty"`
	ClearSuperior bool             `json:"clear_superior"`
	Notes         *string          `json:"notes,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.SuperiorID != nil && *r.SuperiorID == r.ID {
		return ErrSelfSuperior
	}
	return errs.Err()
}

type EmployeeFilter struct {
	Status    *Status
	Sector    *string
	Role      *string
	InPayroll *bool
	Search    *string
}

// ========== CONTRACT DTOs ==========

type CreateContractRequest struct {
	EmployeeID   string     `json:"employee_id" validate:"required"`
	ContractType string     `json:"contract_type" validate:"required,max=30"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	WeeklyHours  int        `json:"weekly_hours" validate:"gte=1,lte=168"`
	Notes        *string    `json:"notes,omitempty"`
}

func (r *CreateContractRequest) Validate() error {
	errs := validator.Struct(r)
	if r.StartDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "is required"})
	} else if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	return errs.Err()
}

type UpdateContractRequest struct {
	ID           string     `json:"-" validate:"required"`
	ContractType *string    `json:"contract_type,omitempty" validate:"omitnil,min=1,max=30"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	ClearEndDate bool       `json:"clear_end_date"`
	WeeklyHours  *int       `json:"weekly_hours,omitempty" validate:"omitnil,gte=1,lte=168"`
	Notes        *string    `json:"notes,omitempty"`
}

func (r *UpdateContractRequest) Validate() error {
	return validator.Struct(r).Err()
}

// ========== FIXED ENTRY DTOs ==========

type CreateFixedEntryRequest struct {
	EmployeeID     string           `json:"employee_id" validate:"required"`
	PayComponentID string           `json:"pay_component_id" validate:"required"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Percentage     *decimal.Decimal `json:"percentage,omitempty"`
	ActiveFrom     time.Time        `json:"active_from"`
	ActiveUntil    *time.Time       `json:"active_until,omitempty"`
	Notes          string           `json:"notes"`
}

func (r *CreateFixedEntryRequest) Validate() error {
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	return r.Terms().Validate()
}

func (r *CreateFixedEntryRequest) Terms() catalog.FixedTerms {
	return catalog.FixedTerms{
		Amount:      r.Amount,
		Percentage:  r.Percentage,
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
	}
}

type UpdateFixedEntryRequest struct {
	ID               string           `json:"-" validate:"required"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Percentage       *decimal.Decimal `json:"percentage,omitempty"`
	ActiveFrom       *time.Time       `json:"active_from,omitempty"`
	ActiveUntil      *time.Time       `json:"active_until,omitempty"`
	ClearActiveUntil bool             `json:"clear_active_until"`
	Notes            *string          `json:"notes,omitempty"`
}

func (r *UpdateFixedEntryRequest) Validate() error {
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	if r.Amount != nil && r.Percentage != nil {
		return catalog.ErrMissingAmount
	}
	return nil
}

type FixedEntryFilter struct {
	EmployeeID *string
}

// ========== ADVANCE DTOs ==========

type CreateAdvanceRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
}

func (r *CreateAdvanceRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Date.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs.Err()
}

type AdvanceFilter struct {
	EmployeeID *string
	EventID    *string
	Status     *AdvanceStatus
}

// ========== VACATION DTOs ==========

type ScheduleVacationRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	// Acquisition period defaults to the one containing StartDate.
	AcquisitionStart *time.Time `json:"acquisition_start,omitempty"`
	AcquisitionEnd   *time.Time `json:"acquisition_end,omitempty"`
	Notes            string     `json:"notes"`
}

func (r *ScheduleVacationRequest) Validate() error {
	errs := validator.Struct(r)
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date and end_date are required"})
	} else if r.StartDate.After(r.EndDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if (r.AcquisitionStart == nil) != (r.AcquisitionEnd == nil) {
		errs = append(errs, validator.ValidationError{Field: "acquisition_start", Message: "acquisition_start and acquisition_end go together"})
	} else if r.AcquisitionStart != nil && r.AcquisitionStart.After(*r.AcquisitionEnd) {
		errs = append(errs, validator.ValidationError{Field: "acquisition_end", Message: "must not be before acquisition_start"})
	}
	return errs.Err()
}

type VacationFilter struct {
	EmployeeID *string
	Status     *VacationStatus
}
