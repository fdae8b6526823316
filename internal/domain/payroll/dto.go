package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPETENCE DTOs ==========

type GeneratePayrollRequest struct {
	Month              int     `json:"month"`
	Year               int     `json:"year"`
	CreateDefaultEvent bool    `json:"create_default_event"`
	Notes              *string `json:"notes,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	if _, err := NewPeriod(r.Month, r.Year); err != nil {
		return err
	}
	return nil
}

type CompetenceFilter struct {
	Year   *int
	Status *Status
}

// ========== EVENT DTOs ==========

type CreateEventRequest struct {
	CompetenceID string    `json:"competence_id" validate:"required"`
	Type         string    `json:"type" validate:"required,oneof=advance final_payment thirteenth_salary vacation termination other"`
	Description  string    `json:"description" validate:"required,max=200"`
	EventDate    time.Time `json:"event_date"`
	AutoProcess  bool      `json:"auto_process"`
	Notes        *string   `json:"notes,omitempty"`
}

func (r *CreateEventRequest) Validate() error {
	errs := validator.Struct(r)
	if r.EventDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "event_date", Message: "is required"})
	}
	return errs.Err()
}

// AdvanceTargetFilter narrows the employees of a bulk advance. Nil fields match everyone.
type AdvanceTargetFilter struct {
	Sector *string
	Role   *string
	Status *employee.Status
}

func (f AdvanceTargetFilter) Match(e employee.Employee) bool {
	if f.Sector != nil && (e.Sector == nil || *e.Sector != *f.Sector) {
		return false
	}
	if f.Role != nil && (e.Role == nil || *e.Role != *f.Role) {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	return true
}

type BulkAdvanceRequest struct {
	CompetenceID string              `json:"competence_id" validate:"required"`
	Description  string              `json:"description" validate:"required,max=200"`
	EventDate    time.Time           `json:"event_date"`
	Filter       AdvanceTargetFilter `json:"filter"`
	Amount       *decimal.Decimal    `json:"amount,omitempty"`
	Percentage   *decimal.Decimal    `json:"percentage,omitempty"`
}

func (r *BulkAdvanceRequest) Validate() error {
	errs := validator.Struct(r)
	if r.EventDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "event_date", Message: "is required"})
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if (r.Amount == nil) == (r.Percentage == nil) {
		return catalog.ErrMissingAmount
	}
	if (r.Amount != nil && !r.Amount.IsPositive()) || (r.Percentage != nil && !r.Percentage.IsPositive()) {
		return validator.Field("amount", "must be greater than 0")
	}
	return nil
}

type ThirteenthSalaryRequest struct {
	CompetenceID string    `json:"competence_id" validate:"required"`
	Description  string    `json:"description" validate:"required,max=200"`
	EventDate    time.Time `json:"event_date"`
	Installment  int       `json:"installment"`
}

func (r *ThirteenthSalaryRequest) Validate() error {
	errs := validator.Struct(r)
	if r.EventDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "event_date", Message: "is required"})
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if r.Installment != 1 && r.Installment != 2 {
		return ErrInvalidInstallment
	}
	return nil
}

type CloseEventRequest struct {
	ID string `json:"-"`
	// SweepAdvances deducts the still-pending advances of the competence
	// employees before closing a final payment event.
	SweepAdvances bool `json:"sweep_advances"`
}

type MarkEventPaidRequest struct {
	ID          string     `json:"-"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// ========== LINE ITEM DTOs ==========

// AddLineItemRequest posts to EventID, or, when only CompetenceID is given,
// to the first final payment event of that competence (created on demand).
type AddLineItemRequest struct {
	EventID         *string          `json:"event_id,omitempty"`
	CompetenceID    *string          `json:"competence_id,omitempty"`
	EmployeeID      string           `json:"employee_id" validate:"required"`
	PayComponentID  string           `json:"pay_component_id" validate:"required"`
	Amount          decimal.Decimal  `json:"amount"`
	CalculationBase *decimal.Decimal `json:"calculation_base,omitempty"`
	Justification   string           `json:"justification"`
}

func (r *AddLineItemRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if r.EventID == nil && r.CompetenceID == nil {
		return ErrEventTargetMissing
	}
	return nil
}

type LineItemFilter struct {
	EventID      *string
	CompetenceID *string
	EmployeeID   *string
	AdvanceID    *string
}
