package catalog

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PAY COMPONENT DTOs ==========

type CreatePayComponentRequest struct {
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=100"`
	Kind        string  `json:"kind" validate:"required,oneof=credit debit"`
	Basis       string  `json:"basis" validate:"required,oneof=fixed_amount percentage_of_base"`
	Description *string `json:"description,omitempty"`
}

func (r *CreatePayComponentRequest) Validate() error {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Name = strings.TrimSpace(r.Name)
	return validator.Struct(r).Err()
}

type UpdatePayComponentRequest struct {
	ID          string  `json:"-" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Kind        *string `json:"kind,omitempty" validate:"omitnil,oneof=credit debit"`
	Basis       *string `json:"basis,omitempty" validate:"omitnil,oneof=fixed_amount percentage_of_base"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdatePayComponentRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	return validator.Struct(r).Err()
}

type PayComponentFilter struct {
	Kind       *Kind
	ActiveOnly bool
}

// ========== GENERAL FIXED ENTRY DTOs ==========

type CreateGeneralEntryRequest struct {
	PayComponentID string           `json:"pay_component_id" validate:"required"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Percentage     *decimal.Decimal `json:"percentage,omitempty"`
	ActiveFrom     time.Time        `json:"active_from"`
	ActiveUntil    *time.Time       `json:"active_until,omitempty"`
	Notes          string           `json:"notes"`
}

func (r *CreateGeneralEntryRequest) Validate() error {
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	return r.Terms().Validate()
}

func (r *CreateGeneralEntryRequest) Terms() FixedTerms {
	return FixedTerms{
		Amount:      r.Amount,
		Percentage:  r.Percentage,
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
	}
}

// UpdateGeneralEntryRequest replaces only the informed fields. Setting
// Amount clears Percentage and vice versa.
type UpdateGeneralEntryRequest struct {
	ID               string           `json:"-" validate:"required"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Percentage       *decimal.Decimal `json:"percentage,omitempty"`
	ActiveFrom       *time.Time       `json:"active_from,omitempty"`
	ActiveUntil      *time.Time       `json:"active_until,omitempty"`
	ClearActiveUntil bool             `json:"clear_active_until"`
	Notes            *string          `json:"notes,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
}

func (r *UpdateGeneralEntryRequest) Validate() error {
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	if r.Amount != nil && r.Percentage != nil {
		return ErrMissingAmount
	}
	return nil
}

// Apply merges the request into the current terms.
func (r *UpdateGeneralEntryRequest) Apply(t FixedTerms) FixedTerms {
	return MergeTerms(t, r.Amount, r.Percentage, r.ActiveFrom, r.ActiveUntil, r.ClearActiveUntil)
}

// MergeTerms applies a partial update to fixed terms.
func MergeTerms(t FixedTerms, amount, percentage *decimal.Decimal, from, until *time.Time, clearUntil bool) FixedTerms {
	if amount != nil {
		t.Amount, t.Percentage = amount, nil
	}
	if percentage != nil {
		t.Percentage, t.Amount = percentage, nil
	}
	if from != nil {
		t.ActiveFrom = *from
	}
	if clearUntil {
		t.ActiveUntil = nil
	} else if until != nil {
		t.ActiveUntil = until
	}
	return t
}

type GeneralEntryFilter struct {
	PayComponentID *string
	ActiveOnly     bool
}
