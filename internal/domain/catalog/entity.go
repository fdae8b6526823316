package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells whether a component adds to or subtracts from net pay.
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Basis tells how a fixed entry of the component is valued.
type Basis string

const (
	BasisFixedAmount      Basis = "fixed_amount"
	BasisPercentageOfBase Basis = "percentage_of_base"
)

// Codes of the components the payroll engine posts on its own. They are
// created by fixtures.SeedPayComponents.
const (
	CodeBaseSalary       = "BASE_SALARY"
	CodeAdvanceDeduction = "ADVANCE_DEDUCTION"
	CodeThirteenthSalary = "THIRTEENTH_SALARY"
)

var hundred = decimal.NewFromInt(100)

// PayComponent - catalog entry for a kind of earning or deduction
type PayComponent struct {
	ID          string
	Code        string
	Name        string
	Kind        Kind
	Basis       Basis
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c PayComponent) IsCredit() bool { return c.Kind == KindCredit }

// FixedTerms is the valuation and validity window shared by general and
// per-employee fixed entries. Exactly one of Amount and Percentage is set.
type FixedTerms struct {
	Amount      *decimal.Decimal
	Percentage  *decimal.Decimal
	ActiveFrom  time.Time
	ActiveUntil *time.Time
}

// Validate checks the amount/percentage exclusivity and the date range.
func (t FixedTerms) Validate() error {
	if (t.Amount == nil) == (t.Percentage == nil) {
		return ErrMissingAmount
	}
	if t.Amount != nil && t.Amount.IsNegative() {
		return ErrNegativeValue
	}
	if t.Percentage != nil && t.Percentage.IsNegative() {
		return ErrNegativeValue
	}
	if t.ActiveFrom.IsZero() {
		return ErrInvalidActiveRange
	}
	if t.ActiveUntil != nil && t.ActiveUntil.Before(t.ActiveFrom) {
		return ErrInvalidActiveRange
	}
	return nil
}

// ActiveDuring reports whether the entry overlaps the half-open period
// [start, end): it starts before the period ends and has no end or ends
// on or after the period start.
func (t FixedTerms) ActiveDuring(start, end time.Time) bool {
	if !t.ActiveFrom.Before(end) {
		return false
	}
	return t.ActiveUntil == nil || !t.ActiveUntil.Before(start)
}

// Valuate returns the amount the entry is worth for an employee earning
// baseSalary, and the calculation base when the value was derived from it.
// Percentages are rounded to cents.
func (t FixedTerms) Valuate(basis Basis, baseSalary decimal.Decimal) (decimal.Decimal, *decimal.Decimal) {
	if basis == BasisPercentageOfBase {
		if t.Percentage == nil {
			return decimal.Zero, nil
		}
		base := baseSalary
		return baseSalary.Mul(*t.Percentage).Div(hundred).Round(2), &base
	}
	if t.Amount == nil {
		return decimal.Zero, nil
	}
	return t.Amount.Round(2), nil
}

// GeneralFixedEntry - recurring value applied to every eligible employee
type GeneralFixedEntry struct {
	ID             string
	PayComponentID string
	FixedTerms
	Notes     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	Component *PayComponent
}
