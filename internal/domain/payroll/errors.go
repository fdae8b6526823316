package payroll

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

var (
	ErrCompetenceNotFound  = errors.New("payroll competence not found")
	ErrDuplicateCompetence = errors.New("payroll competence already exists for this period")
	ErrInvalidState        = errors.New("operation not allowed in the current status")
	ErrInvalidInstallment  = errors.New("thirteenth salary installment must be 1 or 2")
	ErrEventNotFound       = errors.New("payment event not found")
	ErrLineItemNotFound    = errors.New("line item not found")
	ErrSummaryNotFound     = errors.New("employee summary not found")
	ErrAdvancesDeducted    = errors.New("advances disbursed by this event were already deducted")
)

// Input errors are validation errors: errors.Is(err, validator.ErrValidation) holds.
var (
	ErrInvalidPeriod              = fmt.Errorf("month must be between 1 and 12 and year at least 2000: %w", validator.ErrValidation)
	ErrEventDateOutsideCompetence = fmt.Errorf("event date must fall within the competence month: %w", validator.ErrValidation)
	ErrEventDescriptionExists     = fmt.Errorf("event description already used in this competence: %w", validator.ErrValidation)
	ErrEventTargetMissing         = fmt.Errorf("an event or a competence must be informed: %w", validator.ErrValidation)
)

// StateError reports a transition attempted from the wrong status.
// errors.Is(err, ErrInvalidState) holds for every StateError.
type StateError struct {
	Entity    string
	ID        string
	Operation string
	Actual    Status
	Allowed   []Status
}

func (e *StateError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot %s %s %s: status is %s, expected %s",
		e.Operation, e.Entity, e.ID, e.Actual, strings.Join(allowed, " or "))
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
