package employee

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrTaxIDExists         = errors.New("tax id already registered")
	ErrSuperiorNotFound    = errors.New("superior employee not found")
	ErrEmployeeInUse       = errors.New("employee is referenced by payroll records")
	ErrContractNotFound    = errors.New("contract not found")
	ErrContractInUse       = errors.New("contract belongs to a generated payroll competence")
	ErrNoActiveContract    = errors.New("employee has no active contract on this date")
	ErrFixedEntryNotFound  = errors.New("fixed entry not found")
	ErrAdvanceNotFound     = errors.New("advance not found")
	ErrAdvanceNotPending   = errors.New("advance is not pending")
	ErrVacationNotFound    = errors.New("vacation not found")
	ErrInvalidVacationMove = errors.New("vacation status transition not allowed")
)

// Rule violations reported as validation errors.
var (
	ErrSelfSuperior    = fmt.Errorf("employee cannot be its own superior: %w", validator.ErrValidation)
	ErrContractOverlap = fmt.Errorf("employee already has a contract in this period: %w", validator.ErrValidation)
)
