package catalog

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

var (
	ErrPayComponentNotFound     = errors.New("pay component not found")
	ErrPayComponentCodeExists   = errors.New("pay component code already exists")
	ErrPayComponentNameExists   = errors.New("pay component name already exists")
	ErrPayComponentInUse        = errors.New("pay component is referenced by entries or line items")
	ErrGeneralEntryNotFound     = errors.New("general fixed entry not found")
	ErrSystemComponentMissing   = errors.New("system pay component is not seeded")
	ErrSystemComponentImmutable = errors.New("system pay component cannot be renamed or deleted")
)

// Value errors are validation errors: errors.Is(err, validator.ErrValidation) holds.
var (
	ErrMissingAmount      = fmt.Errorf("exactly one of amount or percentage must be informed: %w", validator.ErrValidation)
	ErrNegativeValue      = fmt.Errorf("amount and percentage must be non-negative: %w", validator.ErrValidation)
	ErrInvalidActiveRange = fmt.Errorf("active_from is required and active_until must not precede it: %w", validator.ErrValidation)
)
