package fixtures

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
)

func strPtr(s string) *string { return &s }

// ==========================================
// SYSTEM PAY COMPONENTS
// ==========================================

// GetDefaultPayComponents returns the components the payroll engine posts on its own
func GetDefaultPayComponents() []catalog.PayComponent {
	return []catalog.PayComponent{
		{
			Code:        catalog.CodeBaseSalary,
			Name:        "Base Salary",
			Kind:        catalog.KindCredit,
			Basis:       catalog.BasisFixedAmount,
			Description: strPtr("Monthly base salary of each eligible employee"),
			IsActive:    true,
		},
		{
			Code:        catalog.CodeAdvanceDeduction,
			Name:        "Salary Advance",
			Kind:        catalog.KindDebit,
			Basis:       catalog.BasisFixedAmount,
			Description: strPtr("Deduction of advances paid ahead of the final payment"),
			IsActive:    true,
		},
		{
			Code:        catalog.CodeThirteenthSalary,
			Name:        "13th Salary",
			Kind:        catalog.KindCredit,
			Basis:       catalog.BasisFixedAmount,
			Description: strPtr("Thirteenth salary installments"),
			IsActive:    true,
		},
	}
}

// SeedPayComponents creates the missing system components and returns the
// IDs of all of them by code. Running it again changes nothing.
func SeedPayComponents(ctx context.Context, repo catalog.PayComponentRepository) (map[string]string, error) {
	ids := make(map[string]string)
	created := 0
	for _, component := range GetDefaultPayComponents() {
		existing, err := repo.GetByCode(ctx, component.Code)
		if err == nil {
			ids[existing.Code] = existing.ID
			continue
		}
		if !errors.Is(err, catalog.ErrPayComponentNotFound) {
			return nil, err
		}

		c, err := repo.Create(ctx, component)
		if err != nil {
			return nil, err
		}
		ids[c.Code] = c.ID
		created++
	}

	slog.Info("Seeded system pay components", "created", created, "total", len(ids))
	return ids, nil
}
