package fixtures

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPayComponents(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPayComponentRepository(memory.NewStore())

	first, err := SeedPayComponents(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	second, err := SeedPayComponents(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	deduction, err := repo.GetByCode(ctx, catalog.CodeAdvanceDeduction)
	require.NoError(t, err)
	assert.Equal(t, catalog.KindDebit, deduction.Kind)

	all, err := repo.List(ctx, catalog.PayComponentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
