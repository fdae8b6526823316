package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEmployee(t *testing.T, ctx context.Context, s *Store, name, taxID string) employee.Employee {
	t.Helper()
	e, err := NewEmployeeRepository(s).Create(ctx, employee.Employee{
		FullName:      name,
		TaxID:         taxID,
		BaseSalary:    decimal.RequireFromString("1000"),
		Status:        employee.StatusActive,
		InPayroll:     true,
		AdmissionDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func TestWithinTransaction_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewPayComponentRepository(s)

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, catalog.PayComponent{Code: "A", Name: "A", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := repo.List(ctx, catalog.PayComponentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWithinTransaction_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewPayComponentRepository(s)

	assert.Panics(t, func() {
		_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, _ = repo.Create(ctx, catalog.PayComponent{Code: "A", Name: "A", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
			panic("unexpected")
		})
	})

	_, err := repo.GetByCode(ctx, "A")
	assert.ErrorIs(t, err, catalog.ErrPayComponentNotFound)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewPayComponentRepository(s)

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := repo.Create(ctx, catalog.PayComponent{Code: "A", Name: "A", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
			return err
		}); err != nil {
			return err
		}
		return errors.New("outer failure")
	})
	require.Error(t, err)

	_, err = repo.GetByCode(ctx, "A")
	assert.ErrorIs(t, err, catalog.ErrPayComponentNotFound)
}

func TestPayComponentRepository_UniqueAndInUse(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewPayComponentRepository(s)

	c, err := repo.Create(ctx, catalog.PayComponent{Code: "MEAL", Name: "Meal", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
	require.NoError(t, err)

	_, err = repo.Create(ctx, catalog.PayComponent{Code: "MEAL", Name: "Other", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
	assert.ErrorIs(t, err, catalog.ErrPayComponentCodeExists)
	_, err = repo.Create(ctx, catalog.PayComponent{Code: "OTHER", Name: "Meal", Kind: catalog.KindCredit, Basis: catalog.BasisFixedAmount})
	assert.ErrorIs(t, err, catalog.ErrPayComponentNameExists)

	amount := decimal.RequireFromString("10")
	_, err = NewGeneralFixedEntryRepository(s).Create(ctx, catalog.GeneralFixedEntry{
		PayComponentID: c.ID,
		FixedTerms:     catalog.FixedTerms{Amount: &amount, ActiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		IsActive:       true,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), catalog.ErrPayComponentInUse)
}

func TestEmployeeRepository_DeleteCascadesAndRestricts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	employees := NewEmployeeRepository(s)

	boss := createEmployee(t, ctx, s, "Boss", "52998224725")
	worker := createEmployee(t, ctx, s, "Worker", "11144477735")
	worker.SuperiorID = &boss.ID
	_, err := employees.Update(ctx, worker)
	require.NoError(t, err)

	_, err = NewContractRepository(s).Create(ctx, employee.Contract{
		EmployeeID: boss.ID, ContractType: "clt", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), WeeklyHours: 40,
	})
	require.NoError(t, err)

	require.NoError(t, employees.Delete(ctx, boss.ID))

	contracts, err := NewContractRepository(s).ListByEmployee(ctx, boss.ID)
	require.NoError(t, err)
	assert.Empty(t, contracts)

	got, err := employees.GetByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SuperiorID)

	_, err = employees.Create(ctx, employee.Employee{FullName: "Dup", TaxID: worker.TaxID})
	assert.ErrorIs(t, err, employee.ErrTaxIDExists)
}

func TestAdvanceRepository_Transitions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := createEmployee(t, ctx, s, "Ana", "52998224725")
	advances := NewAdvanceRepository(s)

	a, err := advances.Create(ctx, employee.Advance{
		EmployeeID: e.ID, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("300"), Status: employee.AdvanceStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, advances.MarkDeducted(ctx, a.ID))
	assert.ErrorIs(t, advances.MarkDeducted(ctx, a.ID), employee.ErrAdvanceNotPending)
	assert.ErrorIs(t, advances.Cancel(ctx, a.ID), employee.ErrAdvanceNotPending)

	require.NoError(t, advances.MarkPending(ctx, a.ID))
	pending, err := advances.ListPendingByEmployee(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)
}

func TestCompetenceRepository_DuplicateAndCascade(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	competences := NewCompetenceRepository(s)
	events := NewEventRepository(s)

	c, err := competences.Create(ctx, payroll.Competence{Month: 1, Year: 2025, Status: payroll.StatusDraft})
	require.NoError(t, err)
	_, err = competences.Create(ctx, payroll.Competence{Month: 1, Year: 2025, Status: payroll.StatusDraft})
	assert.ErrorIs(t, err, payroll.ErrDuplicateCompetence)

	ev, err := events.Create(ctx, payroll.Event{
		CompetenceID: c.ID, Type: payroll.EventTypeOther, Description: "Bonus",
		EventDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Status: payroll.StatusDraft,
	})
	require.NoError(t, err)
	_, err = events.Create(ctx, payroll.Event{CompetenceID: c.ID, Description: "Bonus"})
	assert.ErrorIs(t, err, payroll.ErrEventDescriptionExists)

	require.NoError(t, competences.Delete(ctx, c.ID))
	_, err = events.GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, payroll.ErrEventNotFound)
}
