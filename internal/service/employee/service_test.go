package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() employee.EmployeeService {
	store := memory.NewStore()
	return NewEmployeeService(
		store,
		memory.NewEmployeeRepository(store),
		memory.NewContractRepository(store),
		memory.NewFixedEntryRepository(store),
		memory.NewAdvanceRepository(store),
		memory.NewVacationRepository(store),
	)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func createEmployee(t *testing.T, svc employee.EmployeeService) employee.Employee {
	t.Helper()
	e, err := svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{
		FullName:      "Ana Souza",
		TaxID:         "529.982.247-25",
		BaseSalary:    decimal.RequireFromString("2600"),
		AdmissionDate: date(2022, 3, 15),
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeService_CreateEmployee(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	e := createEmployee(t, svc)
	assert.Equal(t, "52998224725", e.TaxID)
	assert.Equal(t, employee.StatusActive, e.Status)
	assert.True(t, e.InPayroll)

	_, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		FullName: "Invalid", TaxID: "12345678900", BaseSalary: decimal.NewFromInt(1), AdmissionDate: date(2022, 1, 1),
	})
	assert.ErrorIs(t, err, validator.ErrValidation)

	self := e.ID
	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: e.ID, SuperiorID: &self})
	assert.ErrorIs(t, err, employee.ErrSelfSuperior)
}

func TestEmployeeService_ContractOverlap(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	e := createEmployee(t, svc)

	first, err := svc.CreateContract(ctx, employee.CreateContractRequest{
		EmployeeID: e.ID, ContractType: "clt", StartDate: date(2024, 1, 1), EndDate: timePtr(date(2024, 6, 30)), WeeklyHours: 40,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		start   time.Time
		end     *time.Time
		wantErr error
	}{
		{name: "starts inside the existing contract", start: date(2024, 6, 30), wantErr: employee.ErrContractOverlap},
		{name: "open-ended contract before it", start: date(2023, 1, 1), wantErr: employee.ErrContractOverlap},
		{name: "starts the day after it ends", start: date(2024, 7, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateContract(ctx, employee.CreateContractRequest{
				EmployeeID: e.ID, ContractType: "clt", StartDate: tt.start, EndDate: tt.end, WeeklyHours: 40,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, validator.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}

	// Extending the first contract now collides with the second one.
	_, err = svc.UpdateContract(ctx, employee.UpdateContractRequest{ID: first.ID, ClearEndDate: true})
	assert.ErrorIs(t, err, employee.ErrContractOverlap)

	active, err := svc.ActiveContract(ctx, e.ID, date(2024, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	_, err = svc.ActiveContract(ctx, e.ID, date(2022, 1, 1))
	assert.ErrorIs(t, err, employee.ErrNoActiveContract)
}

func TestEmployeeService_FixedEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewEmployeeService(
		store,
		memory.NewEmployeeRepository(store),
		memory.NewContractRepository(store),
		memory.NewFixedEntryRepository(store),
		memory.NewAdvanceRepository(store),
		memory.NewVacationRepository(store),
	)
	e := createEmployee(t, svc)
	component, err := memory.NewPayComponentRepository(store).Create(ctx, catalog.PayComponent{
		Code: "HEALTH_PLAN", Name: "Health plan", Kind: catalog.KindDebit, Basis: catalog.BasisPercentageOfBase, IsActive: true,
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("150")
	pct := decimal.RequireFromString("10")

	_, err = svc.CreateFixedEntry(ctx, employee.CreateFixedEntryRequest{
		EmployeeID: e.ID, PayComponentID: component.ID, Amount: &amount, Percentage: &pct, ActiveFrom: date(2025, 1, 1),
	})
	assert.ErrorIs(t, err, catalog.ErrMissingAmount)

	entry, err := svc.CreateFixedEntry(ctx, employee.CreateFixedEntryRequest{
		EmployeeID: e.ID, PayComponentID: component.ID, Amount: &amount, ActiveFrom: date(2025, 1, 1), Notes: "Health plan",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateFixedEntry(ctx, employee.UpdateFixedEntryRequest{ID: entry.ID, Percentage: &pct})
	require.NoError(t, err)
	assert.Nil(t, updated.Amount)
	require.NotNil(t, updated.Percentage)
	assert.True(t, updated.Percentage.Equal(pct))

	entries, err := svc.ListFixedEntries(ctx, employee.FixedEntryFilter{EmployeeID: &e.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.DeleteFixedEntry(ctx, entry.ID))
	_, err = svc.GetFixedEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, employee.ErrFixedEntryNotFound)
}

func TestEmployeeService_Advances(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	e := createEmployee(t, svc)

	_, err := svc.CreateAdvance(ctx, employee.CreateAdvanceRequest{EmployeeID: e.ID, Date: date(2025, 1, 10), Amount: decimal.Zero})
	assert.ErrorIs(t, err, validator.ErrValidation)

	a, err := svc.CreateAdvance(ctx, employee.CreateAdvanceRequest{EmployeeID: e.ID, Date: date(2025, 1, 10), Amount: decimal.RequireFromString("300")})
	require.NoError(t, err)
	assert.Equal(t, employee.AdvanceStatusPending, a.Status)

	require.NoError(t, svc.CancelAdvance(ctx, a.ID))
	assert.ErrorIs(t, svc.CancelAdvance(ctx, a.ID), employee.ErrAdvanceNotPending)

	require.NoError(t, svc.DeleteAdvance(ctx, a.ID))
	_, err = svc.GetAdvance(ctx, a.ID)
	assert.ErrorIs(t, err, employee.ErrAdvanceNotFound)
}

func TestEmployeeService_VacationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	e := createEmployee(t, svc)

	v, err := svc.ScheduleVacation(ctx, employee.ScheduleVacationRequest{
		EmployeeID: e.ID, StartDate: date(2025, 2, 3), EndDate: date(2025, 2, 22),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, v.Days)
	assert.Equal(t, date(2024, 3, 15), v.AcquisitionStart)
	assert.Equal(t, date(2025, 3, 14), v.AcquisitionEnd)

	_, err = svc.MoveVacation(ctx, v.ID, employee.VacationStatusCompleted)
	assert.ErrorIs(t, err, employee.ErrInvalidVacationMove)

	_, err = svc.MoveVacation(ctx, v.ID, employee.VacationStatusInProgress)
	require.NoError(t, err)
	got, err := svc.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.StatusOnVacation, got.Status)

	moved, err := svc.MoveVacation(ctx, v.ID, employee.VacationStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, employee.VacationStatusCompleted, moved.Status)
	got, err = svc.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.StatusActive, got.Status)
}
