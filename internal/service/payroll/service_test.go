package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc            payroll.PayrollService
	components     catalog.PayComponentRepository
	generalEntries catalog.GeneralFixedEntryRepository
	employees      employee.EmployeeRepository
	contracts      employee.ContractRepository
	fixedEntries   employee.FixedEntryRepository
	advances       employee.AdvanceRepository
	hired          int
}

func newTestEnv(t *testing.T, cfg config.PayrollConfig) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		components:     memory.NewPayComponentRepository(store),
		generalEntries: memory.NewGeneralFixedEntryRepository(store),
		employees:      memory.NewEmployeeRepository(store),
		contracts:      memory.NewContractRepository(store),
		fixedEntries:   memory.NewFixedEntryRepository(store),
		advances:       memory.NewAdvanceRepository(store),
	}
	env.svc = NewPayrollService(
		store,
		memory.NewCompetenceRepository(store),
		memory.NewEventRepository(store),
		memory.NewLineItemRepository(store),
		memory.NewSummaryRepository(store),
		env.components,
		env.generalEntries,
		env.contracts,
		env.fixedEntries,
		env.advances,
		cfg,
	)

	_, err := fixtures.SeedPayComponents(context.Background(), env.components)
	require.NoError(t, err)
	return env
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// hire registers a payroll employee with one contract.
func (env *testEnv) hire(t *testing.T, name, salary string, start time.Time, end *time.Time) employee.Employee {
	t.Helper()
	env.hired++
	e, err := env.employees.Create(context.Background(), employee.Employee{
		FullName:      name,
		TaxID:         fmt.Sprintf("%011d", env.hired),
		BaseSalary:    dec(salary),
		Status:        employee.StatusActive,
		InPayroll:     true,
		AdmissionDate: start,
	})
	require.NoError(t, err)
	env.contract(t, e.ID, start, end)
	return e
}

func (env *testEnv) contract(t *testing.T, employeeID string, start time.Time, end *time.Time) {
	t.Helper()
	_, err := env.contracts.Create(context.Background(), employee.Contract{
		EmployeeID: employeeID, ContractType: "clt", StartDate: start, EndDate: end, WeeklyHours: 40,
	})
	require.NoError(t, err)
}

func (env *testEnv) advance(t *testing.T, employeeID, amount string, day time.Time) employee.Advance {
	t.Helper()
	a, err := env.advances.Create(context.Background(), employee.Advance{
		EmployeeID: employeeID, Date: day, Amount: dec(amount), Status: employee.AdvanceStatusPending,
	})
	require.NoError(t, err)
	return a
}

func (env *testEnv) component(t *testing.T, code string, kind catalog.Kind, basis catalog.Basis) catalog.PayComponent {
	t.Helper()
	c, err := env.components.Create(context.Background(), catalog.PayComponent{
		Code: code, Name: code, Kind: kind, Basis: basis, IsActive: true,
	})
	require.NoError(t, err)
	return c
}

func (env *testEnv) generate(t *testing.T, defaultEvent bool) payroll.Competence {
	t.Helper()
	competence, err := env.svc.GeneratePayroll(context.Background(), payroll.GeneratePayrollRequest{
		Month: 1, Year: 2025, CreateDefaultEvent: defaultEvent,
	})
	require.NoError(t, err)
	return competence
}

func (env *testEnv) onlyEvent(t *testing.T, competenceID string) payroll.Event {
	t.Helper()
	events, err := env.svc.ListEvents(context.Background(), competenceID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestGeneratePayroll_DeductsPendingAdvance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	adv := env.advance(t, ana.ID, "200", date(2025, 1, 10))

	competence := env.generate(t, true)
	assert.Equal(t, payroll.StatusDraft, competence.Status)

	event := env.onlyEvent(t, competence.ID)
	assert.Equal(t, payroll.EventTypeFinalPayment, event.Type)
	assert.Equal(t, "Final Payment 01/2025", event.Description)
	assert.Equal(t, date(2025, 1, 31), event.EventDate)
	assertDecimal(t, "2400", event.TotalAmount)

	items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{EventID: &event.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Monthly base salary", items[0].Justification)
	assert.Equal(t, catalog.CodeAdvanceDeduction, items[1].ComponentCode)
	require.NotNil(t, items[1].AdvanceID)
	assert.Equal(t, adv.ID, *items[1].AdvanceID)
	assert.Equal(t, "Advance of 2025-01-10", items[1].Justification)

	summaries, err := env.svc.ListSummaries(ctx, competence.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assertDecimal(t, "2600", summaries[0].TotalCredits)
	assertDecimal(t, "200", summaries[0].TotalDebits)
	assertDecimal(t, "2400", summaries[0].Net)

	got, err := env.advances.GetByID(ctx, adv.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.AdvanceStatusDeducted, got.Status)

	totals, err := env.svc.CompetenceTotals(ctx, competence.ID)
	require.NoError(t, err)
	assertDecimal(t, "2400", totals.Net)
}

func TestGeneratePayroll_FixedEntries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)

	transport := env.component(t, "TRANSPORT", catalog.KindCredit, catalog.BasisFixedAmount)
	meal := env.component(t, "MEAL", catalog.KindCredit, catalog.BasisFixedAmount)
	health := env.component(t, "HEALTH", catalog.KindDebit, catalog.BasisPercentageOfBase)
	gym := env.component(t, "GYM", catalog.KindDebit, catalog.BasisFixedAmount)

	for _, entry := range []catalog.GeneralFixedEntry{
		{PayComponentID: transport.ID, FixedTerms: catalog.FixedTerms{Amount: decPtr("200"), ActiveFrom: date(2024, 6, 1)}, Notes: "Transport", IsActive: true},
		// starts with the next period
		{PayComponentID: meal.ID, FixedTerms: catalog.FixedTerms{Amount: decPtr("150"), ActiveFrom: date(2025, 2, 1)}, Notes: "Meal", IsActive: true},
		// switched off
		{PayComponentID: meal.ID, FixedTerms: catalog.FixedTerms{Amount: decPtr("90"), ActiveFrom: date(2024, 1, 1)}, Notes: "Old meal", IsActive: false},
		// ended the day before the period
		{PayComponentID: meal.ID, FixedTerms: catalog.FixedTerms{Amount: decPtr("80"), ActiveFrom: date(2024, 1, 1), ActiveUntil: timePtr(date(2024, 12, 31))}, Notes: "Expired", IsActive: true},
	} {
		_, err := env.generalEntries.Create(ctx, entry)
		require.NoError(t, err)
	}

	for _, entry := range []employee.FixedEntry{
		{EmployeeID: ana.ID, PayComponentID: health.ID, FixedTerms: catalog.FixedTerms{Percentage: decPtr("10"), ActiveFrom: date(2025, 1, 1)}, Notes: "Health plan"},
		{EmployeeID: ana.ID, PayComponentID: gym.ID, FixedTerms: catalog.FixedTerms{Amount: decPtr("0"), ActiveFrom: date(2025, 1, 1)}, Notes: "Gym"},
	} {
		_, err := env.fixedEntries.Create(ctx, entry)
		require.NoError(t, err)
	}

	competence := env.generate(t, true)
	event := env.onlyEvent(t, competence.ID)
	assertDecimal(t, "2540", event.TotalAmount)

	items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{CompetenceID: &competence.ID, EmployeeID: &ana.ID})
	require.NoError(t, err)
	require.Len(t, items, 3)

	byCode := make(map[string]payroll.LineItem)
	for _, item := range items {
		byCode[item.ComponentCode] = item
	}
	assert.Equal(t, "General fixed entry - Transport", byCode["TRANSPORT"].Justification)
	assert.Nil(t, byCode["TRANSPORT"].CalculationBase)
	assertDecimal(t, "260", byCode["HEALTH"].Amount)
	require.NotNil(t, byCode["HEALTH"].CalculationBase)
	assertDecimal(t, "2600", *byCode["HEALTH"].CalculationBase)
	assert.Equal(t, "Fixed entry - Health plan", byCode["HEALTH"].Justification)
}

func TestGeneratePayroll_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)

	tests := []struct {
		name  string
		month int
		year  int
	}{
		{name: "month zero", month: 0, year: 2025},
		{name: "month thirteen", month: 13, year: 2025},
		{name: "year before 2000", month: 1, year: 1999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{Month: tt.month, Year: tt.year, CreateDefaultEvent: true})
			assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
			assert.ErrorIs(t, err, validator.ErrValidation)
		})
	}

	competences, err := env.svc.ListCompetences(ctx, payroll.CompetenceFilter{})
	require.NoError(t, err)
	assert.Empty(t, competences)
}

func TestGeneratePayroll_DuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	env.advance(t, ana.ID, "200", date(2025, 1, 10))

	first := env.generate(t, true)

	_, err := env.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{Month: 1, Year: 2025, CreateDefaultEvent: true})
	assert.ErrorIs(t, err, payroll.ErrDuplicateCompetence)

	// The first run is left as it was.
	found, err := env.svc.GetCompetenceByPeriod(ctx, 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{CompetenceID: &first.ID})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGeneratePayroll_Eligibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())

	endsOnFirstDay := env.hire(t, "Bruno", "1000", date(2024, 1, 1), timePtr(date(2025, 1, 1)))
	env.hire(t, "Carla", "1000", date(2025, 2, 1), nil)
	env.hire(t, "Diego", "1000", date(2024, 1, 1), timePtr(date(2024, 12, 31)))

	// Two contracts in the same month still produce one salary.
	switched := env.hire(t, "Elisa", "3000", date(2024, 1, 1), timePtr(date(2025, 1, 15)))
	env.contract(t, switched.ID, date(2025, 1, 16), nil)

	outside, err := env.employees.Create(ctx, employee.Employee{
		FullName: "Fabio", TaxID: "99999999999", BaseSalary: dec("5000"), Status: employee.StatusActive,
		InPayroll: false, AdmissionDate: date(2024, 1, 1),
	})
	require.NoError(t, err)
	env.contract(t, outside.ID, date(2024, 1, 1), nil)

	competence := env.generate(t, true)

	eligible, err := env.svc.ListEligibleEmployees(ctx, competence.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, endsOnFirstDay.ID, eligible[0].ID)
	assert.Equal(t, switched.ID, eligible[1].ID)

	items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{CompetenceID: &competence.ID, EmployeeID: &switched.ID})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	overview, err := env.svc.GetOverview(ctx, competence.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.EmployeeCount)
	assert.Equal(t, 1, overview.EventCount)
	assertDecimal(t, "4000", overview.Totals.Net)
	assertDecimal(t, "4000", overview.PendingTotal)
	assertDecimal(t, "0", overview.PaidTotal)
}

func TestBulkAdvance_ThenSweepOnClose(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, false)

	_, err := env.svc.CreateBulkAdvanceEvent(ctx, payroll.BulkAdvanceRequest{
		CompetenceID: competence.ID, Description: "Advance 01/2025", EventDate: date(2025, 1, 15),
		Amount: decPtr("100"), Percentage: decPtr("50"),
	})
	assert.ErrorIs(t, err, catalog.ErrMissingAmount)

	advanceEvent, err := env.svc.CreateBulkAdvanceEvent(ctx, payroll.BulkAdvanceRequest{
		CompetenceID: competence.ID, Description: "Advance 01/2025", EventDate: date(2025, 1, 15),
		Percentage: decPtr("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.EventTypeAdvance, advanceEvent.Type)
	assertDecimal(t, "1300", advanceEvent.TotalAmount)

	advances, err := env.advances.List(ctx, employee.AdvanceFilter{EventID: &advanceEvent.ID})
	require.NoError(t, err)
	require.Len(t, advances, 1)
	assert.Equal(t, employee.AdvanceStatusPending, advances[0].Status)
	assertDecimal(t, "1300", advances[0].Amount)

	// Closing the advance event keeps the disbursed amount as its total.
	closedAdvance, err := env.svc.CloseEvent(ctx, payroll.CloseEventRequest{ID: advanceEvent.ID})
	require.NoError(t, err)
	assertDecimal(t, "1300", closedAdvance.TotalAmount)

	final, err := env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "final_payment", Description: "Final Payment 01/2025",
		EventDate: date(2025, 1, 31), AutoProcess: true,
	})
	require.NoError(t, err)
	assertDecimal(t, "2600", final.TotalAmount)

	closed, err := env.svc.CloseEvent(ctx, payroll.CloseEventRequest{ID: final.ID, SweepAdvances: true})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusClosed, closed.Status)
	assertDecimal(t, "1300", closed.TotalAmount)

	swept, err := env.advances.GetByID(ctx, advances[0].ID)
	require.NoError(t, err)
	assert.Equal(t, employee.AdvanceStatusDeducted, swept.Status)

	summary, err := env.svc.RefreshEmployeeSummary(ctx, competence.ID, ana.ID)
	require.NoError(t, err)
	assertDecimal(t, "1300", summary.Net)
}

func TestCancelEvent_AdvanceEvent(t *testing.T) {
	ctx := context.Background()

	newAdvanceEvent := func(t *testing.T) (*testEnv, payroll.Competence, payroll.Event) {
		env := newTestEnv(t, config.DefaultPayrollConfig())
		env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
		competence := env.generate(t, false)
		event, err := env.svc.CreateBulkAdvanceEvent(ctx, payroll.BulkAdvanceRequest{
			CompetenceID: competence.ID, Description: "Advance 01/2025", EventDate: date(2025, 1, 15),
			Percentage: decPtr("50"),
		})
		require.NoError(t, err)
		return env, competence, event
	}

	finalPayment := func(t *testing.T, env *testEnv, competenceID string) payroll.Event {
		event, err := env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
			CompetenceID: competenceID, Type: "final_payment", Description: "Final Payment 01/2025",
			EventDate: date(2025, 1, 31), AutoProcess: true,
		})
		require.NoError(t, err)
		closed, err := env.svc.CloseEvent(ctx, payroll.CloseEventRequest{ID: event.ID, SweepAdvances: true})
		require.NoError(t, err)
		return closed
	}

	t.Run("pending advances are cancelled and never swept", func(t *testing.T) {
		env, competence, advanceEvent := newAdvanceEvent(t)

		cancelled, err := env.svc.CancelEvent(ctx, advanceEvent.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.StatusCancelled, cancelled.Status)

		advances, err := env.advances.List(ctx, employee.AdvanceFilter{EventID: &advanceEvent.ID})
		require.NoError(t, err)
		require.Len(t, advances, 1)
		assert.Equal(t, employee.AdvanceStatusCancelled, advances[0].Status)

		final := finalPayment(t, env, competence.ID)
		assertDecimal(t, "2600", final.TotalAmount)
		items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{EventID: &final.ID})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("refused once an advance was deducted", func(t *testing.T) {
		env, competence, advanceEvent := newAdvanceEvent(t)
		final := finalPayment(t, env, competence.ID)
		assertDecimal(t, "1300", final.TotalAmount)

		_, err := env.svc.CancelEvent(ctx, advanceEvent.ID)
		assert.ErrorIs(t, err, payroll.ErrAdvancesDeducted)

		got, err := env.svc.GetEvent(ctx, advanceEvent.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.StatusDraft, got.Status)

		advances, err := env.advances.List(ctx, employee.AdvanceFilter{EventID: &advanceEvent.ID})
		require.NoError(t, err)
		require.Len(t, advances, 1)
		assert.Equal(t, employee.AdvanceStatusDeducted, advances[0].Status)
	})
}

func TestBulkAdvance_FilterAndZeroValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	env.hire(t, "Bruno", "0", date(2024, 1, 1), nil)
	sales := env.hire(t, "Carla", "3000", date(2024, 1, 1), nil)
	sales.Sector = strPtr("sales")
	_, err := env.employees.Update(ctx, sales)
	require.NoError(t, err)

	competence := env.generate(t, false)

	everyone, err := env.svc.CreateBulkAdvanceEvent(ctx, payroll.BulkAdvanceRequest{
		CompetenceID: competence.ID, Description: "Advance", EventDate: date(2025, 1, 15), Percentage: decPtr("40"),
	})
	require.NoError(t, err)
	// Bruno earns nothing and gets no advance.
	assertDecimal(t, "2240", everyone.TotalAmount)

	salesOnly, err := env.svc.CreateBulkAdvanceEvent(ctx, payroll.BulkAdvanceRequest{
		CompetenceID: competence.ID, Description: "Sales advance", EventDate: date(2025, 1, 20),
		Amount: decPtr("333.333"), Filter: payroll.AdvanceTargetFilter{Sector: strPtr("sales")},
	})
	require.NoError(t, err)
	assertDecimal(t, "333.33", salesOnly.TotalAmount)

	advances, err := env.advances.List(ctx, employee.AdvanceFilter{EventID: &salesOnly.ID})
	require.NoError(t, err)
	require.Len(t, advances, 1)
	assert.Equal(t, sales.ID, advances[0].EmployeeID)
}

func TestSweep_NoDoubleDeduction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, true)
	final := env.onlyEvent(t, competence.ID)

	env.advance(t, ana.ID, "150", date(2025, 1, 20))

	n, err := env.svc.SweepPendingAdvances(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.svc.SweepPendingAdvances(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	event, err := env.svc.GetEvent(ctx, final.ID)
	require.NoError(t, err)
	assertDecimal(t, "2450", event.TotalAmount)
}

func TestLineItems_DraftOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	adv := env.advance(t, ana.ID, "200", date(2025, 1, 10))
	bonus := env.component(t, "BONUS", catalog.KindCredit, catalog.BasisFixedAmount)

	competence := env.generate(t, true)
	final := env.onlyEvent(t, competence.ID)

	item, err := env.svc.AddManualLineItem(ctx, payroll.AddLineItemRequest{
		EventID: &final.ID, EmployeeID: ana.ID, PayComponentID: bonus.ID, Amount: dec("500"), Justification: "Goal bonus",
	})
	require.NoError(t, err)
	event, err := env.svc.GetEvent(ctx, final.ID)
	require.NoError(t, err)
	assertDecimal(t, "2900", event.TotalAmount)

	_, err = env.svc.CloseEvent(ctx, payroll.CloseEventRequest{ID: final.ID})
	require.NoError(t, err)

	_, err = env.svc.AddManualLineItem(ctx, payroll.AddLineItemRequest{
		EventID: &final.ID, EmployeeID: ana.ID, PayComponentID: bonus.ID, Amount: dec("1"),
	})
	var stateErr *payroll.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, payroll.StatusClosed, stateErr.Actual)
	assert.ErrorIs(t, env.svc.RemoveLineItem(ctx, item.ID), payroll.ErrInvalidState)

	_, err = env.svc.ReopenEvent(ctx, final.ID)
	require.NoError(t, err)
	require.NoError(t, env.svc.RemoveLineItem(ctx, item.ID))

	// Removing the deduction hands the advance back to the next sweep.
	deductions, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{AdvanceID: &adv.ID})
	require.NoError(t, err)
	require.Len(t, deductions, 1)
	require.NoError(t, env.svc.RemoveLineItem(ctx, deductions[0].ID))

	got, err := env.advances.GetByID(ctx, adv.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.AdvanceStatusPending, got.Status)

	summary, err := env.svc.RefreshEmployeeSummary(ctx, competence.ID, ana.ID)
	require.NoError(t, err)
	assertDecimal(t, "2600", summary.Net)
}

func TestAddManualLineItem_CompetenceTarget(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	bonus := env.component(t, "BONUS", catalog.KindCredit, catalog.BasisFixedAmount)
	competence := env.generate(t, false)

	_, err := env.svc.AddManualLineItem(ctx, payroll.AddLineItemRequest{EmployeeID: ana.ID, PayComponentID: bonus.ID, Amount: dec("10")})
	assert.ErrorIs(t, err, payroll.ErrEventTargetMissing)

	first, err := env.svc.AddManualLineItem(ctx, payroll.AddLineItemRequest{
		CompetenceID: &competence.ID, EmployeeID: ana.ID, PayComponentID: bonus.ID, Amount: dec("100"),
	})
	require.NoError(t, err)
	second, err := env.svc.AddManualLineItem(ctx, payroll.AddLineItemRequest{
		CompetenceID: &competence.ID, EmployeeID: ana.ID, PayComponentID: bonus.ID, Amount: dec("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.EventID, second.EventID)

	event := env.onlyEvent(t, competence.ID)
	assert.Equal(t, "Final Payment 01/2025", event.Description)
	assertDecimal(t, "150", event.TotalAmount)
}

func TestRefreshEmployeeSummary_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	env.advance(t, ana.ID, "200", date(2025, 1, 10))
	competence := env.generate(t, true)

	first, err := env.svc.RefreshEmployeeSummary(ctx, competence.ID, ana.ID)
	require.NoError(t, err)
	second, err := env.svc.RefreshEmployeeSummary(ctx, competence.ID, ana.ID)
	require.NoError(t, err)

	assert.True(t, first.TotalCredits.Equal(second.TotalCredits))
	assert.True(t, first.TotalDebits.Equal(second.TotalDebits))
	assert.True(t, first.Net.Equal(second.Net))
	assert.Equal(t, "Ana", second.EmployeeName)
}

func TestThirteenthSalary(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultPayrollConfig()
	cfg.ThirteenthSecondInstallmentFactor = dec("0.4")
	env := newTestEnv(t, cfg)
	env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, false)

	_, err := env.svc.CreateThirteenthSalaryEvent(ctx, payroll.ThirteenthSalaryRequest{
		CompetenceID: competence.ID, Description: "13th", EventDate: date(2025, 1, 20), Installment: 3,
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidInstallment)

	tests := []struct {
		name        string
		installment int
		want        string
	}{
		{name: "first installment", installment: 1, want: "1300"},
		{name: "second installment", installment: 2, want: "1040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := env.svc.CreateThirteenthSalaryEvent(ctx, payroll.ThirteenthSalaryRequest{
				CompetenceID: competence.ID, Description: tt.name, EventDate: date(2025, 1, 20), Installment: tt.installment,
			})
			require.NoError(t, err)
			assert.Equal(t, payroll.EventTypeThirteenthSalary, event.Type)
			assertDecimal(t, tt.want, event.TotalAmount)

			items, err := env.svc.ListLineItems(ctx, payroll.LineItemFilter{EventID: &event.ID})
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, fmt.Sprintf("13th salary - installment %d", tt.installment), items[0].Justification)
		})
	}
}

func TestEvent_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	competence := env.generate(t, true)

	_, err := env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "other", Description: "February", EventDate: date(2025, 2, 1),
	})
	assert.ErrorIs(t, err, payroll.ErrEventDateOutsideCompetence)

	_, err = env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "other", Description: "Final Payment 01/2025", EventDate: date(2025, 1, 20),
	})
	assert.ErrorIs(t, err, payroll.ErrEventDescriptionExists)

	_, err = env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "bonus", Description: "Bonus", EventDate: date(2025, 1, 20),
	})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestCompetence_StateMachine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, true)

	_, err := env.svc.ReopenCompetence(ctx, competence.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidState)
	_, err = env.svc.MarkCompetencePaid(ctx, competence.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidState)

	closed, err := env.svc.CloseCompetence(ctx, competence.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	_, err = env.svc.CloseCompetence(ctx, competence.ID)
	var stateErr *payroll.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "competence", stateErr.Entity)
	assert.Equal(t, payroll.StatusClosed, stateErr.Actual)

	_, err = env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "other", Description: "Late bonus", EventDate: date(2025, 1, 20),
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidState)

	reopened, err := env.svc.ReopenCompetence(ctx, competence.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)

	_, err = env.svc.CloseCompetence(ctx, competence.ID)
	require.NoError(t, err)
	paid, err := env.svc.MarkCompetencePaid(ctx, competence.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.Status)

	_, err = env.svc.CancelCompetence(ctx, competence.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidState)
	assert.ErrorIs(t, env.svc.DeleteCompetence(ctx, competence.ID), payroll.ErrInvalidState)

	got, err := env.svc.GetCompetence(ctx, competence.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, got.Status)
}

func TestEvent_StateMachine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, true)
	final := env.onlyEvent(t, competence.ID)

	_, err := env.svc.ReopenEvent(ctx, final.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidState)

	paid, err := env.svc.MarkEventPaid(ctx, payroll.MarkEventPaidRequest{ID: final.ID, PaymentDate: timePtr(date(2025, 2, 5))})
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.Status)
	assert.Equal(t, date(2025, 2, 5), *paid.PaymentDate)

	_, err = env.svc.CancelEvent(ctx, final.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidState)
	_, err = env.svc.CloseEvent(ctx, payroll.CloseEventRequest{ID: final.ID})
	assert.ErrorIs(t, err, payroll.ErrInvalidState)

	other, err := env.svc.CreateEvent(ctx, payroll.CreateEventRequest{
		CompetenceID: competence.ID, Type: "other", Description: "Extra", EventDate: date(2025, 1, 20), AutoProcess: true,
	})
	require.NoError(t, err)
	cancelled, err := env.svc.CancelEvent(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusCancelled, cancelled.Status)

	overview, err := env.svc.GetOverview(ctx, competence.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.EventCount)
	assertDecimal(t, "2600", overview.PaidTotal)
	assertDecimal(t, "0", overview.PendingTotal)
}

func TestDeleteCompetence_RevertsAdvances(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	adv := env.advance(t, ana.ID, "200", date(2025, 1, 10))
	competence := env.generate(t, true)

	require.NoError(t, env.svc.DeleteCompetence(ctx, competence.ID))

	_, err := env.svc.GetCompetence(ctx, competence.ID)
	assert.ErrorIs(t, err, payroll.ErrCompetenceNotFound)
	got, err := env.advances.GetByID(ctx, adv.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.AdvanceStatusPending, got.Status)

	// The period can be generated again and deducts the advance once more.
	again := env.generate(t, true)
	assertDecimal(t, "2400", env.onlyEvent(t, again.ID).TotalAmount)
}

func TestGeneratePayroll_EligibleSetOutlivesContractDeletion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultPayrollConfig())
	ana := env.hire(t, "Ana", "2600", date(2024, 1, 1), nil)
	competence := env.generate(t, false)

	contracts, err := env.contracts.ListByEmployee(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, contracts, 1)

	assert.ErrorIs(t, env.contracts.Delete(ctx, contracts[0].ID), employee.ErrContractInUse)
	assert.ErrorIs(t, env.employees.Delete(ctx, ana.ID), employee.ErrEmployeeInUse)

	eligible, err := env.svc.ListEligibleEmployees(ctx, competence.ID)
	require.NoError(t, err)
	assert.Len(t, eligible, 1)

	// Once the competence is gone nothing pins the contract.
	require.NoError(t, env.svc.DeleteCompetence(ctx, competence.ID))
	assert.NoError(t, env.contracts.Delete(ctx, contracts[0].ID))
}

func TestGeneratePayroll_MissingSystemComponent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	contracts := memory.NewContractRepository(store)
	svc := NewPayrollService(
		store,
		memory.NewCompetenceRepository(store),
		memory.NewEventRepository(store),
		memory.NewLineItemRepository(store),
		memory.NewSummaryRepository(store),
		memory.NewPayComponentRepository(store),
		memory.NewGeneralFixedEntryRepository(store),
		contracts,
		memory.NewFixedEntryRepository(store),
		memory.NewAdvanceRepository(store),
		config.DefaultPayrollConfig(),
	)

	e, err := employees.Create(ctx, employee.Employee{
		FullName: "Ana", TaxID: "52998224725", BaseSalary: dec("2600"), Status: employee.StatusActive,
		InPayroll: true, AdmissionDate: date(2024, 1, 1),
	})
	require.NoError(t, err)
	_, err = contracts.Create(ctx, employee.Contract{EmployeeID: e.ID, ContractType: "clt", StartDate: date(2024, 1, 1), WeeklyHours: 40})
	require.NoError(t, err)

	_, err = svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{Month: 1, Year: 2025, CreateDefaultEvent: true})
	assert.ErrorIs(t, err, catalog.ErrSystemComponentMissing)

	// Nothing of the failed run survives.
	_, err = svc.GetCompetenceByPeriod(ctx, 1, 2025)
	assert.ErrorIs(t, err, payroll.ErrCompetenceNotFound)
}
