package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
)

type PayrollService interface {
	// Competences
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (Competence, error)
	GetCompetence(ctx context.Context, id string) (Competence, error)
	GetCompetenceByPeriod(ctx context.Context, month, year int) (Competence, error)
	ListCompetences(ctx context.Context, filter CompetenceFilter) ([]Competence, error)
	DeleteCompetence(ctx context.Context, id string) error
	CloseCompetence(ctx context.Context, id string) (Competence, error)
	ReopenCompetence(ctx context.Context, id string) (Competence, error)
	MarkCompetencePaid(ctx context.Context, id string) (Competence, error)
	CancelCompetence(ctx context.Context, id string) (Competence, error)
	ListEligibleEmployees(ctx context.Context, competenceID string) ([]employee.Employee, error)

	// Events
	CreateEvent(ctx context.Context, req CreateEventRequest) (Event, error)
	CreateBulkAdvanceEvent(ctx context.Context, req BulkAdvanceRequest) (Event, error)
	CreateThirteenthSalaryEvent(ctx context.Context, req ThirteenthSalaryRequest) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, competenceID string) ([]Event, error)
	CloseEvent(ctx context.Context, req CloseEventRequest) (Event, error)
	ReopenEvent(ctx context.Context, id string) (Event, error)
	MarkEventPaid(ctx context.Context, req MarkEventPaidRequest) (Event, error)
	CancelEvent(ctx context.Context, id string) (Event, error)
	// SweepPendingAdvances deducts, inside a draft event, every pending
	// advance of the competence employees. It returns the number deducted.
	SweepPendingAdvances(ctx context.Context, eventID string) (int, error)
	RecomputeEventTotal(ctx context.Context, eventID string) (Event, error)

	// Line items
	AddManualLineItem(ctx context.Context, req AddLineItemRequest) (LineItem, error)
	RemoveLineItem(ctx context.Context, id string) error
	ListLineItems(ctx context.Context, filter LineItemFilter) ([]LineItem, error)

	// Aggregation
	CompetenceTotals(ctx context.Context, competenceID string) (Totals, error)
	EventTotals(ctx context.Context, eventID string) (Totals, error)
	RefreshEmployeeSummary(ctx context.Context, competenceID, employeeID string) (EmployeeSummary, error)
	ListSummaries(ctx context.Context, competenceID string) ([]EmployeeSummary, error)
	GetOverview(ctx context.Context, competenceID string) (CompetenceOverview, error)
}
