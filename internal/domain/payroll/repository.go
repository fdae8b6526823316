package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type CompetenceRepository interface {
	// Create fails with ErrDuplicateCompetence when the period already exists.
	Create(ctx context.Context, competence Competence) (Competence, error)
	GetByID(ctx context.Context, id string) (Competence, error)
	// GetByIDForUpdate locks the competence row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Competence, error)
	GetByPeriod(ctx context.Context, month, year int) (Competence, error)
	List(ctx context.Context, filter CompetenceFilter) ([]Competence, error)
	UpdateStatus(ctx context.Context, competence Competence) error
	// Delete cascades to events, line items, summaries and the eligible-contract set.
	Delete(ctx context.Context, id string) error

	AttachContracts(ctx context.Context, competenceID string, contractIDs []string) error
	// ListEligible returns the persisted eligible contracts with their employees, ordered by name.
	ListEligible(ctx context.Context, competenceID string) ([]employee.EligibleContract, error)
}

type EventRepository interface {
	// Create fails with ErrEventDescriptionExists when the description is taken in the competence.
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (Event, error)
	ListByCompetence(ctx context.Context, competenceID string) ([]Event, error)
	// FindFirstByType returns the earliest created event of a type, or ErrEventNotFound.
	FindFirstByType(ctx context.Context, competenceID string, eventType EventType) (Event, error)
	Update(ctx context.Context, event Event) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
}

type LineItemRepository interface {
	Create(ctx context.Context, item LineItem) (LineItem, error)
	GetByID(ctx context.Context, id string) (LineItem, error)
	Delete(ctx context.Context, id string) error
	// List returns matching items with component and employee fields joined.
	List(ctx context.Context, filter LineItemFilter) ([]LineItem, error)
	// Totals sums the matching items by component kind.
	Totals(ctx context.Context, filter LineItemFilter) (Totals, error)
}

type SummaryRepository interface {
	Upsert(ctx context.Context, summary EmployeeSummary) (EmployeeSummary, error)
	Get(ctx context.Context, competenceID, employeeID string) (EmployeeSummary, error)
	ListByCompetence(ctx context.Context, competenceID string) ([]EmployeeSummary, error)
}
