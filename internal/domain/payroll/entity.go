package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Status is shared by competences and events.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusClosed    Status = "closed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Period - a payroll month, the half-open interval [Start, End)
type Period struct {
	Month int
	Year  int
}

func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 || year < 2000 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Month: month, Year: year}, nil
}

// Start is the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End is the first day of the following month, excluded from the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) LastDay() time.Time {
	return p.End().AddDate(0, 0, -1)
}

func (p Period) Contains(day time.Time) bool {
	return !day.Before(p.Start()) && day.Before(p.End())
}

func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// Competence - the payroll of one month
type Competence struct {
	ID        string
	Month     int
	Year      int
	Status    Status
	ClosedAt  *time.Time
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Competence) Period() Period {
	return Period{Month: c.Month, Year: c.Year}
}

func (c Competence) stateError(op string, allowed ...Status) error {
	return &StateError{Entity: "competence", ID: c.ID, Operation: op, Actual: c.Status, Allowed: allowed}
}

// RequireDraft fails unless the competence still accepts new events.
func (c Competence) RequireDraft(op string) error {
	if c.Status != StatusDraft {
		return c.stateError(op, StatusDraft)
	}
	return nil
}

func (c *Competence) Close(now time.Time) error {
	if c.Status != StatusDraft {
		return c.stateError("close", StatusDraft)
	}
	c.Status = StatusClosed
	c.ClosedAt = &now
	return nil
}

func (c *Competence) Reopen() error {
	if c.Status != StatusClosed {
		return c.stateError("reopen", StatusClosed)
	}
	c.Status = StatusDraft
	c.ClosedAt = nil
	return nil
}

func (c *Competence) MarkPaid() error {
	if c.Status != StatusClosed {
		return c.stateError("mark paid", StatusClosed)
	}
	c.Status = StatusPaid
	return nil
}

func (c *Competence) Cancel() error {
	if c.Status != StatusDraft && c.Status != StatusClosed {
		return c.stateError("cancel", StatusDraft, StatusClosed)
	}
	c.Status = StatusCancelled
	return nil
}

// CanDelete holds for competences that never left draft or were cancelled.
func (c Competence) CanDelete() error {
	if c.Status != StatusDraft && c.Status != StatusCancelled {
		return c.stateError("delete", StatusDraft, StatusCancelled)
	}
	return nil
}

type EventType string

const (
	EventTypeAdvance          EventType = "advance"
	EventTypeFinalPayment     EventType = "final_payment"
	EventTypeThirteenthSalary EventType = "thirteenth_salary"
	EventTypeVacation         EventType = "vacation"
	EventTypeTermination      EventType = "termination"
	EventTypeOther            EventType = "other"
)

// Event - a payment inside a competence
type Event struct {
	ID           string
	CompetenceID string
	Type         EventType
	Description  string
	EventDate    time.Time
	PaymentDate  *time.Time
	Status       Status
	// TotalAmount caches the net of the line items; advance events also
	// count the advances they disbursed.
	TotalAmount decimal.Decimal
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Event) stateError(op string, allowed ...Status) error {
	return &StateError{Entity: "event", ID: e.ID, Operation: op, Actual: e.Status, Allowed: allowed}
}

// RequireDraft fails unless line items may still be posted or removed.
func (e Event) RequireDraft(op string) error {
	if e.Status != StatusDraft {
		return e.stateError(op, StatusDraft)
	}
	return nil
}

func (e *Event) Close() error {
	if e.Status != StatusDraft {
		return e.stateError("close", StatusDraft)
	}
	e.Status = StatusClosed
	return nil
}

func (e *Event) Reopen() error {
	if e.Status != StatusClosed {
		return e.stateError("reopen", StatusClosed)
	}
	e.Status = StatusDraft
	return nil
}

func (e *Event) MarkPaid(paymentDate time.Time) error {
	if e.Status != StatusDraft && e.Status != StatusClosed {
		return e.stateError("mark paid", StatusDraft, StatusClosed)
	}
	e.Status = StatusPaid
	e.PaymentDate = &paymentDate
	return nil
}

func (e *Event) Cancel() error {
	if e.Status != StatusDraft && e.Status != StatusClosed {
		return e.stateError("cancel", StatusDraft, StatusClosed)
	}
	e.Status = StatusCancelled
	return nil
}

// LineItem - one credit or debit posted to an employee inside an event
type LineItem struct {
	ID              string
	EventID         string
	CompetenceID    string
	EmployeeID      string
	PayComponentID  string
	Amount          decimal.Decimal
	CalculationBase *decimal.Decimal
	Justification   string
	AdvanceID       *string
	CreatedAt       time.Time

	// Joined fields
	ComponentKind catalog.Kind
	ComponentCode string
	ComponentName string
	EmployeeName  string
}

// Signed returns the amount with the sign its component kind gives it.
func (l LineItem) Signed() decimal.Decimal {
	if l.ComponentKind == catalog.KindDebit {
		return l.Amount.Neg()
	}
	return l.Amount
}

type Totals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Net     decimal.Decimal
}

func NewTotals(credits, debits decimal.Decimal) Totals {
	return Totals{Credits: credits, Debits: debits, Net: credits.Sub(debits)}
}

// SumLineItems splits the amounts by component kind.
func SumLineItems(items []LineItem) Totals {
	credits, debits := decimal.Zero, decimal.Zero
	for _, item := range items {
		switch item.ComponentKind {
		case catalog.KindCredit:
			credits = credits.Add(item.Amount)
		case catalog.KindDebit:
			debits = debits.Add(item.Amount)
		}
	}
	return NewTotals(credits, debits)
}

// EmployeeSummary - materialized totals of one employee inside a competence
type EmployeeSummary struct {
	CompetenceID string
	EmployeeID   string
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	Net          decimal.Decimal
	UpdatedAt    time.Time

	// Joined fields
	EmployeeName string
}

func (s EmployeeSummary) Totals() Totals {
	return Totals{Credits: s.TotalCredits, Debits: s.TotalDebits, Net: s.Net}
}

// CompetenceOverview - dashboard figures of a competence
type CompetenceOverview struct {
	Competence    Competence
	Totals        Totals
	EventCount    int
	EmployeeCount int
	PaidTotal     decimal.Decimal
	PendingTotal  decimal.Decimal
}
