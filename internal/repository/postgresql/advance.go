package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) employee.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `id, employee_id, event_id, date, amount, status, notes, created_at, updated_at`

func scanAdvance(row pgx.Row) (employee.Advance, error) {
	var a employee.Advance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.EventID, &a.Date, &a.Amount, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *advanceRepository) Create(ctx context.Context, a employee.Advance) (employee.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO advances (id, employee_id, event_id, date, amount, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + advanceColumns

	created, err := scanAdvance(q.QueryRow(ctx, query, newID(), a.EmployeeID, a.EventID, a.Date, a.Amount, a.Status, a.Notes))
	if err != nil {
		switch {
		case violates(err, "fk_advances_employee"):
			return employee.Advance{}, employee.ErrEmployeeNotFound
		case violates(err, "fk_advances_event"):
			return employee.Advance{}, payroll.ErrEventNotFound
		}
		return employee.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}

	return created, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string) (employee.Advance, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAdvance(q.QueryRow(ctx, `SELECT `+advanceColumns+` FROM advances WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Advance{}, employee.ErrAdvanceNotFound
		}
		return employee.Advance{}, fmt.Errorf("failed to get advance: %w", err)
	}

	return a, nil
}

func (r *advanceRepository) query(ctx context.Context, query string, args ...any) ([]employee.Advance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	advances := make([]employee.Advance, 0)
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}

	return advances, rows.Err()
}

func (r *advanceRepository) List(ctx context.Context, filter employee.AdvanceFilter) ([]employee.Advance, error) {
	var conditions []string
	var args []any

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		conditions = append(conditions, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + advanceColumns + ` FROM advances`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"

	return r.query(ctx, query, args...)
}

func (r *advanceRepository) ListPendingByEmployee(ctx context.Context, employeeID string) ([]employee.Advance, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = $1 AND status = 'pending'
		ORDER BY date, id
		FOR UPDATE
	`
	return r.query(ctx, query, employeeID)
}

// transition moves an advance between statuses only when it is still in
// the expected one, so two concurrent deductions cannot both succeed.
func (r *advanceRepository) transition(ctx context.Context, id string, from, to employee.AdvanceStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE advances SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("failed to update advance status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return employee.ErrAdvanceNotPending
}

func (r *advanceRepository) MarkDeducted(ctx context.Context, id string) error {
	return r.transition(ctx, id, employee.AdvanceStatusPending, employee.AdvanceStatusDeducted)
}

func (r *advanceRepository) MarkPending(ctx context.Context, id string) error {
	err := r.transition(ctx, id, employee.AdvanceStatusDeducted, employee.AdvanceStatusPending)
	if errors.Is(err, employee.ErrAdvanceNotPending) {
		return nil
	}
	return err
}

func (r *advanceRepository) Cancel(ctx context.Context, id string) error {
	return r.transition(ctx, id, employee.AdvanceStatusPending, employee.AdvanceStatusCancelled)
}

func (r *advanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM advances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete advance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrAdvanceNotFound
	}

	return nil
}

func (r *advanceRepository) SumByEvent(ctx context.Context, eventID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM advances WHERE event_id = $1 AND status <> 'cancelled'`,
		eventID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum advances by event: %w", err)
	}

	return total, nil
}
