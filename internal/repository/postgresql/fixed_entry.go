package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type fixedEntryRepository struct {
	db *database.DB
}

func NewFixedEntryRepository(db *database.DB) employee.FixedEntryRepository {
	return &fixedEntryRepository{db: db}
}

const fixedEntrySelect = `
	SELECT f.id, f.employee_id, f.pay_component_id, f.amount, f.percentage, f.active_from, f.active_until,
		   f.notes, f.created_at, f.updated_at,
		   c.id, c.code, c.name, c.kind, c.basis, c.description, c.is_active, c.created_at, c.updated_at
	FROM employee_fixed_entries f
	JOIN pay_components c ON c.id = f.pay_component_id
`

func scanFixedEntry(row pgx.Row) (employee.FixedEntry, error) {
	var e employee.FixedEntry
	var c catalog.PayComponent
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.PayComponentID, &e.Amount, &e.Percentage, &e.ActiveFrom, &e.ActiveUntil,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt,
		&c.ID, &c.Code, &c.Name, &c.Kind, &c.Basis, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return employee.FixedEntry{}, err
	}
	e.Component = &c
	return e, nil
}

func mapFixedEntryError(err error) error {
	switch {
	case violates(err, "fk_employee_fixed_entries_employee"):
		return employee.ErrEmployeeNotFound
	case violates(err, "fk_employee_fixed_entries_pay_component"):
		return catalog.ErrPayComponentNotFound
	}
	return nil
}

func (r *fixedEntryRepository) listWhere(ctx context.Context, where string, args ...any) ([]employee.FixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := fixedEntrySelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY f.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed entries: %w", err)
	}
	defer rows.Close()

	entries := make([]employee.FixedEntry, 0)
	for rows.Next() {
		e, err := scanFixedEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixed entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *fixedEntryRepository) Create(ctx context.Context, entry employee.FixedEntry) (employee.FixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	id := newID()
	query := `
		INSERT INTO employee_fixed_entries (id, employee_id, pay_component_id, amount, percentage, active_from, active_until, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		id, entry.EmployeeID, entry.PayComponentID, entry.Amount, entry.Percentage, entry.ActiveFrom, entry.ActiveUntil, entry.Notes,
	)
	if err != nil {
		if mapped := mapFixedEntryError(err); mapped != nil {
			return employee.FixedEntry{}, mapped
		}
		return employee.FixedEntry{}, fmt.Errorf("failed to create fixed entry: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *fixedEntryRepository) GetByID(ctx context.Context, id string) (employee.FixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanFixedEntry(q.QueryRow(ctx, fixedEntrySelect+" WHERE f.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.FixedEntry{}, employee.ErrFixedEntryNotFound
		}
		return employee.FixedEntry{}, fmt.Errorf("failed to get fixed entry: %w", err)
	}

	return e, nil
}

func (r *fixedEntryRepository) List(ctx context.Context, filter employee.FixedEntryFilter) ([]employee.FixedEntry, error) {
	var conditions []string
	var args []any

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("f.employee_id = $%d", len(args)))
	}

	return r.listWhere(ctx, strings.Join(conditions, " AND "), args...)
}

func (r *fixedEntryRepository) ListActiveForEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]employee.FixedEntry, error) {
	return r.listWhere(ctx,
		"f.employee_id = $1 AND f.active_from < $3 AND (f.active_until IS NULL OR f.active_until >= $2)",
		employeeID, start, end,
	)
}

func (r *fixedEntryRepository) Update(ctx context.Context, entry employee.FixedEntry) (employee.FixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_fixed_entries
		SET pay_component_id = $2, amount = $3, percentage = $4, active_from = $5, active_until = $6,
			notes = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		entry.ID, entry.PayComponentID, entry.Amount, entry.Percentage, entry.ActiveFrom, entry.ActiveUntil, entry.Notes,
	)
	if err != nil {
		if mapped := mapFixedEntryError(err); mapped != nil {
			return employee.FixedEntry{}, mapped
		}
		return employee.FixedEntry{}, fmt.Errorf("failed to update fixed entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.FixedEntry{}, employee.ErrFixedEntryNotFound
	}

	return r.GetByID(ctx, entry.ID)
}

func (r *fixedEntryRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_fixed_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fixed entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrFixedEntryNotFound
	}

	return nil
}
