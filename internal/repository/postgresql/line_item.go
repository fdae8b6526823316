package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type lineItemRepository struct {
	db *database.DB
}

func NewLineItemRepository(db *database.DB) payroll.LineItemRepository {
	return &lineItemRepository{db: db}
}

const lineItemSelect = `
	SELECT li.id, li.event_id, li.competence_id, li.employee_id, li.pay_component_id, li.amount,
		   li.calculation_base, li.justification, li.advance_id, li.created_at,
		   pc.kind, pc.code, pc.name, e.full_name
	FROM line_items li
	JOIN pay_components pc ON pc.id = li.pay_component_id
	JOIN employees e ON e.id = li.employee_id
`

func scanLineItem(row pgx.Row) (payroll.LineItem, error) {
	var li payroll.LineItem
	err := row.Scan(
		&li.ID, &li.EventID, &li.CompetenceID, &li.EmployeeID, &li.PayComponentID, &li.Amount,
		&li.CalculationBase, &li.Justification, &li.AdvanceID, &li.CreatedAt,
		&li.ComponentKind, &li.ComponentCode, &li.ComponentName, &li.EmployeeName,
	)
	return li, err
}

// lineItemConditions renders the filter as a WHERE clause over the li alias.
func lineItemConditions(filter payroll.LineItemFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf("li.%s = $%d", column, len(args)))
	}
	add("event_id", filter.EventID)
	add("competence_id", filter.CompetenceID)
	add("employee_id", filter.EmployeeID)
	add("advance_id", filter.AdvanceID)

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *lineItemRepository) Create(ctx context.Context, item payroll.LineItem) (payroll.LineItem, error) {
	q := GetQuerier(ctx, r.db)

	id := newID()
	query := `
		INSERT INTO line_items (id, event_id, competence_id, employee_id, pay_component_id, amount,
			calculation_base, justification, advance_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, query,
		id, item.EventID, item.CompetenceID, item.EmployeeID, item.PayComponentID, item.Amount,
		item.CalculationBase, item.Justification, item.AdvanceID,
	)
	if err != nil {
		switch {
		case violates(err, "fk_line_items_event"):
			return payroll.LineItem{}, payroll.ErrEventNotFound
		case violates(err, "fk_line_items_competence"):
			return payroll.LineItem{}, payroll.ErrCompetenceNotFound
		case violates(err, "fk_line_items_employee"):
			return payroll.LineItem{}, employee.ErrEmployeeNotFound
		case violates(err, "fk_line_items_pay_component"):
			return payroll.LineItem{}, catalog.ErrPayComponentNotFound
		case violates(err, "fk_line_items_advance"):
			return payroll.LineItem{}, employee.ErrAdvanceNotFound
		}
		return payroll.LineItem{}, fmt.Errorf("failed to create line item: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *lineItemRepository) GetByID(ctx context.Context, id string) (payroll.LineItem, error) {
	q := GetQuerier(ctx, r.db)

	li, err := scanLineItem(q.QueryRow(ctx, lineItemSelect+" WHERE li.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.LineItem{}, payroll.ErrLineItemNotFound
		}
		return payroll.LineItem{}, fmt.Errorf("failed to get line item: %w", err)
	}

	return li, nil
}

func (r *lineItemRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM line_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrLineItemNotFound
	}

	return nil
}

func (r *lineItemRepository) List(ctx context.Context, filter payroll.LineItemFilter) ([]payroll.LineItem, error) {
	q := GetQuerier(ctx, r.db)

	where, args := lineItemConditions(filter)
	rows, err := q.Query(ctx, lineItemSelect+where+" ORDER BY li.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	items := make([]payroll.LineItem, 0)
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, li)
	}

	return items, rows.Err()
}

func (r *lineItemRepository) Totals(ctx context.Context, filter payroll.LineItemFilter) (payroll.Totals, error) {
	q := GetQuerier(ctx, r.db)

	where, args := lineItemConditions(filter)
	query := `
		SELECT COALESCE(SUM(li.amount) FILTER (WHERE pc.kind = 'credit'), 0),
			   COALESCE(SUM(li.amount) FILTER (WHERE pc.kind = 'debit'), 0)
		FROM line_items li
		JOIN pay_components pc ON pc.id = li.pay_component_id
	` + where

	var credits, debits decimal.Decimal
	if err := q.QueryRow(ctx, query, args...).Scan(&credits, &debits); err != nil {
		return payroll.Totals{}, fmt.Errorf("failed to total line items: %w", err)
	}

	return payroll.NewTotals(credits, debits), nil
}
