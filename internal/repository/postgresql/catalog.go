package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payComponentRepository struct {
	db *database.DB
}

func NewPayComponentRepository(db *database.DB) catalog.PayComponentRepository {
	return &payComponentRepository{db: db}
}

const payComponentColumns = `id, code, name, kind, basis, description, is_active, created_at, updated_at`

func scanPayComponent(row pgx.Row) (catalog.PayComponent, error) {
	var c catalog.PayComponent
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Kind, &c.Basis, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func mapPayComponentError(err error) error {
	switch {
	case violates(err, "uk_pay_components_code"):
		return catalog.ErrPayComponentCodeExists
	case violates(err, "uk_pay_components_name"):
		return catalog.ErrPayComponentNameExists
	}
	return nil
}

func (r *payComponentRepository) Create(ctx context.Context, component catalog.PayComponent) (catalog.PayComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_components (id, code, name, kind, basis, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + payComponentColumns

	c, err := scanPayComponent(q.QueryRow(ctx, query,
		newID(), component.Code, component.Name, component.Kind, component.Basis, component.Description, component.IsActive,
	))
	if err != nil {
		if mapped := mapPayComponentError(err); mapped != nil {
			return catalog.PayComponent{}, mapped
		}
		return catalog.PayComponent{}, fmt.Errorf("failed to create pay component: %w", err)
	}

	return c, nil
}

func (r *payComponentRepository) GetByID(ctx context.Context, id string) (catalog.PayComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payComponentColumns + ` FROM pay_components WHERE id = $1`

	c, err := scanPayComponent(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.PayComponent{}, catalog.ErrPayComponentNotFound
		}
		return catalog.PayComponent{}, fmt.Errorf("failed to get pay component: %w", err)
	}

	return c, nil
}

func (r *payComponentRepository) GetByCode(ctx context.Context, code string) (catalog.PayComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payComponentColumns + ` FROM pay_components WHERE code = $1`

	c, err := scanPayComponent(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.PayComponent{}, catalog.ErrPayComponentNotFound
		}
		return catalog.PayComponent{}, fmt.Errorf("failed to get pay component by code: %w", err)
	}

	return c, nil
}

func (r *payComponentRepository) List(ctx context.Context, filter catalog.PayComponentFilter) ([]catalog.PayComponent, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	argIdx := 1

	if filter.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *filter.Kind)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := `SELECT ` + payComponentColumns + ` FROM pay_components`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay components: %w", err)
	}
	defer rows.Close()

	components := make([]catalog.PayComponent, 0)
	for rows.Next() {
		c, err := scanPayComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pay component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

func (r *payComponentRepository) Update(ctx context.Context, component catalog.PayComponent) (catalog.PayComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_components
		SET code = $2, name = $3, kind = $4, basis = $5, description = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payComponentColumns

	c, err := scanPayComponent(q.QueryRow(ctx, query,
		component.ID, component.Code, component.Name, component.Kind, component.Basis, component.Description, component.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.PayComponent{}, catalog.ErrPayComponentNotFound
		}
		if mapped := mapPayComponentError(err); mapped != nil {
			return catalog.PayComponent{}, mapped
		}
		return catalog.PayComponent{}, fmt.Errorf("failed to update pay component: %w", err)
	}

	return c, nil
}

func (r *payComponentRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM pay_components WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return catalog.ErrPayComponentInUse
		}
		return fmt.Errorf("failed to delete pay component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrPayComponentNotFound
	}

	return nil
}

// ========== GENERAL FIXED ENTRIES ==========

type generalFixedEntryRepository struct {
	db *database.DB
}

func NewGeneralFixedEntryRepository(db *database.DB) catalog.GeneralFixedEntryRepository {
	return &generalFixedEntryRepository{db: db}
}

const generalEntrySelect = `
	SELECT g.id, g.pay_component_id, g.amount, g.percentage, g.active_from, g.active_until,
		   g.notes, g.is_active, g.created_at, g.updated_at,
		   c.id, c.code, c.name, c.kind, c.basis, c.description, c.is_active, c.created_at, c.updated_at
	FROM general_fixed_entries g
	JOIN pay_components c ON c.id = g.pay_component_id
`

func scanGeneralEntry(row pgx.Row) (catalog.GeneralFixedEntry, error) {
	var e catalog.GeneralFixedEntry
	var c catalog.PayComponent
	err := row.Scan(
		&e.ID, &e.PayComponentID, &e.Amount, &e.Percentage, &e.ActiveFrom, &e.ActiveUntil,
		&e.Notes, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		&c.ID, &c.Code, &c.Name, &c.Kind, &c.Basis, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return catalog.GeneralFixedEntry{}, err
	}
	e.Component = &c
	return e, nil
}

func (r *generalFixedEntryRepository) listWhere(ctx context.Context, where string, args ...any) ([]catalog.GeneralFixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := generalEntrySelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY g.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list general fixed entries: %w", err)
	}
	defer rows.Close()

	entries := make([]catalog.GeneralFixedEntry, 0)
	for rows.Next() {
		e, err := scanGeneralEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan general fixed entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *generalFixedEntryRepository) Create(ctx context.Context, entry catalog.GeneralFixedEntry) (catalog.GeneralFixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	id := newID()
	query := `
		INSERT INTO general_fixed_entries (id, pay_component_id, amount, percentage, active_from, active_until, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		id, entry.PayComponentID, entry.Amount, entry.Percentage, entry.ActiveFrom, entry.ActiveUntil, entry.Notes, entry.IsActive,
	)
	if err != nil {
		if violates(err, "fk_general_fixed_entries_pay_component") {
			return catalog.GeneralFixedEntry{}, catalog.ErrPayComponentNotFound
		}
		return catalog.GeneralFixedEntry{}, fmt.Errorf("failed to create general fixed entry: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *generalFixedEntryRepository) GetByID(ctx context.Context, id string) (catalog.GeneralFixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanGeneralEntry(q.QueryRow(ctx, generalEntrySelect+" WHERE g.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.GeneralFixedEntry{}, catalog.ErrGeneralEntryNotFound
		}
		return catalog.GeneralFixedEntry{}, fmt.Errorf("failed to get general fixed entry: %w", err)
	}

	return e, nil
}

func (r *generalFixedEntryRepository) List(ctx context.Context, filter catalog.GeneralEntryFilter) ([]catalog.GeneralFixedEntry, error) {
	var conditions []string
	var args []any

	if filter.PayComponentID != nil {
		args = append(args, *filter.PayComponentID)
		conditions = append(conditions, fmt.Sprintf("g.pay_component_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "g.is_active = TRUE")
	}

	return r.listWhere(ctx, strings.Join(conditions, " AND "), args...)
}

func (r *generalFixedEntryRepository) ListActiveDuring(ctx context.Context, start, end time.Time) ([]catalog.GeneralFixedEntry, error) {
	return r.listWhere(ctx,
		"g.is_active = TRUE AND g.active_from < $2 AND (g.active_until IS NULL OR g.active_until >= $1)",
		start, end,
	)
}

func (r *generalFixedEntryRepository) Update(ctx context.Context, entry catalog.GeneralFixedEntry) (catalog.GeneralFixedEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE general_fixed_entries
		SET pay_component_id = $2, amount = $3, percentage = $4, active_from = $5, active_until = $6,
			notes = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		entry.ID, entry.PayComponentID, entry.Amount, entry.Percentage, entry.ActiveFrom, entry.ActiveUntil, entry.Notes, entry.IsActive,
	)
	if err != nil {
		if violates(err, "fk_general_fixed_entries_pay_component") {
			return catalog.GeneralFixedEntry{}, catalog.ErrPayComponentNotFound
		}
		return catalog.GeneralFixedEntry{}, fmt.Errorf("failed to update general fixed entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.GeneralFixedEntry{}, catalog.ErrGeneralEntryNotFound
	}

	return r.GetByID(ctx, entry.ID)
}

func (r *generalFixedEntryRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM general_fixed_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete general fixed entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrGeneralEntryNotFound
	}

	return nil
}
