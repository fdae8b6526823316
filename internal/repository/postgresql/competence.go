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
)

type competenceRepository struct {
	db *database.DB
}

func NewCompetenceRepository(db *database.DB) payroll.CompetenceRepository {
	return &competenceRepository{db: db}
}

const competenceColumns = `id, month, year, status, closed_at, notes, created_at, updated_at`

func scanCompetence(row pgx.Row) (payroll.Competence, error) {
	var c payroll.Competence
	err := row.Scan(&c.ID, &c.Month, &c.Year, &c.Status, &c.ClosedAt, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *competenceRepository) Create(ctx context.Context, c payroll.Competence) (payroll.Competence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO competences (id, month, year, status, closed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + competenceColumns

	created, err := scanCompetence(q.QueryRow(ctx, query, newID(), c.Month, c.Year, c.Status, c.ClosedAt, c.Notes))
	if err != nil {
		if violates(err, "uk_competences_period") {
			return payroll.Competence{}, payroll.ErrDuplicateCompetence
		}
		return payroll.Competence{}, fmt.Errorf("failed to create competence: %w", err)
	}

	return created, nil
}

func (r *competenceRepository) getWhere(ctx context.Context, where string, args ...any) (payroll.Competence, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompetence(q.QueryRow(ctx, `SELECT `+competenceColumns+` FROM competences WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Competence{}, payroll.ErrCompetenceNotFound
		}
		return payroll.Competence{}, fmt.Errorf("failed to get competence: %w", err)
	}

	return c, nil
}

func (r *competenceRepository) GetByID(ctx context.Context, id string) (payroll.Competence, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *competenceRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Competence, error) {
	return r.getWhere(ctx, "id = $1 FOR UPDATE", id)
}

func (r *competenceRepository) GetByPeriod(ctx context.Context, month, year int) (payroll.Competence, error) {
	return r.getWhere(ctx, "month = $1 AND year = $2", month, year)
}

func (r *competenceRepository) List(ctx context.Context, filter payroll.CompetenceFilter) ([]payroll.Competence, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any

	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + competenceColumns + ` FROM competences`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY year DESC, month DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list competences: %w", err)
	}
	defer rows.Close()

	competences := make([]payroll.Competence, 0)
	for rows.Next() {
		c, err := scanCompetence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competence: %w", err)
		}
		competences = append(competences, c)
	}

	return competences, rows.Err()
}

func (r *competenceRepository) UpdateStatus(ctx context.Context, c payroll.Competence) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE competences SET status = $2, closed_at = $3, updated_at = NOW() WHERE id = $1`,
		c.ID, c.Status, c.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update competence status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCompetenceNotFound
	}

	return nil
}

// Delete relies on the ON DELETE rules of the schema: events, line items,
// summaries and the eligible-contract set go with the competence, and
// advances disbursed by its events lose their event reference.
func (r *competenceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM competences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete competence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCompetenceNotFound
	}

	return nil
}

func (r *competenceRepository) AttachContracts(ctx context.Context, competenceID string, contractIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO competence_contracts (competence_id, contract_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, contractID := range contractIDs {
		if _, err := q.Exec(ctx, query, competenceID, contractID); err != nil {
			switch {
			case violates(err, "fk_competence_contracts_competence"):
				return payroll.ErrCompetenceNotFound
			case violates(err, "fk_competence_contracts_contract"):
				return employee.ErrContractNotFound
			}
			return fmt.Errorf("failed to attach contract to competence: %w", err)
		}
	}

	return nil
}

func (r *competenceRepository) ListEligible(ctx context.Context, competenceID string) ([]employee.EligibleContract, error) {
	if _, err := r.GetByID(ctx, competenceID); err != nil {
		return nil, err
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, e.id, e.full_name, e.tax_id, e.email, e.base_salary, e.status, e.in_payroll, e.admission_date,
			   e.sector, e.role, e.superior_id, e.notes, e.created_at, e.updated_at
		FROM competence_contracts cc
		JOIN contracts c ON c.id = cc.contract_id
		JOIN employees e ON e.id = c.employee_id
		WHERE cc.competence_id = $1
		ORDER BY e.full_name, c.start_date
	`

	rows, err := q.Query(ctx, query, competenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competence contracts: %w", err)
	}
	defer rows.Close()

	return scanEligibleContracts(rows)
}
