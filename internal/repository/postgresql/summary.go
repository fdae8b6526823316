package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) payroll.SummaryRepository {
	return &summaryRepository{db: db}
}

const summarySelect = `
	SELECT s.competence_id, s.employee_id, s.total_credits, s.total_debits, s.net, s.updated_at, e.full_name
	FROM employee_summaries s
	JOIN employees e ON e.id = s.employee_id
`

func scanSummary(row pgx.Row) (payroll.EmployeeSummary, error) {
	var s payroll.EmployeeSummary
	err := row.Scan(&s.CompetenceID, &s.EmployeeID, &s.TotalCredits, &s.TotalDebits, &s.Net, &s.UpdatedAt, &s.EmployeeName)
	return s, err
}

func (r *summaryRepository) Upsert(ctx context.Context, summary payroll.EmployeeSummary) (payroll.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_summaries (competence_id, employee_id, total_credits, total_debits, net)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uk_employee_summaries_pair DO UPDATE SET
			total_credits = EXCLUDED.total_credits,
			total_debits = EXCLUDED.total_debits,
			net = EXCLUDED.net,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query,
		summary.CompetenceID, summary.EmployeeID, summary.TotalCredits, summary.TotalDebits, summary.Net,
	)
	if err != nil {
		switch {
		case violates(err, "fk_employee_summaries_competence"):
			return payroll.EmployeeSummary{}, payroll.ErrCompetenceNotFound
		case violates(err, "fk_employee_summaries_employee"):
			return payroll.EmployeeSummary{}, employee.ErrEmployeeNotFound
		}
		return payroll.EmployeeSummary{}, fmt.Errorf("failed to upsert employee summary: %w", err)
	}

	return r.Get(ctx, summary.CompetenceID, summary.EmployeeID)
}

func (r *summaryRepository) Get(ctx context.Context, competenceID, employeeID string) (payroll.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSummary(q.QueryRow(ctx, summarySelect+" WHERE s.competence_id = $1 AND s.employee_id = $2", competenceID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.EmployeeSummary{}, payroll.ErrSummaryNotFound
		}
		return payroll.EmployeeSummary{}, fmt.Errorf("failed to get employee summary: %w", err)
	}

	return s, nil
}

func (r *summaryRepository) ListByCompetence(ctx context.Context, competenceID string) ([]payroll.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, summarySelect+" WHERE s.competence_id = $1 ORDER BY e.full_name, s.employee_id", competenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]payroll.EmployeeSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
