package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type contractRepository struct {
	db *database.DB
}

func NewContractRepository(db *database.DB) employee.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, employee_id, contract_type, start_date, end_date, weekly_hours, notes, created_at, updated_at`

func scanContract(row pgx.Row) (employee.Contract, error) {
	var c employee.Contract
	err := row.Scan(&c.ID, &c.EmployeeID, &c.ContractType, &c.StartDate, &c.EndDate, &c.WeeklyHours, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *contractRepository) Create(ctx context.Context, c employee.Contract) (employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contracts (id, employee_id, contract_type, start_date, end_date, weekly_hours, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + contractColumns

	created, err := scanContract(q.QueryRow(ctx, query,
		newID(), c.EmployeeID, c.ContractType, c.StartDate, c.EndDate, c.WeeklyHours, c.Notes,
	))
	if err != nil {
		if violates(err, "fk_contracts_employee") {
			return employee.Contract{}, employee.ErrEmployeeNotFound
		}
		return employee.Contract{}, fmt.Errorf("failed to create contract: %w", err)
	}

	return created, nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanContract(q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Contract{}, employee.ErrContractNotFound
		}
		return employee.Contract{}, fmt.Errorf("failed to get contract: %w", err)
	}

	return c, nil
}

func (r *contractRepository) ListByEmployee(ctx context.Context, employeeID string) ([]employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE employee_id = $1 ORDER BY start_date DESC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]employee.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}

	return contracts, rows.Err()
}

func (r *contractRepository) ListEligible(ctx context.Context, start, end time.Time) ([]employee.EligibleContract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, e.id, e.full_name, e.tax_id, e.email, e.base_salary, e.status, e.in_payroll, e.admission_date,
			   e.sector, e.role, e.superior_id, e.notes, e.created_at, e.updated_at
		FROM contracts c
		JOIN employees e ON e.id = c.employee_id
		WHERE e.in_payroll = TRUE
		  AND c.start_date < $2
		  AND (c.end_date IS NULL OR c.end_date >= $1)
		ORDER BY e.full_name, c.start_date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible contracts: %w", err)
	}
	defer rows.Close()

	return scanEligibleContracts(rows)
}

func scanEligibleContracts(rows pgx.Rows) ([]employee.EligibleContract, error) {
	eligible := make([]employee.EligibleContract, 0)
	for rows.Next() {
		var ec employee.EligibleContract
		e := &ec.Employee
		if err := rows.Scan(
			&ec.ContractID, &e.ID, &e.FullName, &e.TaxID, &e.Email, &e.BaseSalary, &e.Status, &e.InPayroll, &e.AdmissionDate,
			&e.Sector, &e.Role, &e.SuperiorID, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan eligible contract: %w", err)
		}
		eligible = append(eligible, ec)
	}
	return eligible, rows.Err()
}

func (r *contractRepository) Update(ctx context.Context, c employee.Contract) (employee.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE contracts
		SET contract_type = $2, start_date = $3, end_date = $4, weekly_hours = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contractColumns

	updated, err := scanContract(q.QueryRow(ctx, query, c.ID, c.ContractType, c.StartDate, c.EndDate, c.WeeklyHours, c.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Contract{}, employee.ErrContractNotFound
		}
		return employee.Contract{}, fmt.Errorf("failed to update contract: %w", err)
	}

	return updated, nil
}

func (r *contractRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		if violates(err, "fk_competence_contracts_contract") {
			return employee.ErrContractInUse
		}
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrContractNotFound
	}

	return nil
}
