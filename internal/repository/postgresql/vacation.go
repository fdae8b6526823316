package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type vacationRepository struct {
	db *database.DB
}

func NewVacationRepository(db *database.DB) employee.VacationRepository {
	return &vacationRepository{db: db}
}

const vacationColumns = `id, employee_id, acquisition_start, acquisition_end, start_date, end_date, days, status, notes, created_at, updated_at`

func scanVacation(row pgx.Row) (employee.Vacation, error) {
	var v employee.Vacation
	err := row.Scan(
		&v.ID, &v.EmployeeID, &v.AcquisitionStart, &v.AcquisitionEnd, &v.StartDate, &v.EndDate,
		&v.Days, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

func (r *vacationRepository) Create(ctx context.Context, v employee.Vacation) (employee.Vacation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO vacations (id, employee_id, acquisition_start, acquisition_end, start_date, end_date, days, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + vacationColumns

	created, err := scanVacation(q.QueryRow(ctx, query,
		newID(), v.EmployeeID, v.AcquisitionStart, v.AcquisitionEnd, v.StartDate, v.EndDate, v.Days, v.Status, v.Notes,
	))
	if err != nil {
		if violates(err, "fk_vacations_employee") {
			return employee.Vacation{}, employee.ErrEmployeeNotFound
		}
		return employee.Vacation{}, fmt.Errorf("failed to create vacation: %w", err)
	}

	return created, nil
}

func (r *vacationRepository) GetByID(ctx context.Context, id string) (employee.Vacation, error) {
	q := GetQuerier(ctx, r.db)

	v, err := scanVacation(q.QueryRow(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Vacation{}, employee.ErrVacationNotFound
		}
		return employee.Vacation{}, fmt.Errorf("failed to get vacation: %w", err)
	}

	return v, nil
}

func (r *vacationRepository) List(ctx context.Context, filter employee.VacationFilter) ([]employee.Vacation, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + vacationColumns + ` FROM vacations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_date DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacations: %w", err)
	}
	defer rows.Close()

	vacations := make([]employee.Vacation, 0)
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vacation: %w", err)
		}
		vacations = append(vacations, v)
	}

	return vacations, rows.Err()
}

func (r *vacationRepository) UpdateStatus(ctx context.Context, id string, status employee.VacationStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE vacations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update vacation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrVacationNotFound
	}

	return nil
}
