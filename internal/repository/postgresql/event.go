package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type eventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) payroll.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, competence_id, type, description, event_date, payment_date, status, total_amount, notes, created_at, updated_at`

func scanEvent(row pgx.Row) (payroll.Event, error) {
	var e payroll.Event
	err := row.Scan(
		&e.ID, &e.CompetenceID, &e.Type, &e.Description, &e.EventDate, &e.PaymentDate,
		&e.Status, &e.TotalAmount, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *eventRepository) Create(ctx context.Context, e payroll.Event) (payroll.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO events (id, competence_id, type, description, event_date, payment_date, status, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns

	created, err := scanEvent(q.QueryRow(ctx, query,
		newID(), e.CompetenceID, e.Type, e.Description, e.EventDate, e.PaymentDate, e.Status, e.TotalAmount, e.Notes,
	))
	if err != nil {
		switch {
		case violates(err, "uk_events_competence_description"):
			return payroll.Event{}, payroll.ErrEventDescriptionExists
		case violates(err, "fk_events_competence"):
			return payroll.Event{}, payroll.ErrCompetenceNotFound
		}
		return payroll.Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	return created, nil
}

func (r *eventRepository) get(ctx context.Context, id string, lock bool) (payroll.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if lock {
		query += " FOR UPDATE"
	}

	e, err := scanEvent(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Event{}, payroll.ErrEventNotFound
		}
		return payroll.Event{}, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (payroll.Event, error) {
	return r.get(ctx, id, false)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Event, error) {
	return r.get(ctx, id, true)
}

func (r *eventRepository) ListByCompetence(ctx context.Context, competenceID string) ([]payroll.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + eventColumns + ` FROM events WHERE competence_id = $1 ORDER BY event_date, id`

	rows, err := q.Query(ctx, query, competenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]payroll.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *eventRepository) FindFirstByType(ctx context.Context, competenceID string, eventType payroll.EventType) (payroll.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + eventColumns + ` FROM events WHERE competence_id = $1 AND type = $2 ORDER BY id LIMIT 1`

	e, err := scanEvent(q.QueryRow(ctx, query, competenceID, eventType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Event{}, payroll.ErrEventNotFound
		}
		return payroll.Event{}, fmt.Errorf("failed to find event by type: %w", err)
	}

	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e payroll.Event) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE events
		SET type = $2, description = $3, event_date = $4, payment_date = $5, status = $6,
			total_amount = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, e.ID, e.Type, e.Description, e.EventDate, e.PaymentDate, e.Status, e.TotalAmount, e.Notes)
	if err != nil {
		if violates(err, "uk_events_competence_description") {
			return payroll.ErrEventDescriptionExists
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE events SET total_amount = $2, updated_at = NOW() WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("failed to update event total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEventNotFound
	}

	return nil
}
