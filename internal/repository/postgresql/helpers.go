package postgresql

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const codeForeignKeyViolation = "23503"

// violates reports whether err is a PostgreSQL error raised by the named constraint.
func violates(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports whether err comes from any foreign key check.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// newID returns a UUIDv7, whose text form sorts in creation order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
