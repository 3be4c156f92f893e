package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// The constraints back the service-layer existence checks against
// concurrent duplicate requests (user/book dedup keys, follow edges,
// (user, book) readings, review likes).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite reports constraint failures as plain driver errors
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
