package httperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsBusy reports lock contention from either supported database.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	if KindOf(err) == KindBusy {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// lock_not_available, serialization_failure, deadlock_detected
		switch pgErr.Code {
		case "55P03", "40001", "40P01":
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked")
}

// IsUniqueViolation reports a unique index violation that survived
// gorm's TranslateError.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
