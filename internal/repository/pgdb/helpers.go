package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation  = "23505"
	lockNotAvailable = "55P03"
)

func postgresCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// postgresDuplicate сообщает о нарушении уникального индекса.
func postgresDuplicate(err error) bool {
	return postgresCode(err) == uniqueViolation
}

// postgresLockTimeout сообщает, что блокировка строки не получена за lock_timeout.
func postgresLockTimeout(err error) bool {
	return postgresCode(err) == lockNotAvailable
}

// nullable превращает пустую строку в NULL для необязательных фильтров.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
