package service

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error classes surfaced by entity writes and deletes.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func isPqCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
