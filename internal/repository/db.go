package repository

import (
	"errors"

	"github.com/lib/pq"
)

type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}
