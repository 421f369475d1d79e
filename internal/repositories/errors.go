package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// validID reports whether id can be compared against a UUID column.
// Anything else would make Postgres fail the whole query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
