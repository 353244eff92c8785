package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when an operation targets a row that does not
// exist. Callers match it with errors.Is.
var ErrNotFound = eris.New("not found")

// IsConstraint reports whether err was caused by a schema constraint
// violation (duplicate name, missing foreign key, duplicate price pair).
func IsConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		// Class 23 is integrity constraint violation.
		return strings.HasPrefix(pe.Code, "23")
	}
	return false
}
