package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// isNotFound treats a malformed id the same as an absent row. pq reports a
// syntactically invalid uuid as invalid_text_representation (22P02) before
// the query can come back empty, and callers resolve both cases to
// commons.ErrRecordNotFound.
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
