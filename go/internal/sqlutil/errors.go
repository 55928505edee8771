package sqlutil

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mcdev12/gridpick/go/internal/apperr"
)

// Postgres error codes the repositories care about.
const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
	checkViolation      = pq.ErrorCode("23514")
)

// Classify attaches the matching apperr kind to a database error so callers
// can tell missing rows and constraint hits from outages.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", apperr.ErrConflict, pqErr.Constraint)
		case foreignKeyViolation, checkViolation:
			return fmt.Errorf("%w: %s", apperr.ErrBadRequest, pqErr.Constraint)
		}
	}
	return err
}
