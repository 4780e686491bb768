package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgres error codes the stores care about
const (
	uniqueViolation = "23505"
	fkViolation     = "23503"
)

// pgErrCode extracts the SQLSTATE code and constraint name from a pgx
// error, empty strings when the error is not a postgres error.
func pgErrCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
