package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrCode(t *testing.T) {
	dup := fmt.Errorf("failed to create list item: %w",
		&pgconn.PgError{Code: "23505", ConstraintName: "unique_list_game"})
	code, constraint := pgErrCode(dup)
	assert.Equal(t, uniqueViolation, code)
	assert.Equal(t, "unique_list_game", constraint)

	fk := fmt.Errorf("failed to create list item: %w",
		&pgconn.PgError{Code: "23503", ConstraintName: "list_items_game_id_fkey"})
	code, _ = pgErrCode(fk)
	assert.Equal(t, fkViolation, code)

	code, constraint = pgErrCode(errors.New("connection reset"))
	assert.Empty(t, code)
	assert.Empty(t, constraint)
}
