package errors

import (
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlStateCodes maps the SQLSTATEs a configured source query can reasonably hit
// anything absent means the source itself is unusable
var sqlStateCodes = map[string]ErrorCode{
	"42703": ErrorCodeMissingColumn,     // undefined_column
	"42601": ErrorCodeInvalidArgument,   // syntax_error
	"42883": ErrorCodeInvalidArgument,   // undefined_function
	"42804": ErrorCodeInvalidArgument,   // datatype_mismatch
	"22P02": ErrorCodeInvalidArgument,   // invalid_text_representation
	"42P01": ErrorCodeSourceUnavailable, // undefined_table
	"25006": ErrorCodeSourceUnavailable, // read_only_sql_transaction
}

// PgError returns the *pgconn.PgError anywhere in err's chain
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// SQLState returns the SQLSTATE of a postgres error or ""
func SQLState(err error) string {
	if pgErr, ok := PgError(err); ok {
		return pgErr.Code
	}
	return ""
}

// FromPostgresf wraps err with a code chosen from its SQLSTATE
// non postgres errors count as an unavailable source; nil stays nil
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code, ok := sqlStateCodes[SQLState(err)]
	if !ok {
		code = ErrorCodeSourceUnavailable
	}
	out := Wrap(err, code, fmt.Sprintf(format, a...))
	if col := pgColumn(err); col != "" {
		out = WithField(out, col)
	}
	return out
}

// pgColumn names the column a postgres error is about
// ColumnName wins; undefined_column messages carry it quoted
func pgColumn(err error) string {
	pgErr, ok := PgError(err)
	if !ok {
		return ""
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return col
	}
	if pgErr.Code != "42703" {
		return ""
	}
	_, rest, ok := strings.Cut(pgErr.Message, `"`)
	if !ok {
		return ""
	}
	col, _, ok := strings.Cut(rest, `"`)
	if !ok {
		return ""
	}
	return col
}
