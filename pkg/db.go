package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolationError checks if the error is a foreign key violation error
func IsForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// DBErrorResponse builds the 500 response body for a store failure,
// passing SQLSTATE and the failing table / constraint through when available.
func DBErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Error:   message,
		Details: err.Error(),
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return resp
	}

	resp.Details = pgErr.Message
	resp.Code = pgErr.Code
	meta := map[string]string{}
	if pgErr.TableName != "" {
		meta["table"] = pgErr.TableName
	}
	if pgErr.ConstraintName != "" {
		meta["constraint"] = pgErr.ConstraintName
	}
	if pgErr.ColumnName != "" {
		meta["column"] = pgErr.ColumnName
	}
	if len(meta) > 0 {
		resp.Meta = meta
	}
	return resp
}
