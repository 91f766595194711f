package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Describe turns a storage error into a message that is safe to show to end
// users. The raw error is never included; callers log it separately.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return describeCode(pgErr.Code)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "the database is unavailable"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "the database did not respond in time"
	}
	return "the database could not complete the request"
}

func describeCode(code string) string {
	switch code {
	case "23505":
		return "a record with the same unique value already exists"
	case "23503":
		return "the referenced record does not exist or is still in use"
	case "23502":
		return "a required value is missing"
	case "23514":
		return "a value is outside the allowed set"
	case "22001":
		return "a value is too long"
	}

	switch {
	case strings.HasPrefix(code, "22"):
		return "a value has an invalid format"
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		return "the database is unavailable"
	}
	return "the database could not complete the request"
}
