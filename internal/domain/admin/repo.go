package admin

import (
	"context"
	"errors"

	"github.com/hms/hms/internal/platform/crud"
)

// ErrAccountNotFound is returned when no administrator has the username.
var ErrAccountNotFound = errors.New("admin account not found")

// DepartmentRepository defines the persistence interface for departments.
type DepartmentRepository interface {
	crud.Store[Department]
	Options(ctx context.Context) ([]DepartmentOption, error)
}

// AccountRepository defines the persistence interface for admin accounts.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// Upsert creates the account or replaces its password hash.
	Upsert(ctx context.Context, username, passwordHash string) (*Account, error)
}
