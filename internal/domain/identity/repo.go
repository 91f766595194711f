package identity

import (
	"context"
	"errors"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/crud"
)

// ErrPatientNotFound is returned by Get when no patient has the id.
var ErrPatientNotFound = errors.New("patient not found")

// PatientRepository defines the persistence interface for patients.
type PatientRepository interface {
	crud.Store[Patient]
	Get(ctx context.Context, id int64) (*Patient, error)
	// Options lists "first last" names visible under scope.
	Options(ctx context.Context, scope auth.RowScope) ([]NameOption, error)
}

// DoctorRepository defines the persistence interface for doctors.
type DoctorRepository interface {
	crud.Store[Doctor]
	Options(ctx context.Context) ([]NameOption, error)
}
