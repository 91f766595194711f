package identity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/crud"
)

// DepartmentOptions supplies the department picker shown with doctors.
type DepartmentOptions interface {
	Options(ctx context.Context) ([]admin.DepartmentOption, error)
}

// NewPatientHandler serves /patients. Patients see only their own row.
func NewPatientHandler(patients PatientRepository, logger zerolog.Logger) *crud.Handler[Patient] {
	return crud.NewHandler(crud.Resource[Patient]{
		Name:   "patients",
		Label:  "Patient",
		Store:  patients,
		Decode: DecodePatient,
	}, logger)
}

// NewDoctorHandler serves /doctors together with the department list.
func NewDoctorHandler(doctors DoctorRepository, depts DepartmentOptions, logger zerolog.Logger) *crud.Handler[Doctor] {
	return crud.NewHandler(crud.Resource[Doctor]{
		Name:   "doctors",
		Label:  "Doctor",
		Store:  doctors,
		Decode: DecodeDoctor,
		Lookups: func(ctx context.Context, _ auth.RowScope) (map[string]any, error) {
			opts, err := depts.Options(ctx)
			if err != nil {
				return nil, err
			}
			if opts == nil {
				opts = []admin.DepartmentOption{}
			}
			return map[string]any{"departments": opts}, nil
		},
	}, logger)
}

// NameLookups builds the patient and doctor pickers shown beside
// appointments and medical records. The patient list honours the scope.
func NameLookups(patients PatientRepository, doctors DoctorRepository) crud.LookupFunc {
	return func(ctx context.Context, scope auth.RowScope) (map[string]any, error) {
		ps, err := patients.Options(ctx, scope)
		if err != nil {
			return nil, err
		}
		ds, err := doctors.Options(ctx)
		if err != nil {
			return nil, err
		}
		if ps == nil {
			ps = []NameOption{}
		}
		if ds == nil {
			ds = []NameOption{}
		}
		return map[string]any{"patients": ps, "doctors": ds}, nil
	}
}
