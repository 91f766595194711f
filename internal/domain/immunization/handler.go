package immunization

import (
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/crud"
)

// NewHandler serves /vaccination_records.
func NewHandler(records VaccinationRepository, logger zerolog.Logger) *crud.Handler[VaccinationRecord] {
	return crud.NewHandler(crud.Resource[VaccinationRecord]{
		Name:   "vaccination_records",
		Label:  "Vaccination record",
		Store:  records,
		Decode: DecodeVaccinationRecord,
	}, logger)
}
