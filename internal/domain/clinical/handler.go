package clinical

import (
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/crud"
)

// NewHandler serves /medical_records. lookups supplies the patient and
// doctor pickers.
func NewHandler(records MedicalRecordRepository, lookups crud.LookupFunc, logger zerolog.Logger) *crud.Handler[MedicalRecord] {
	return crud.NewHandler(crud.Resource[MedicalRecord]{
		Name:    "medical_records",
		Label:   "Medical record",
		Store:   records,
		Decode:  DecodeMedicalRecord,
		Lookups: lookups,
	}, logger)
}
