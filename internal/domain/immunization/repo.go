package immunization

import "github.com/hms/hms/internal/platform/crud"

// VaccinationRepository defines the persistence interface for vaccination
// records. Patient scoping compares patient_id_ref to the decimal id.
type VaccinationRepository interface {
	crud.Store[VaccinationRecord]
}
