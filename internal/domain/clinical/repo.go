package clinical

import "github.com/hms/hms/internal/platform/crud"

// MedicalRecordRepository defines the persistence interface for medical
// records.
type MedicalRecordRepository interface {
	crud.Store[MedicalRecord]
}
