package immunization

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

// VaccinationRecord maps to the vaccination_records table. PatientIDRef is a
// copy of the patient id as text and is not a foreign key.
type VaccinationRecord struct {
	ID              int64     `db:"vaccination_id" json:"vaccination_id"`
	PatientIDRef    string    `db:"patient_id_ref" json:"patient_id_ref"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	Age             int64     `db:"age" json:"age"`
	VaccineName     string    `db:"vaccine_name" json:"vaccine_name"`
	DoseNumber      string    `db:"dose_number" json:"dose_number"`
	VaccinationDate string    `db:"vaccination_date" json:"vaccination_date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func DecodeVaccinationRecord(r *form.Reader) *VaccinationRecord {
	return &VaccinationRecord{
		PatientIDRef:    r.NonEmpty("patient_id_ref"),
		PatientName:     r.NonEmpty("patient_name"),
		Age:             r.Int("age"),
		VaccineName:     r.NonEmpty("vaccine_name"),
		DoseNumber:      r.NonEmpty("dose_number"),
		VaccinationDate: r.Date("vaccination_date"),
	}
}
