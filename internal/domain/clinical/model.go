package clinical

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

// MedicalRecord maps to the medical_records table. PatientName and
// DoctorName are joined in on reads.
type MedicalRecord struct {
	ID            int64     `db:"record_id" json:"record_id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	DoctorID      int64     `db:"doctor_id" json:"doctor_id"`
	AppointmentID *int64    `db:"appointment_id" json:"appointment_id"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Prescription  string    `db:"prescription" json:"prescription"`
	Notes         string    `db:"notes" json:"notes"`
	RecordDate    string    `db:"record_date" json:"record_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DecodeMedicalRecord reads a record from a submitted form. appointment_id
// may be omitted entirely.
func DecodeMedicalRecord(r *form.Reader) *MedicalRecord {
	return &MedicalRecord{
		PatientID:     r.Int("patient_id"),
		DoctorID:      r.Int("doctor_id"),
		AppointmentID: r.AbsentInt("appointment_id"),
		Diagnosis:     r.String("diagnosis"),
		Prescription:  r.String("prescription"),
		Notes:         r.String("notes"),
		RecordDate:    r.Date("record_date"),
	}
}
