package admission

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

const (
	StatusOccupied   = "Occupied"
	StatusDischarged = "Discharged"
)

var genders = []string{"Male", "Female", "Other"}

// RoomAllotment maps to the room_allotments table. PatientIDRef is a copy of
// the patient id as text and is not a foreign key.
type RoomAllotment struct {
	ID            int64     `db:"allotment_id" json:"allotment_id"`
	PatientIDRef  string    `db:"patient_id_ref" json:"patient_id_ref"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
	Age           int64     `db:"age" json:"age"`
	Gender        string    `db:"gender" json:"gender"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	RoomType      string    `db:"room_type" json:"room_type"`
	RoomNumber    string    `db:"room_number" json:"room_number"`
	BedNumber     string    `db:"bed_number" json:"bed_number"`
	AdmissionDate string    `db:"admission_date" json:"admission_date"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name"`
	Department    string    `db:"department" json:"department"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func decodeCommon(r *form.Reader) *RoomAllotment {
	return &RoomAllotment{
		PatientIDRef:  r.NonEmpty("patient_id_ref"),
		PatientName:   r.NonEmpty("patient_name"),
		Age:           r.Int("age"),
		Gender:        r.OneOf("gender", genders...),
		ContactNumber: r.String("contact_number"),
		RoomType:      r.NonEmpty("room_type"),
		RoomNumber:    r.NonEmpty("room_number"),
		BedNumber:     r.NonEmpty("bed_number"),
		AdmissionDate: r.Date("admission_date"),
		DoctorName:    r.String("doctor_name"),
		Department:    r.String("department"),
		Diagnosis:     r.String("diagnosis"),
	}
}

// DecodeAdmit reads a new allotment. A blank or missing status admits the
// patient as Occupied.
func DecodeAdmit(r *form.Reader) *RoomAllotment {
	a := decodeCommon(r)
	a.Status = r.OneOfOr("status", StatusOccupied, StatusOccupied, StatusDischarged)
	return a
}

// DecodeAllotment reads a full overwrite; status is required.
func DecodeAllotment(r *form.Reader) *RoomAllotment {
	a := decodeCommon(r)
	a.Status = r.OneOf("status", StatusOccupied, StatusDischarged)
	return a
}
