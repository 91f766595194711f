package scheduling

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

var appointmentStatuses = []string{"Scheduled", "Completed", "Cancelled"}

// Appointment maps to the appointments table. PatientName and DoctorName are
// joined in on reads.
type Appointment struct {
	ID          int64     `db:"appointment_id" json:"appointment_id"`
	PatientID   int64     `db:"patient_id" json:"patient_id"`
	DoctorID    int64     `db:"doctor_id" json:"doctor_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	Date        string    `db:"appointment_date" json:"appointment_date"`
	Time        string    `db:"appointment_time" json:"appointment_time"`
	Status      string    `db:"status" json:"status"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func DecodeAppointment(r *form.Reader) *Appointment {
	return &Appointment{
		PatientID: r.Int("patient_id"),
		DoctorID:  r.Int("doctor_id"),
		Date:      r.Date("appointment_date"),
		Time:      r.Clock("appointment_time"),
		Status:    r.OneOf("status", appointmentStatuses...),
		Reason:    r.String("reason"),
	}
}

// Schedule maps to the doctor_schedules table. Doctor and department are
// free text, not references.
type Schedule struct {
	ID         int64     `db:"schedule_id" json:"schedule_id"`
	DoctorName string    `db:"doctor_name" json:"doctor_name"`
	Department string    `db:"department" json:"department"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func DecodeSchedule(r *form.Reader) *Schedule {
	return &Schedule{
		DoctorName: r.NonEmpty("doctor_name"),
		Department: r.NonEmpty("department"),
		StartTime:  r.Clock("start_time"),
		EndTime:    r.Clock("end_time"),
	}
}
