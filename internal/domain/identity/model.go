package identity

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

var genders = []string{"Male", "Female", "Other"}

// Patient maps to the patients table.
type Patient struct {
	ID               int64     `db:"patient_id" json:"patient_id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	DateOfBirth      *string   `db:"date_of_birth" json:"date_of_birth"`
	Gender           *string   `db:"gender" json:"gender"`
	Phone            string    `db:"phone" json:"phone"`
	Email            string    `db:"email" json:"email"`
	Address          string    `db:"address" json:"address"`
	BloodGroup       string    `db:"blood_group" json:"blood_group"`
	EmergencyContact string    `db:"emergency_contact" json:"emergency_contact"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// FullName is the display name used in sessions and lookups.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func DecodePatient(r *form.Reader) *Patient {
	return &Patient{
		FirstName:        r.NonEmpty("first_name"),
		LastName:         r.NonEmpty("last_name"),
		DateOfBirth:      r.OptionalDate("date_of_birth"),
		Gender:           r.OptionalOneOf("gender", genders...),
		Phone:            r.String("phone"),
		Email:            r.String("email"),
		Address:          r.String("address"),
		BloodGroup:       r.String("blood_group"),
		EmergencyContact: r.String("emergency_contact"),
	}
}

// Doctor maps to the doctors table. DeptName is joined in on reads.
type Doctor struct {
	ID              int64     `db:"doctor_id" json:"doctor_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	DeptID          *int64    `db:"dept_id" json:"dept_id"`
	DeptName        *string   `db:"dept_name" json:"dept_name"`
	Phone           string    `db:"phone" json:"phone"`
	Email           *string   `db:"email" json:"email"`
	Qualification   string    `db:"qualification" json:"qualification"`
	ExperienceYears *int64    `db:"experience_years" json:"experience_years"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func DecodeDoctor(r *form.Reader) *Doctor {
	return &Doctor{
		FirstName:       r.NonEmpty("first_name"),
		LastName:        r.NonEmpty("last_name"),
		Specialization:  r.String("specialization"),
		DeptID:          r.OptionalInt("dept_id"),
		Phone:           r.String("phone"),
		Email:           r.OptionalString("email"),
		Qualification:   r.String("qualification"),
		ExperienceYears: r.OptionalInt("experience_years"),
	}
}

// NameOption is one entry of a patient or doctor picker.
type NameOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
