// Package sandbox loads reference and demo data. Bootstrap installs the FAQ
// and the operator's admin account; Seeder fills the hospital tables with
// reproducible synthetic rows for demos and local development.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/immunization"
	"github.com/hms/hms/internal/domain/scheduling"
	"github.com/hms/hms/internal/platform/crud"
)

// ---------------------------------------------------------------------------
// Bootstrap
// ---------------------------------------------------------------------------

// FAQSeeder loads the default FAQ into an empty table.
type FAQSeeder interface {
	Seed(ctx context.Context) (int, error)
}

// AdminEnsurer creates or resets an admin account.
type AdminEnsurer interface {
	Ensure(ctx context.Context, username, password string) (*admin.Account, error)
}

// Bootstrap seeds the FAQ and, when username is set, the admin account.
func Bootstrap(ctx context.Context, faq FAQSeeder, admins AdminEnsurer, username, password string, logger zerolog.Logger) error {
	n, err := faq.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed faq: %w", err)
	}
	if n > 0 {
		logger.Info().Int("entries", n).Msg("faq seeded")
	}

	if username == "" {
		return nil
	}
	acct, err := admins.Ensure(ctx, username, password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	logger.Info().Str("username", acct.Username).Int64("admin_id", acct.ID).Msg("admin account ready")
	return nil
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume of generated demo data.
type SeedConfig struct {
	Departments            int
	Doctors                int
	Patients               int
	AppointmentsPerPatient int
	RecordsPerPatient      int
	VaccinationsPerPatient int
	// AdmittedEvery admits every Nth patient to a room; zero admits nobody.
	AdmittedEvery int
	Seed          int64
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Departments:            6,
		Doctors:                12,
		Patients:               40,
		AppointmentsPerPatient: 2,
		RecordsPerPatient:      1,
		VaccinationsPerPatient: 2,
		AdmittedEvery:          5,
	}
}

// Stores are the tables the seeder writes to.
type Stores struct {
	Departments  crud.Store[admin.Department]
	Doctors      crud.Store[identity.Doctor]
	Patients     crud.Store[identity.Patient]
	Appointments crud.Store[scheduling.Appointment]
	Records      crud.Store[clinical.MedicalRecord]
	Schedules    crud.Store[scheduling.Schedule]
	Allotments   crud.Store[admission.RoomAllotment]
	Vaccinations crud.Store[immunization.VaccinationRecord]
}

// SeedResult counts the rows inserted per table.
type SeedResult struct {
	Departments  int           `json:"departments"`
	Doctors      int           `json:"doctors"`
	Patients     int           `json:"patients"`
	Appointments int           `json:"appointments"`
	Records      int           `json:"medicalRecords"`
	Schedules    int           `json:"schedules"`
	Allotments   int           `json:"roomAllotments"`
	Vaccinations int           `json:"vaccinations"`
	Duration     time.Duration `json:"duration"`
}

// Total is the number of rows inserted.
func (r *SeedResult) Total() int {
	return r.Departments + r.Doctors + r.Patients + r.Appointments + r.Records +
		r.Schedules + r.Allotments + r.Vaccinations
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

var (
	departmentNames = []string{
		"Cardiology", "Neurology", "Orthopedics", "Pediatrics",
		"General Medicine", "Surgery", "Dermatology", "ENT",
	}

	firstNamesMale   = []string{"Arjun", "Rahul", "Vikram", "Karthik", "Sanjay", "Rohan", "Imran", "Joseph"}
	firstNamesFemale = []string{"Asha", "Priya", "Meera", "Kavya", "Ananya", "Fatima", "Neha", "Lakshmi"}
	lastNames        = []string{"Rao", "Sharma", "Iyer", "Patel", "Nair", "Reddy", "Khan", "Das", "Menon", "Singh"}

	cities      = []string{"Chennai", "Bengaluru", "Hyderabad", "Pune", "Kochi", "Mumbai"}
	bloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

	qualifications = []string{"MBBS", "MBBS, MD", "MBBS, MS", "MBBS, DNB"}

	diagnoses = []struct{ diagnosis, prescription string }{
		{"Viral fever", "Paracetamol 500mg twice daily for 3 days"},
		{"Hypertension", "Amlodipine 5mg once daily"},
		{"Type 2 diabetes", "Metformin 500mg twice daily"},
		{"Migraine", "Sumatriptan 50mg as needed"},
		{"Sprained ankle", "Rest, ice, compression; ibuprofen 400mg"},
		{"Acute bronchitis", "Azithromycin 500mg once daily for 3 days"},
	}

	visitReasons = []string{"Routine check-up", "Follow-up", "Chest pain", "Headache", "Fever", "Joint pain"}

	vaccines = []string{"BCG", "Hepatitis B", "Polio (OPV)", "MMR", "Tetanus", "Influenza", "COVID-19"}

	roomTypes = []string{"General", "Semi-Private", "Private", "ICU"}

	shifts = [][2]string{{"09:00", "13:00"}, {"13:00", "17:00"}, {"17:00", "21:00"}}
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces deterministic synthetic rows.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomDate(minYear, maxYear int) string {
	y := minYear + g.rng.Intn(maxYear-minYear+1)
	m := 1 + g.rng.Intn(12)
	d := 1 + g.rng.Intn(28) // safe for all months
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func (g *DataGenerator) randomPhone() string {
	return fmt.Sprintf("9%09d", g.rng.Intn(1000000000))
}

func (g *DataGenerator) person() (first, last, gender string) {
	if g.rng.Intn(2) == 0 {
		first, gender = g.pick(firstNamesMale), "Male"
	} else {
		first, gender = g.pick(firstNamesFemale), "Female"
	}
	return first, g.pick(lastNames), gender
}

// GenerateDepartment returns the i-th department; names repeat with a numeric
// suffix once the reference list is exhausted.
func (g *DataGenerator) GenerateDepartment(i int) *admin.Department {
	name := departmentNames[i%len(departmentNames)]
	if n := i / len(departmentNames); n > 0 {
		name += " " + strconv.Itoa(n+1)
	}
	return &admin.Department{Name: name, Description: "Department of " + name}
}

func (g *DataGenerator) GenerateDoctor(dept *admin.Department) *identity.Doctor {
	first, last, _ := g.person()
	years := int64(1 + g.rng.Intn(30))
	d := &identity.Doctor{
		FirstName:       first,
		LastName:        last,
		Specialization:  dept.Name,
		Phone:           g.randomPhone(),
		Qualification:   g.pick(qualifications),
		ExperienceYears: &years,
	}
	if dept.ID > 0 {
		id := dept.ID
		d.DeptID = &id
	}
	return d
}

func (g *DataGenerator) GeneratePatient() *identity.Patient {
	first, last, gender := g.person()
	dob := g.randomDate(1945, 2020)
	return &identity.Patient{
		FirstName:        first,
		LastName:         last,
		DateOfBirth:      &dob,
		Gender:           &gender,
		Phone:            g.randomPhone(),
		Email:            fmt.Sprintf("%s.%s.%d@example.com", first, last, g.rng.Intn(10000)),
		Address:          fmt.Sprintf("%d Main Road, %s", 1+g.rng.Intn(300), g.pick(cities)),
		BloodGroup:       g.pick(bloodGroups),
		EmergencyContact: g.randomPhone(),
	}
}

func (g *DataGenerator) GenerateAppointment(patientID, doctorID int64) *scheduling.Appointment {
	return &scheduling.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      g.randomDate(2025, 2026),
		Time:      fmt.Sprintf("%02d:%02d", 9+g.rng.Intn(8), 15*g.rng.Intn(4)),
		Status:    []string{"Scheduled", "Completed", "Cancelled"}[g.rng.Intn(3)],
		Reason:    g.pick(visitReasons),
	}
}

func (g *DataGenerator) GenerateMedicalRecord(patientID, doctorID int64, appointmentID *int64) *clinical.MedicalRecord {
	dx := diagnoses[g.rng.Intn(len(diagnoses))]
	return &clinical.MedicalRecord{
		PatientID:     patientID,
		DoctorID:      doctorID,
		AppointmentID: appointmentID,
		Diagnosis:     dx.diagnosis,
		Prescription:  dx.prescription,
		Notes:         "Review after one week",
		RecordDate:    g.randomDate(2025, 2026),
	}
}

func (g *DataGenerator) GenerateSchedule(doctor *identity.Doctor) *scheduling.Schedule {
	shift := shifts[g.rng.Intn(len(shifts))]
	return &scheduling.Schedule{
		DoctorName: "Dr. " + doctor.FirstName + " " + doctor.LastName,
		Department: doctor.Specialization,
		StartTime:  shift[0],
		EndTime:    shift[1],
	}
}

func (g *DataGenerator) GenerateAllotment(p *identity.Patient, doctor *identity.Doctor) *admission.RoomAllotment {
	gender := "Other"
	if p.Gender != nil {
		gender = *p.Gender
	}
	room := 100*(1+g.rng.Intn(4)) + g.rng.Intn(20)
	return &admission.RoomAllotment{
		PatientIDRef:  strconv.FormatInt(p.ID, 10),
		PatientName:   p.FullName(),
		Age:           int64(1 + g.rng.Intn(90)),
		Gender:        gender,
		ContactNumber: p.Phone,
		RoomType:      g.pick(roomTypes),
		RoomNumber:    strconv.Itoa(room),
		BedNumber:     fmt.Sprintf("B%d", 1+g.rng.Intn(4)),
		AdmissionDate: g.randomDate(2025, 2026),
		DoctorName:    "Dr. " + doctor.FirstName + " " + doctor.LastName,
		Department:    doctor.Specialization,
		Diagnosis:     diagnoses[g.rng.Intn(len(diagnoses))].diagnosis,
		Status:        admission.StatusOccupied,
	}
}

func (g *DataGenerator) GenerateVaccination(p *identity.Patient, dose int) *immunization.VaccinationRecord {
	return &immunization.VaccinationRecord{
		PatientIDRef:    strconv.FormatInt(p.ID, 10),
		PatientName:     p.FullName(),
		Age:             int64(1 + g.rng.Intn(90)),
		VaccineName:     g.pick(vaccines),
		DoseNumber:      strconv.Itoa(dose),
		VaccinationDate: g.randomDate(2020, 2026),
	}
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Seeder writes generated rows through the resource stores, so the inserted
// data passes the same constraints as rows entered through the UI.
type Seeder struct {
	stores    Stores
	generator *DataGenerator
	config    SeedConfig
}

func NewSeeder(stores Stores, config SeedConfig) *Seeder {
	return &Seeder{
		stores:    stores,
		generator: NewDataGenerator(config.Seed),
		config:    config,
	}
}

// Generate inserts one batch of demo data. Rows are written one statement at
// a time; a failure leaves the rows inserted so far in place.
func (s *Seeder) Generate(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	g := s.generator
	result := &SeedResult{}

	depts := make([]*admin.Department, 0, s.config.Departments)
	for i := 0; i < s.config.Departments; i++ {
		d := g.GenerateDepartment(i)
		if err := s.stores.Departments.Create(ctx, d); err != nil {
			return result, fmt.Errorf("seed department: %w", err)
		}
		depts = append(depts, d)
		result.Departments++
	}

	doctors := make([]*identity.Doctor, 0, s.config.Doctors)
	for i := 0; i < s.config.Doctors; i++ {
		dept := &admin.Department{Name: "General Medicine"}
		if len(depts) > 0 {
			dept = depts[i%len(depts)]
		}
		d := g.GenerateDoctor(dept)
		if err := s.stores.Doctors.Create(ctx, d); err != nil {
			return result, fmt.Errorf("seed doctor: %w", err)
		}
		doctors = append(doctors, d)
		result.Doctors++

		if err := s.stores.Schedules.Create(ctx, g.GenerateSchedule(d)); err != nil {
			return result, fmt.Errorf("seed schedule: %w", err)
		}
		result.Schedules++
	}

	for i := 0; i < s.config.Patients; i++ {
		p := g.GeneratePatient()
		if err := s.stores.Patients.Create(ctx, p); err != nil {
			return result, fmt.Errorf("seed patient: %w", err)
		}
		result.Patients++

		for j := 0; j < s.config.VaccinationsPerPatient; j++ {
			if err := s.stores.Vaccinations.Create(ctx, g.GenerateVaccination(p, j+1)); err != nil {
				return result, fmt.Errorf("seed vaccination: %w", err)
			}
			result.Vaccinations++
		}

		if len(doctors) == 0 {
			continue
		}
		// Round-robin so every doctor gets patients.
		doctor := doctors[i%len(doctors)]

		var lastAppt *int64
		for j := 0; j < s.config.AppointmentsPerPatient; j++ {
			a := g.GenerateAppointment(p.ID, doctor.ID)
			if err := s.stores.Appointments.Create(ctx, a); err != nil {
				return result, fmt.Errorf("seed appointment: %w", err)
			}
			id := a.ID
			lastAppt = &id
			result.Appointments++
		}

		for j := 0; j < s.config.RecordsPerPatient; j++ {
			if err := s.stores.Records.Create(ctx, g.GenerateMedicalRecord(p.ID, doctor.ID, lastAppt)); err != nil {
				return result, fmt.Errorf("seed medical record: %w", err)
			}
			result.Records++
		}

		if s.config.AdmittedEvery > 0 && i%s.config.AdmittedEvery == 0 {
			if err := s.stores.Allotments.Create(ctx, g.GenerateAllotment(p, doctor)); err != nil {
				return result, fmt.Errorf("seed room allotment: %w", err)
			}
			result.Allotments++
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
