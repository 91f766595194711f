package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const patientColumns = `patient_id, first_name, last_name, date_of_birth::text, gender,
	phone, email, address, blood_group, emergency_contact, created_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Email, &p.Address, &p.BloodGroup, &p.EmergencyContact, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) List(ctx context.Context, scope auth.RowScope) ([]*Patient, error) {
	where, args := scope.Where("patient_id", nil)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientColumns+` FROM patients`+where+` ORDER BY patient_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *patientRepoPG) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE patient_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	return p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			first_name, last_name, date_of_birth, gender,
			phone, email, address, blood_group, emergency_contact
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
		RETURNING patient_id, created_at`,
		p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.BloodGroup, p.EmergencyContact,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepoPG) Update(ctx context.Context, id int64, p *Patient) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			first_name = $2, last_name = $3, date_of_birth = $4::date, gender = $5,
			phone = $6, email = $7, address = $8, blood_group = $9, emergency_contact = $10
		WHERE patient_id = $1`,
		id, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.BloodGroup, p.EmergencyContact,
	)
	if err != nil {
		return false, fmt.Errorf("update patient %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE patient_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete patient %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *patientRepoPG) Options(ctx context.Context, scope auth.RowScope) ([]NameOption, error) {
	where, args := scope.Where("patient_id", nil)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT patient_id, first_name || ' ' || last_name FROM patients`+where+` ORDER BY patient_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list patient options: %w", err)
	}
	return collectOptions(rows)
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// List ignores the scope: doctors are not patient-owned.
func (r *doctorRepoPG) List(ctx context.Context, _ auth.RowScope) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.doctor_id, d.first_name, d.last_name, d.specialization, d.dept_id, dep.dept_name,
			d.phone, d.email, d.qualification, d.experience_years, d.created_at
		FROM doctors d
		LEFT JOIN departments dep ON dep.dept_id = d.dept_id
		ORDER BY d.doctor_id`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(
			&d.ID, &d.FirstName, &d.LastName, &d.Specialization, &d.DeptID, &d.DeptName,
			&d.Phone, &d.Email, &d.Qualification, &d.ExperienceYears, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, &d)
	}
	return doctors, rows.Err()
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (
			first_name, last_name, specialization, dept_id,
			phone, email, qualification, experience_years
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING doctor_id, created_at`,
		d.FirstName, d.LastName, d.Specialization, d.DeptID,
		d.Phone, d.Email, d.Qualification, d.ExperienceYears,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepoPG) Update(ctx context.Context, id int64, d *Doctor) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET
			first_name = $2, last_name = $3, specialization = $4, dept_id = $5,
			phone = $6, email = $7, qualification = $8, experience_years = $9
		WHERE doctor_id = $1`,
		id, d.FirstName, d.LastName, d.Specialization, d.DeptID,
		d.Phone, d.Email, d.Qualification, d.ExperienceYears,
	)
	if err != nil {
		return false, fmt.Errorf("update doctor %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE doctor_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete doctor %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *doctorRepoPG) Options(ctx context.Context) ([]NameOption, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT doctor_id, first_name || ' ' || last_name FROM doctors ORDER BY doctor_id`)
	if err != nil {
		return nil, fmt.Errorf("list doctor options: %w", err)
	}
	return collectOptions(rows)
}

func collectOptions(rows pgx.Rows) ([]NameOption, error) {
	defer rows.Close()
	var opts []NameOption
	for rows.Next() {
		var o NameOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
