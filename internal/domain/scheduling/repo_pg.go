package scheduling

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

// -- Appointment Repository --

type apptRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &apptRepoPG{pool: pool}
}

func (r *apptRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func (r *apptRepoPG) List(ctx context.Context, scope auth.RowScope) ([]*Appointment, error) {
	where, args := scope.Where("a.patient_id", nil)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.appointment_id, a.patient_id, a.doctor_id,
			p.first_name || ' ' || p.last_name,
			d.first_name || ' ' || d.last_name,
			a.appointment_date::text, a.appointment_time::text, a.status, a.reason, a.created_at
		FROM appointments a
		JOIN patients p ON p.patient_id = a.patient_id
		JOIN doctors d ON d.doctor_id = a.doctor_id`+where+`
		ORDER BY a.appointment_date DESC, a.appointment_time ASC, a.appointment_id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.DoctorName,
			&a.Date, &a.Time, &a.Status, &a.Reason, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, &a)
	}
	return appts, rows.Err()
}

func (r *apptRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, status, reason)
		VALUES ($1, $2, $3::date, $4::time, $5, $6)
		RETURNING appointment_id, created_at`,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Reason,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *apptRepoPG) Update(ctx context.Context, id int64, a *Appointment) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET
			patient_id = $2, doctor_id = $3, appointment_date = $4::date,
			appointment_time = $5::time, status = $6, reason = $7
		WHERE appointment_id = $1`,
		id, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Reason,
	)
	if err != nil {
		return false, fmt.Errorf("update appointment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *apptRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE appointment_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// -- Schedule Repository --

type scheduleRepoPG struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepoPG{pool: pool}
}

func (r *scheduleRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// List ignores the scope: schedules are not patient-owned.
func (r *scheduleRepoPG) List(ctx context.Context, _ auth.RowScope) ([]*Schedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT schedule_id, doctor_name, department, start_time::text, end_time::text, created_at
		FROM doctor_schedules ORDER BY schedule_id`)
	if err != nil {
		return nil, fmt.Errorf("list doctor schedules: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.DoctorName, &s.Department, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan doctor schedule: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *scheduleRepoPG) Create(ctx context.Context, s *Schedule) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor_schedules (doctor_name, department, start_time, end_time)
		VALUES ($1, $2, $3::time, $4::time)
		RETURNING schedule_id, created_at`,
		s.DoctorName, s.Department, s.StartTime, s.EndTime,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert doctor schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepoPG) Update(ctx context.Context, id int64, s *Schedule) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor_schedules SET doctor_name = $2, department = $3, start_time = $4::time, end_time = $5::time
		WHERE schedule_id = $1`,
		id, s.DoctorName, s.Department, s.StartTime, s.EndTime,
	)
	if err != nil {
		return false, fmt.Errorf("update doctor schedule %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *scheduleRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_schedules WHERE schedule_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete doctor schedule %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
