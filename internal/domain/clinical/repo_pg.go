package clinical

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicalRecordRepo(pool *pgxpool.Pool) MedicalRecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func (r *recordRepoPG) List(ctx context.Context, scope auth.RowScope) ([]*MedicalRecord, error) {
	where, args := scope.Where("mr.patient_id", nil)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT mr.record_id, mr.patient_id, mr.doctor_id, mr.appointment_id,
			p.first_name || ' ' || p.last_name,
			d.first_name || ' ' || d.last_name,
			mr.diagnosis, mr.prescription, mr.notes, mr.record_date::text, mr.created_at
		FROM medical_records mr
		JOIN patients p ON p.patient_id = mr.patient_id
		JOIN doctors d ON d.doctor_id = mr.doctor_id`+where+`
		ORDER BY mr.record_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	var records []*MedicalRecord
	for rows.Next() {
		var m MedicalRecord
		if err := rows.Scan(
			&m.ID, &m.PatientID, &m.DoctorID, &m.AppointmentID, &m.PatientName, &m.DoctorName,
			&m.Diagnosis, &m.Prescription, &m.Notes, &m.RecordDate, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		records = append(records, &m)
	}
	return records, rows.Err()
}

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (
			patient_id, doctor_id, appointment_id, diagnosis, prescription, notes, record_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7::date)
		RETURNING record_id, created_at`,
		m.PatientID, m.DoctorID, m.AppointmentID, m.Diagnosis, m.Prescription, m.Notes, m.RecordDate,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

func (r *recordRepoPG) Update(ctx context.Context, id int64, m *MedicalRecord) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET
			patient_id = $2, doctor_id = $3, appointment_id = $4,
			diagnosis = $5, prescription = $6, notes = $7, record_date = $8::date
		WHERE record_id = $1`,
		id, m.PatientID, m.DoctorID, m.AppointmentID,
		m.Diagnosis, m.Prescription, m.Notes, m.RecordDate,
	)
	if err != nil {
		return false, fmt.Errorf("update medical record %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *recordRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE record_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete medical record %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
