package admission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

type allotmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAllotmentRepo(pool *pgxpool.Pool) AllotmentRepository {
	return &allotmentRepoPG{pool: pool}
}

func (r *allotmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const allotmentCols = `allotment_id, patient_id_ref, patient_name, age, gender, contact_number,
	room_type, room_number, bed_number, admission_date::text, doctor_name, department,
	diagnosis, status, created_at`

func (r *allotmentRepoPG) List(ctx context.Context, scope auth.RowScope) ([]*RoomAllotment, error) {
	where, args := scope.WhereRef("patient_id_ref", nil)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+allotmentCols+`
		FROM room_allotments`+where+`
		ORDER BY allotment_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list room allotments: %w", err)
	}
	defer rows.Close()

	var out []*RoomAllotment
	for rows.Next() {
		var a RoomAllotment
		if err := rows.Scan(
			&a.ID, &a.PatientIDRef, &a.PatientName, &a.Age, &a.Gender, &a.ContactNumber,
			&a.RoomType, &a.RoomNumber, &a.BedNumber, &a.AdmissionDate, &a.DoctorName, &a.Department,
			&a.Diagnosis, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan room allotment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *allotmentRepoPG) Create(ctx context.Context, a *RoomAllotment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO room_allotments (
			patient_id_ref, patient_name, age, gender, contact_number, room_type,
			room_number, bed_number, admission_date, doctor_name, department, diagnosis, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10, $11, $12, $13)
		RETURNING allotment_id, created_at`,
		a.PatientIDRef, a.PatientName, a.Age, a.Gender, a.ContactNumber, a.RoomType,
		a.RoomNumber, a.BedNumber, a.AdmissionDate, a.DoctorName, a.Department, a.Diagnosis, a.Status,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert room allotment: %w", err)
	}
	return nil
}

func (r *allotmentRepoPG) Update(ctx context.Context, id int64, a *RoomAllotment) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE room_allotments SET
			patient_id_ref = $2, patient_name = $3, age = $4, gender = $5, contact_number = $6,
			room_type = $7, room_number = $8, bed_number = $9, admission_date = $10::date,
			doctor_name = $11, department = $12, diagnosis = $13, status = $14
		WHERE allotment_id = $1`,
		id, a.PatientIDRef, a.PatientName, a.Age, a.Gender, a.ContactNumber,
		a.RoomType, a.RoomNumber, a.BedNumber, a.AdmissionDate,
		a.DoctorName, a.Department, a.Diagnosis, a.Status,
	)
	if err != nil {
		return false, fmt.Errorf("update room allotment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *allotmentRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM room_allotments WHERE allotment_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete room allotment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *allotmentRepoPG) Discharge(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE room_allotments SET status = $2 WHERE allotment_id = $1`, id, StatusDischarged)
	if err != nil {
		return false, fmt.Errorf("discharge room allotment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
