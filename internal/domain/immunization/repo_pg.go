package immunization

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

type vaccinationRepoPG struct {
	pool *pgxpool.Pool
}

func NewVaccinationRepo(pool *pgxpool.Pool) VaccinationRepository {
	return &vaccinationRepoPG{pool: pool}
}

func (r *vaccinationRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func (r *vaccinationRepoPG) List(ctx context.Context, scope auth.RowScope) ([]*VaccinationRecord, error) {
	where, args := scope.WhereRef("patient_id_ref", nil)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT vaccination_id, patient_id_ref, patient_name, age, vaccine_name,
			dose_number, vaccination_date::text, created_at
		FROM vaccination_records`+where+`
		ORDER BY vaccination_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list vaccination records: %w", err)
	}
	defer rows.Close()

	var out []*VaccinationRecord
	for rows.Next() {
		var v VaccinationRecord
		if err := rows.Scan(
			&v.ID, &v.PatientIDRef, &v.PatientName, &v.Age, &v.VaccineName,
			&v.DoseNumber, &v.VaccinationDate, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vaccination record: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (r *vaccinationRepoPG) Create(ctx context.Context, v *VaccinationRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vaccination_records (
			patient_id_ref, patient_name, age, vaccine_name, dose_number, vaccination_date
		) VALUES ($1, $2, $3, $4, $5, $6::date)
		RETURNING vaccination_id, created_at`,
		v.PatientIDRef, v.PatientName, v.Age, v.VaccineName, v.DoseNumber, v.VaccinationDate,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert vaccination record: %w", err)
	}
	return nil
}

func (r *vaccinationRepoPG) Update(ctx context.Context, id int64, v *VaccinationRecord) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccination_records SET
			patient_id_ref = $2, patient_name = $3, age = $4,
			vaccine_name = $5, dose_number = $6, vaccination_date = $7::date
		WHERE vaccination_id = $1`,
		id, v.PatientIDRef, v.PatientName, v.Age, v.VaccineName, v.DoseNumber, v.VaccinationDate,
	)
	if err != nil {
		return false, fmt.Errorf("update vaccination record %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *vaccinationRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM vaccination_records WHERE vaccination_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete vaccination record %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
