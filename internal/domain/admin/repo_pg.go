package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

// -- Department Repository --

type deptRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) DepartmentRepository {
	return &deptRepoPG{pool: pool}
}

func (r *deptRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const deptColumns = `dept_id, dept_name, description, created_at`

// List ignores the scope: departments are not patient-owned.
func (r *deptRepoPG) List(ctx context.Context, _ auth.RowScope) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+deptColumns+` FROM departments ORDER BY dept_id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var depts []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		depts = append(depts, &d)
	}
	return depts, rows.Err()
}

func (r *deptRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO departments (dept_name, description) VALUES ($1, $2) RETURNING dept_id, created_at`,
		d.Name, d.Description,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

func (r *deptRepoPG) Update(ctx context.Context, id int64, d *Department) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE departments SET dept_name = $2, description = $3 WHERE dept_id = $1`,
		id, d.Name, d.Description,
	)
	if err != nil {
		return false, fmt.Errorf("update department %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *deptRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM departments WHERE dept_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete department %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *deptRepoPG) Options(ctx context.Context) ([]DepartmentOption, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT dept_id, dept_name FROM departments ORDER BY dept_id`)
	if err != nil {
		return nil, fmt.Errorf("list department options: %w", err)
	}
	defer rows.Close()

	var opts []DepartmentOption
	for rows.Next() {
		var o DepartmentOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan department option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// -- Account Repository --

type accountRepoPG struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func (r *accountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT admin_id, username, password_hash, created_at FROM admins WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %q: %w", username, err)
	}
	return &a, nil
}

func (r *accountRepoPG) Upsert(ctx context.Context, username, passwordHash string) (*Account, error) {
	var a Account
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING admin_id, username, password_hash, created_at`,
		username, passwordHash,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert admin %q: %w", username, err)
	}
	return &a, nil
}
