package admin

import (
	"time"

	"github.com/hms/hms/internal/platform/form"
)

// Department maps to the departments table.
type Department struct {
	ID          int64     `db:"dept_id" json:"dept_id"`
	Name        string    `db:"dept_name" json:"dept_name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DecodeDepartment reads a department from a submitted form.
func DecodeDepartment(r *form.Reader) *Department {
	return &Department{
		Name:        r.NonEmpty("dept_name"),
		Description: r.String("description"),
	}
}

// Account is an administrator login. The hash never leaves the package in
// JSON.
type Account struct {
	ID           int64     `db:"admin_id" json:"admin_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DepartmentOption is one entry of the department picker shown with doctors.
type DepartmentOption struct {
	ID   int64  `json:"dept_id"`
	Name string `json:"dept_name"`
}
