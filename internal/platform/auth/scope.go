package auth

import (
	"context"
	"fmt"
	"strconv"
)

// RowScope restricts list queries over patient-owned tables. The zero value
// matches nothing, so a missing identity fails closed.
type RowScope struct {
	all       bool
	patientID int64
}

// Unscoped returns a scope that matches every row.
func Unscoped() RowScope { return RowScope{all: true} }

// PatientScope returns a scope matching rows owned by patientID.
func PatientScope(patientID int64) RowScope { return RowScope{patientID: patientID} }

// ScopeFor derives the scope of an identity: admins see everything, patients
// only their own rows, anyone else nothing.
func ScopeFor(id *Identity) RowScope {
	switch {
	case id.IsAdmin():
		return Unscoped()
	case id.IsPatient() && id.PatientID > 0:
		return PatientScope(id.PatientID)
	default:
		return RowScope{}
	}
}

// ScopeFromContext is ScopeFor applied to the request identity.
func ScopeFromContext(ctx context.Context) RowScope {
	return ScopeFor(IdentityFromContext(ctx))
}

// Restricted reports whether the scope filters rows.
func (s RowScope) Restricted() bool { return !s.all }

// PatientID returns the owning patient for a restricted scope.
func (s RowScope) PatientID() (int64, bool) {
	return s.patientID, !s.all && s.patientID > 0
}

// Allows reports whether a row owned by patientID is visible.
func (s RowScope) Allows(patientID int64) bool {
	return s.all || (s.patientID > 0 && s.patientID == patientID)
}

// AllowsRef is Allows for tables that copy the patient id as free text.
func (s RowScope) AllowsRef(ref string) bool {
	if s.all {
		return true
	}
	return s.patientID > 0 && ref == strconv.FormatInt(s.patientID, 10)
}

// Where renders a WHERE clause for an integer patient column. The placeholder
// index continues after args; the returned args include the new value.
func (s RowScope) Where(column string, args []any) (string, []any) {
	if s.all {
		return "", args
	}
	if s.patientID <= 0 {
		return " WHERE FALSE", args
	}
	args = append(args, s.patientID)
	return fmt.Sprintf(" WHERE %s = $%d", column, len(args)), args
}

// WhereRef renders a WHERE clause for a free-text patient reference column.
// The stored text must equal the decimal patient id exactly.
func (s RowScope) WhereRef(column string, args []any) (string, []any) {
	if s.all {
		return "", args
	}
	if s.patientID <= 0 {
		return " WHERE FALSE", args
	}
	args = append(args, strconv.FormatInt(s.patientID, 10))
	return fmt.Sprintf(" WHERE %s = $%d", column, len(args)), args
}
