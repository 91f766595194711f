package auth

import (
	"context"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Role is the user_type carried in the session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePatient
}

// Identity is the authenticated principal of one request. For admins UserID
// is the admin id and Name the username; for patients UserID and PatientID are
// both the patient id and Name is "first last".
type Identity struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Role      Role   `json:"user_type"`
	PatientID int64  `json:"patient_id,omitempty"`
}

func (i *Identity) IsAdmin() bool   { return i != nil && i.Role == RoleAdmin }
func (i *Identity) IsPatient() bool { return i != nil && i.Role == RolePatient }

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext returns the request's identity or nil when anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(IdentityKey).(*Identity)
	return id
}
