// Package account implements admin and patient login.
package account

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/auth"
)

// ErrInvalidCredentials covers every failed login so callers cannot tell an
// unknown user from a wrong secret.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*admin.Account, error)
}

type PatientVerifier interface {
	VerifyPatient(ctx context.Context, id int64, email string) (*identity.Patient, error)
}

// Login is a successful sign-in.
type Login struct {
	Identity *auth.Identity
	// Greeting is the name used in the welcome notice.
	Greeting string
}

type Service struct {
	admins   AdminAuthenticator
	patients PatientVerifier
	logger   zerolog.Logger
}

func NewService(admins AdminAuthenticator, patients PatientVerifier, logger zerolog.Logger) *Service {
	return &Service{admins: admins, patients: patients, logger: logger}
}

func (s *Service) LoginAdmin(ctx context.Context, username, password string) (*Login, error) {
	acct, err := s.admins.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, admin.ErrAccountNotFound) {
			s.logger.Error().Err(err).Msg("admin lookup failed")
		}
		return nil, ErrInvalidCredentials
	}
	return &Login{
		Identity: &auth.Identity{UserID: acct.ID, Name: acct.Username, Role: auth.RoleAdmin},
		Greeting: "Admin",
	}, nil
}

// LoginPatient checks a patient id and email. rawID comes straight from the
// form; anything that is not a positive integer fails like a wrong email.
func (s *Service) LoginPatient(ctx context.Context, rawID, email string) (*Login, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidCredentials
	}

	p, err := s.patients.VerifyPatient(ctx, id, email)
	if err != nil {
		if !errors.Is(err, identity.ErrPatientNotFound) && !errors.Is(err, identity.ErrPatientMismatch) {
			s.logger.Error().Err(err).Int64("patient_id", id).Msg("patient lookup failed")
		}
		return nil, ErrInvalidCredentials
	}
	return &Login{
		Identity: &auth.Identity{UserID: p.ID, Name: p.FullName(), Role: auth.RolePatient, PatientID: p.ID},
		Greeting: p.FirstName,
	}, nil
}
