package identity

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrPatientMismatch is returned when the id exists but the email differs.
var ErrPatientMismatch = errors.New("patient credentials do not match")

// Service holds the patient checks used by login.
type Service struct {
	patients PatientRepository
}

func NewService(patients PatientRepository) *Service {
	return &Service{patients: patients}
}

// VerifyPatient returns the patient when id and email both match exactly.
func (s *Service) VerifyPatient(ctx context.Context, id int64, email string) (*Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Email == "" || subtle.ConstantTimeCompare([]byte(p.Email), []byte(email)) != 1 {
		return nil, ErrPatientMismatch
	}
	return p, nil
}
