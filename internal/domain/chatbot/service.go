package chatbot

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/telemetry"
)

// LookupRecorder counts lookups by outcome.
type LookupRecorder interface {
	FAQLookup(outcome string)
}

type Service struct {
	repo   Repository
	rec    LookupRecorder
	logger zerolog.Logger
}

// NewService creates the responder. rec may be nil.
func NewService(repo Repository, rec LookupRecorder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, rec: rec, logger: logger}
}

// Respond answers one question. It never fails: store errors are logged and
// answered with Fallback.
func (s *Service) Respond(ctx context.Context, message string) string {
	input := Normalize(message)
	if input == "" {
		s.record(telemetry.OutcomeEmpty)
		return EmptyPrompt
	}

	entry, err := s.repo.FirstMatch(ctx, input)
	switch {
	case err == nil:
		s.record(telemetry.OutcomeMatched)
		return entry.Answer
	case errors.Is(err, ErrNoMatch):
		s.record(telemetry.OutcomeFallback)
	default:
		s.logger.Warn().Err(err).Msg("faq lookup failed")
		s.record(telemetry.OutcomeError)
	}
	return Fallback
}

// Seed loads DefaultEntries when the table is empty and reports how many rows
// it inserted.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	if err := s.repo.InsertMany(ctx, DefaultEntries); err != nil {
		return 0, err
	}
	return len(DefaultEntries), nil
}

func (s *Service) record(outcome string) {
	if s.rec != nil {
		s.rec.FAQLookup(outcome)
	}
}
