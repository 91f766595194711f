package chatbot

import "context"

// Repository defines the persistence interface for FAQ entries.
type Repository interface {
	// FirstMatch returns the lowest-id entry matching the normalized input,
	// or ErrNoMatch.
	FirstMatch(ctx context.Context, input string) (*Entry, error)
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, entries []Entry) error
}
