package chatbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// repoPG queries the pool directly rather than a request connection, so a
// lookup can fail on its own without the request failing.
type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) FirstMatch(ctx context.Context, input string) (*Entry, error) {
	var e Entry
	err := r.pool.QueryRow(ctx, `
		SELECT id, question, answer, COALESCE(category, ''), created_at
		FROM chatbot_qa
		WHERE question <> ''
			AND (position(lower(question) in $1) > 0 OR position($1 in lower(question)) > 0)
		ORDER BY id
		LIMIT 1`, input,
	).Scan(&e.ID, &e.Question, &e.Answer, &e.Category, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("match faq: %w", err)
	}
	return &e, nil
}

func (r *repoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chatbot_qa`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count faq: %w", err)
	}
	return n, nil
}

func (r *repoPG) InsertMany(ctx context.Context, entries []Entry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO chatbot_qa (question, answer, category) VALUES ($1, $2, $3)`,
			e.Question, e.Answer, e.Category)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert faq: %w", err)
	}
	return nil
}
