//go:build integration

package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/chatbot"
)

// The chatbot store reads through the pool, so these tests use the public
// schema and must not run in parallel.
func resetFAQ(t *testing.T, ctx context.Context) {
	t.Helper()
	if _, err := globalDB.Pool.Exec(ctx, "TRUNCATE chatbot_qa RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate chatbot_qa: %v", err)
	}
}

func TestChatbotSeedAndRespond(t *testing.T) {
	ctx := context.Background()
	resetFAQ(t, ctx)

	repo := chatbot.NewRepo(globalDB.Pool)
	svc := chatbot.NewService(repo, nil, zerolog.Nop())

	n, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != len(chatbot.DefaultEntries) {
		t.Fatalf("expected %d seeded entries, got %d", len(chatbot.DefaultEntries), n)
	}
	n, err = svc.Seed(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected second Seed to be a no-op, n=%d err=%v", n, err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != int64(len(chatbot.DefaultEntries)) {
		t.Errorf("expected %d rows, got %d", len(chatbot.DefaultEntries), count)
	}

	tests := []struct {
		name    string
		message string
		prefix  string
	}{
		{"exact question", "Hospital Hours", "Our hospital is open 24/7"},
		{"question inside message", "  what are the EMERGENCY CONTACT numbers?  ", "🚨"},
		{"message inside question", "visitor", "Visiting hours are"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Respond(ctx, tt.message)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("Respond(%q) = %q, want prefix %q", tt.message, got, tt.prefix)
			}
		})
	}

	if got := svc.Respond(ctx, "zzz quantum teleportation"); got != chatbot.Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := svc.Respond(ctx, "   "); got != chatbot.EmptyPrompt {
		t.Errorf("expected empty prompt, got %q", got)
	}
}

func TestChatbotFirstMatchPrefersLowestID(t *testing.T) {
	ctx := context.Background()
	resetFAQ(t, ctx)

	repo := chatbot.NewRepo(globalDB.Pool)
	err := repo.InsertMany(ctx, []chatbot.Entry{
		{Question: "Parking", Answer: "first", Category: "General"},
		{Question: "Parking Fees", Answer: "second", Category: "General"},
		{Question: "", Answer: "never", Category: "General"},
	})
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}

	e, err := repo.FirstMatch(ctx, "parking fees")
	if err != nil {
		t.Fatalf("FirstMatch: %v", err)
	}
	if e.Answer != "first" {
		t.Errorf("expected lowest id match, got %q", e.Answer)
	}

	if _, err := repo.FirstMatch(ctx, "cafeteria"); !errors.Is(err, chatbot.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}
