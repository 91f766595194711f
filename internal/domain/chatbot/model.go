package chatbot

import (
	"errors"
	"strings"
	"time"
)

const (
	// EmptyPrompt answers a blank question.
	EmptyPrompt = "Please ask a question!"

	// Fallback answers anything the FAQ does not cover, including lookups that
	// failed.
	Fallback = "I apologize, but I don't have information about that. " +
		"Please contact our reception at +91-XXX-XXX-XXXX or visit our help desk for assistance. " +
		"You can also try asking about: Hospital Hours, Appointments, Emergency Contact, " +
		"Departments, Visitor Policy, or other hospital services."
)

var ErrNoMatch = errors.New("no matching question")

// Entry is one row of chatbot_qa.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Matches reports whether the normalized input and the entry's question
// contain one another. input must already be trimmed and lowercased.
func (e *Entry) Matches(input string) bool {
	q := strings.ToLower(e.Question)
	if q == "" || input == "" {
		return false
	}
	return strings.Contains(input, q) || strings.Contains(q, input)
}

// Normalize trims and lowercases a question.
func Normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}
