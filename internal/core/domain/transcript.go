package domain

import "github.com/google/uuid"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Entry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the append-only message log of one interactive session.
// It lives in memory only and is not safe for concurrent use.
type Transcript struct {
	id      string
	entries []Entry
}

func NewTranscript() *Transcript {
	return &Transcript{id: uuid.NewString()}
}

// ID identifies the session in logs and audit records.
func (t *Transcript) ID() string {
	return t.id
}

func (t *Transcript) Append(role Role, text string) {
	t.entries = append(t.entries, Entry{Role: role, Text: text})
}

// Entries returns a copy of the log in insertion order.
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Len() int {
	return len(t.entries)
}
