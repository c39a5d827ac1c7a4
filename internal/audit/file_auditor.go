package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/port"
)

// record is one NDJSON line of the audit log.
type record struct {
	Timestamp  string  `json:"ts"`
	Session    string  `json:"session,omitempty"`
	Surface    string  `json:"surface,omitempty"`
	Question   string  `json:"question,omitempty"`
	SQL        string  `json:"sql"`
	Outcome    string  `json:"outcome"`
	DurationMS int64   `json:"duration_ms"`
	Error      *string `json:"error"`
}

// FileAuditor appends one JSON object per executed query to a file. Safe for
// concurrent use; the MCP HTTP transport may run several tool calls at once.
type FileAuditor struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

// NewFileAuditor opens path for appending, creating it and its parent
// directory when missing.
func NewFileAuditor(path string) (*FileAuditor, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileAuditor{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

var _ port.QueryAuditor = (*FileAuditor)(nil)

func (a *FileAuditor) Record(_ context.Context, entry port.AuditEntry) {
	rec := record{
		Session:    entry.Session,
		Surface:    entry.Surface,
		Question:   entry.Question,
		SQL:        entry.SQL,
		Outcome:    entry.Outcome,
		DurationMS: entry.DurationMS,
	}
	if entry.Err != nil {
		s := entry.Err.Error()
		rec.Error = &s
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	rec.Timestamp = a.now().UTC().Format(time.RFC3339Nano)
	_ = a.enc.Encode(rec) // audit I/O never fails a turn
}

func (a *FileAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
