package port

import "context"

// AuditEntry represents a single auditable query event.
type AuditEntry struct {
	Session    string
	Surface    string
	Question   string
	SQL        string
	Outcome    string
	DurationMS int64
	Err        error
}

// QueryAuditor records query audit events.
type QueryAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}

// NoopAuditor discards all audit entries.
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, AuditEntry) {}
func (NoopAuditor) Close() error                       { return nil }
