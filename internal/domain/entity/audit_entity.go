package entity

import "time"

// AuditEntry records a security-relevant account event.
// UserID is kept as plain text so entries outlive deleted accounts.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
