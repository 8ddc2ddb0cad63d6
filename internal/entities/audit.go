package entities

import "time"

const (
	AuditSubmitted = "submitted"
	AuditApproved  = "approved"
	AuditRejected  = "rejected"
)

// AuditEntry is one event in a transaction's verification history.
type AuditEntry struct {
	Event string    `json:"event"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}

// VerificationAudit is the append-only verification log kept inside a
// transaction's metadata. Existing entries are never rewritten.
type VerificationAudit []AuditEntry

func (a VerificationAudit) Append(entry AuditEntry) VerificationAudit {
	out := make(VerificationAudit, len(a), len(a)+1)
	copy(out, a)
	return append(out, entry)
}
