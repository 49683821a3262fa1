package models

import "time"

const (
	ShareStatusActive  = "active"
	ShareStatusRevoked = "revoked"
	ShareStatusExpired = "expired"
)

const (
	PendingStatusNone     = "none"
	PendingStatusPending  = "pending"
	PendingStatusAccepted = "accepted"
	PendingStatusDeclined = "declined"
)

type Share struct {
	ID             int64        `json:"id"`
	Token          string       `json:"token"`
	CodeHash       string       `json:"-"`
	OwnerID        int64        `json:"owner_id"`
	Scope          Scope        `json:"scope"`
	Snapshot       ProfileData  `json:"snapshot"`
	Editable       bool         `json:"editable"`
	RecipientName  *string      `json:"recipient_name,omitempty"`
	Status         string       `json:"status"`
	PendingStatus  string       `json:"pending_status"`
	PendingEdits   *ProfileData `json:"pending_edits,omitempty"`
	PendingAt      *time.Time   `json:"pending_at,omitempty"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	CreatedAt      time.Time    `json:"created_at"`
}

// MarkExpiredIfStale applies the lazy inactivity-expiry rule in memory. It
// returns true when the share just crossed the timeout, in which case the
// caller is expected to persist the new status so it becomes sticky.
func (s *Share) MarkExpiredIfStale(now time.Time, timeout time.Duration) bool {
	if s.Status != ShareStatusActive {
		return false
	}
	if now.Sub(s.LastAccessedAt) > timeout {
		s.Status = ShareStatusExpired
		return true
	}
	return false
}
