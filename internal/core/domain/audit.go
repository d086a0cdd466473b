package domain

import "time"

// AuditOutcome classifies an authentication event for the login audit trail.
type AuditOutcome string

const (
	AuditLoginOK     AuditOutcome = "login_ok"
	AuditLoginFailed AuditOutcome = "login_failed"
	AuditRoleDenied  AuditOutcome = "role_denied"
	AuditLogout      AuditOutcome = "logout"
)

// AuditEvent records one authentication event. Events are written
// asynchronously; losing one on shutdown is acceptable, blocking a login on
// Mongo is not.
type AuditEvent struct {
	ID        string       `json:"id"`
	Outcome   AuditOutcome `json:"outcome"`
	Login     string       `json:"login"`
	UserID    int64        `json:"user_id,omitempty"`
	Role      string       `json:"role,omitempty"`
	RemoteIP  string       `json:"remote_ip,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
