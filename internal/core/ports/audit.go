package ports

import (
	"context"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

// AuditRecorder accepts authentication events for the login audit trail.
// Implementations are expected to be asynchronous and non-blocking.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists and queries audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
	Recent(ctx context.Context, limit int64) ([]domain.AuditEvent, error)
}
