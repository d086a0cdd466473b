package ports

import (
	"context"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

// SessionStore persists dashboard session records. Implementations must treat
// session IDs as opaque and return (nil, nil) for unknown IDs.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}
