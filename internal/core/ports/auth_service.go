package ports

import (
	"context"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

// AuthService owns the four session-mutating flows: login, logout, the
// identity refresh, and session resolution for the route guard. Nothing else
// writes session state.
type AuthService interface {
	// Login runs the full credential exchange: prime CSRF, submit credentials,
	// enforce the role allow-list, then re-confirm identity against the backend
	// before any session is established.
	Login(ctx context.Context, creds Credentials, remoteIP string) (*domain.Session, error)

	// Refresh re-runs the identity check for an existing session and writes the
	// outcome back exactly once. Idempotent; all failures normalize to the
	// unauthenticated outcome.
	Refresh(ctx context.Context, s *domain.Session) (domain.Identity, error)

	// Logout tears the session down. The backend call is best-effort; local
	// state is cleared regardless.
	Logout(ctx context.Context, s *domain.Session, remoteIP string)

	// Resolve loads and validates the session for a request, refreshing the
	// identity when it has gone stale. Returns domain.ErrSessionNotFound when
	// no authenticated session exists.
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}
