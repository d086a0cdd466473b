package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/api/metrics"
	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

const (
	defaultSessionTTL   = 12 * time.Hour
	defaultCheckTimeout = 5 * time.Second
	defaultRevalidate   = 5 * time.Minute
)

// AuthService implements the four session-mutating flows. It is the only
// writer of session state; guards and handlers read through Resolve.
type AuthService struct {
	sessions ports.SessionStore
	backend  ports.BookingAPI
	audits   ports.AuditRecorder

	sessionTTL   time.Duration
	checkTimeout time.Duration
	revalidate   time.Duration
	log          zerolog.Logger
}

// Options tunes session lifetimes. Zero values fall back to defaults.
type Options struct {
	// SessionTTL is the absolute dashboard session lifetime.
	SessionTTL time.Duration
	// CheckTimeout bounds a single identity round trip. A hung backend must
	// not leave the dashboard stuck on its loading screen; past the deadline
	// the check settles as unauthenticated.
	CheckTimeout time.Duration
	// Revalidate is how long a confirmed identity is trusted before the guard
	// re-runs the identity check.
	Revalidate time.Duration
}

func NewAuthService(sessions ports.SessionStore, backend ports.BookingAPI, audits ports.AuditRecorder, opts Options, log zerolog.Logger) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = defaultCheckTimeout
	}
	if opts.Revalidate <= 0 {
		opts.Revalidate = defaultRevalidate
	}
	return &AuthService{
		sessions:     sessions,
		backend:      backend,
		audits:       audits,
		sessionTTL:   opts.SessionTTL,
		checkTimeout: opts.CheckTimeout,
		revalidate:   opts.Revalidate,
		log:          log,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login runs the credential exchange end to end:
//
//  1. prime the anti-forgery cookie,
//  2. submit credentials with the token attached,
//  3. enforce the role allow-list; a disallowed role gets its backend
//     session revoked immediately so the cookie cannot be replayed at /me,
//  4. re-confirm identity with the backend instead of trusting the login
//     response body, then establish the dashboard session.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials, remoteIP string) (*domain.Session, error) {
	cookies, err := s.backend.PrimeCSRF(ctx)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	user, cookies, err := s.backend.Login(ctx, creds, cookies)
	if err != nil {
		s.recordLoginFailure(creds.Login, remoteIP, err)
		return nil, err
	}

	if !domain.RoleCanLogin(user.Role) {
		// Credentials were accepted, so the backend set a session cookie.
		// Revoke it; otherwise a later identity check would silently log the
		// user in without any role gate.
		if err := s.backend.Logout(ctx, cookies); err != nil {
			s.log.Warn().Err(err).Str("login", creds.Login).Msg("failed to revoke disallowed-role session")
		}
		metrics.LoginsTotal.WithLabelValues("role_denied").Inc()
		s.audit(domain.AuditEvent{
			Outcome:  domain.AuditRoleDenied,
			Login:    creds.Login,
			UserID:   user.ID,
			Role:     user.Role,
			RemoteIP: remoteIP,
		})
		return nil, domain.ErrNoAccess
	}

	ident := s.identity(ctx, cookies)
	if !ident.Authenticated() {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, errors.Join(domain.ErrUpstream, errors.New("identity not confirmed after login"))
	}

	// The session is built from the confirmed identity, so the allow-list must
	// hold for it too, not just for the login-response user.
	if !domain.RoleCanLogin(ident.User.Role) {
		if err := s.backend.Logout(ctx, cookies); err != nil {
			s.log.Warn().Err(err).Str("login", creds.Login).Msg("failed to revoke disallowed-role session")
		}
		metrics.LoginsTotal.WithLabelValues("role_denied").Inc()
		s.audit(domain.AuditEvent{
			Outcome:  domain.AuditRoleDenied,
			Login:    creds.Login,
			UserID:   ident.User.ID,
			Role:     ident.User.Role,
			RemoteIP: remoteIP,
		})
		return nil, domain.ErrNoAccess
	}

	id, err := domain.NewSessionID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:              id,
		User:            ident.User,
		Checked:         true,
		UpstreamCookies: cookies,
		CreatedAt:       now,
		RefreshedAt:     now,
		ExpiresAt:       now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.audit(domain.AuditEvent{
		Outcome:  domain.AuditLoginOK,
		Login:    creds.Login,
		UserID:   ident.User.ID,
		Role:     ident.User.Role,
		RemoteIP: remoteIP,
	})
	return sess, nil
}

// Refresh re-runs the identity check and writes the outcome back in a single
// store write. Both outcomes flip Checked to true exactly once; nothing ever
// resets it within the session's lifetime. Repeated calls with an unchanged
// backend session converge on the same state.
func (s *AuthService) Refresh(ctx context.Context, sess *domain.Session) (domain.Identity, error) {
	ident := s.identity(ctx, sess.UpstreamCookies)

	sess.User = ident.User
	sess.Checked = true
	sess.RefreshedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return ident, err
	}
	return ident, nil
}

// Logout tears the session down. The backend invalidation is fire-and-forget:
// whatever it returns, the local session is destroyed and the caller clears
// the cookie, so logout always succeeds from the dashboard's point of view.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session, remoteIP string) {
	upstream := "ok"
	if err := s.backend.Logout(ctx, sess.UpstreamCookies); err != nil {
		upstream = "failed"
		s.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	metrics.LogoutsTotal.WithLabelValues(upstream).Inc()

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		s.log.Error().Err(err).Msg("session delete failed")
	}

	ev := domain.AuditEvent{Outcome: domain.AuditLogout, RemoteIP: remoteIP}
	if sess.User != nil {
		ev.Login = sess.User.Email
		ev.UserID = sess.User.ID
		ev.Role = sess.User.Role
	}
	s.audit(ev)
}

// Resolve loads the session for a request. Expired or unknown IDs resolve to
// ErrSessionNotFound. A session whose identity confirmation has gone stale is
// refreshed first; when the backend no longer recognises it, the session is
// destroyed and the request is treated as unauthenticated.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, domain.ErrSessionNotFound
	}

	if !sess.Checked || time.Since(sess.RefreshedAt) > s.revalidate {
		ident, err := s.Refresh(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !ident.Authenticated() {
			_ = s.sessions.Delete(ctx, sess.ID)
			return nil, domain.ErrSessionNotFound
		}
	}

	if !sess.Authenticated() {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// identity is the single place the "swallow all failures" policy lives. The
// round trip is bounded by checkTimeout; timeouts, transport errors and
// malformed bodies all settle as Unauthenticated.
func (s *AuthService) identity(ctx context.Context, cookies domain.CookieSet) domain.Identity {
	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	user, err := s.backend.Me(checkCtx, cookies)
	if err != nil {
		s.log.Debug().Err(err).Msg("identity check failed, treating as unauthenticated")
		user = nil
	}

	result := "unauthenticated"
	if user != nil {
		result = "authenticated"
	}
	metrics.SessionChecksTotal.WithLabelValues(result).Inc()
	return domain.Identity{User: user}
}

func (s *AuthService) recordLoginFailure(login, remoteIP string, err error) {
	var ve *domain.ValidationError
	var de *domain.DeniedError
	switch {
	case errors.As(err, &ve):
		metrics.LoginsTotal.WithLabelValues("validation").Inc()
	case errors.As(err, &de):
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		s.audit(domain.AuditEvent{
			Outcome:  domain.AuditLoginFailed,
			Login:    login,
			RemoteIP: remoteIP,
			Detail:   de.Message,
		})
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
	}
}

func (s *AuthService) audit(ev domain.AuditEvent) {
	if s.audits == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now().UTC()
	s.audits.Record(ev)
}
