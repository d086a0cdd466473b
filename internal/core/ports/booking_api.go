package ports

import (
	"context"
	"io"
	"net/url"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

// Credentials is a login submission. Login may be an email or a phone number;
// format policy belongs to the booking API, not the gateway.
type Credentials struct {
	Login    string
	Password string
}

// ForwardRequest describes one proxied resource call.
type ForwardRequest struct {
	Method      string
	Path        string // upstream path, e.g. "/tours/12"
	Query       url.Values
	ContentType string
	Body        io.Reader
	Cookies     domain.CookieSet
}

// ForwardResult is the upstream response handed back to the dashboard.
type ForwardResult struct {
	Status      int
	ContentType string
	Body        []byte
	SetCookies  domain.CookieSet
}

// BookingAPI is the remote tour-booking backend. The gateway never persists
// business data itself; every resource operation round-trips through here.
type BookingAPI interface {
	// PrimeCSRF performs the cookie-priming request and returns the anti-forgery
	// cookies the backend issued.
	PrimeCSRF(ctx context.Context) (domain.CookieSet, error)

	// Login exchanges credentials for a backend session. On success the
	// returned cookie set carries the backend session cookie. Failures map to
	// *domain.ValidationError (422), *domain.DeniedError (401/403) or
	// domain.ErrUpstream.
	Login(ctx context.Context, creds Credentials, cookies domain.CookieSet) (*domain.User, domain.CookieSet, error)

	// Me performs the "who am I" round trip. A nil user with nil error means
	// the backend answered but recognised no session.
	Me(ctx context.Context, cookies domain.CookieSet) (*domain.User, error)

	// Logout invalidates the backend session. Best-effort.
	Logout(ctx context.Context, cookies domain.CookieSet) error

	// Forward proxies one resource request with the session's cookies attached.
	Forward(ctx context.Context, req ForwardRequest) (*ForwardResult, error)
}
