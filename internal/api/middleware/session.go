package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apisession "github.com/vietour/admin-gateway/internal/api/session"
	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

// LoginRoute is where unauthenticated browser requests are sent.
const LoginRoute = "/login"

// Session is the authentication gate. It resolves the gateway session cookie
// before any protected handler runs: no handler ever observes an unresolved
// session. Every failure mode (missing cookie, unknown or expired session,
// an identity check the backend no longer confirms, a store outage)
// normalizes to the unauthenticated outcome.
func Session(auth ports.AuthService, opts apisession.CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if cookie, err := c.Request().Cookie(opts.Name()); err == nil {
				sessionID = cookie.Value
			}

			sess, err := auth.Resolve(c.Request().Context(), sessionID)
			if err != nil {
				apisession.ClearCookie(c.Response(), opts)
				return unauthenticated(c)
			}

			c.Set("session", sess)
			c.Set("user", sess.User)
			c.Set("role", sess.User.Role)
			return next(c)
		}
	}
}

// SessionFromContext returns the session injected by the Session middleware.
func SessionFromContext(c echo.Context) (*domain.Session, bool) {
	sess, ok := c.Get("session").(*domain.Session)
	return sess, ok
}

// unauthenticated sends the browser to the login screen; API callers get a
// plain 401. The redirect uses 303 so the guarded URL does not stay in the
// browser history as a resubmittable entry.
func unauthenticated(c echo.Context) error {
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, LoginRoute)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
}

func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "text/html")
}
