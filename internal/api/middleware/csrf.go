package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apisession "github.com/vietour/admin-gateway/internal/api/session"
)

// CSRF requires a valid anti-forgery token on state-changing requests. Safe
// methods pass through. Must be composed after Session.
func CSRF(signer *apisession.TokenSigner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			sess, ok := SessionFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			token := c.Request().Header.Get(apisession.HeaderName)
			if token == "" || !signer.Verify(token, sess.ID) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid csrf token")
			}
			return next(c)
		}
	}
}
