package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NotFoundRoute is where disallowed browser requests are sent. The dashboard
// deliberately shows "not found" rather than "forbidden" for role misses.
const NotFoundRoute = "/notfound"

// RBAC enforces a role allow-list on top of the Session gate. It must be
// composed after Session: the role it reads is only present once the session
// has resolved, so a role check can never race the authentication check.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				if wantsHTML(c) {
					return c.Redirect(http.StatusSeeOther, NotFoundRoute)
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
