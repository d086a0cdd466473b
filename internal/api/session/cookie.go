// Package session owns the browser-facing session artifacts: the gateway
// session cookie and the anti-forgery token issued alongside it.
package session

import (
	"net/http"
	"time"
)

const (
	// secureCookieName pins the cookie to this host, Secure, and Path=/.
	secureCookieName = "__Host-admin_session"
	// plainCookieName is used without TLS; browsers reject __Host- cookies
	// that lack the Secure attribute, which would make local logins vanish.
	plainCookieName = "admin_session"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	// Secure should only be false in local development.
	Secure bool
}

// Name returns the session cookie name. The __Host- prefix is only valid on
// Secure cookies, so it is dropped when Secure is disabled.
func (o CookieOptions) Name() string {
	if o.Secure {
		return secureCookieName
	}
	return plainCookieName
}

// SetCookie issues the session cookie to the browser.
func SetCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name(),
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the browser.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
