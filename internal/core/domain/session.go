package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Cookie is an upstream cookie held on behalf of the browser. The gateway keeps
// the booking API's own session and CSRF cookies inside the dashboard session
// record, so the browser only ever sees the gateway cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CookieSet is the upstream cookies belonging to one dashboard session.
type CookieSet []Cookie

// Get returns the value of the named cookie, or "" when absent.
func (cs CookieSet) Get(name string) string {
	for _, c := range cs {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Merge overlays incoming cookies on the set, replacing same-named entries.
func (cs CookieSet) Merge(in CookieSet) CookieSet {
	out := make(CookieSet, 0, len(cs)+len(in))
	for _, c := range cs {
		if in.Get(c.Name) == "" {
			out = append(out, c)
		}
	}
	return append(out, in...)
}

// Session is the dashboard session record. It is the single source of truth for
// authentication state: Authenticated is derived from User and never stored.
type Session struct {
	ID              string    `json:"id"`
	User            *User     `json:"user,omitempty"`
	Checked         bool      `json:"checked"` // first identity check has settled
	UpstreamCookies CookieSet `json:"upstream_cookies,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	RefreshedAt     time.Time `json:"refreshed_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Authenticated reports whether the session carries a confirmed identity.
// It is exactly User != nil; there is no independent flag to drift from it.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Expired reports whether the session has passed its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Identity is the two-valued outcome of an identity check: Authenticated(user)
// or Unauthenticated. Transport failures, non-200 responses and malformed
// bodies are all normalized to Unauthenticated by the caller; an anonymous
// visitor is an expected steady state, not a fault.
type Identity struct {
	User *User
}

// Authenticated reports whether the check confirmed an identity.
func (i Identity) Authenticated() bool {
	return i.User != nil
}

// NewSessionID generates a cryptographically secure session ID.
// 32 bytes = 256 bits of entropy.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
