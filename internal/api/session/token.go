package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HeaderName is the request header carrying the anti-forgery token on
// state-changing gateway routes.
const HeaderName = "X-CSRF-Token"

// TokenSigner issues and verifies anti-forgery tokens. A token is an HS256
// JWT bound to one session ID, so a leaked token from another session is
// useless and nothing needs to be stored server-side.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// Issue creates a token bound to sessionID.
func (t *TokenSigner) Issue(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign csrf token: %w", err)
	}
	return signed, nil
}

// Verify reports whether token is valid and bound to sessionID.
func (t *TokenSigner) Verify(token, sessionID string) bool {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}
	sid, _ := claims["sid"].(string)
	return sid != "" && sid == sessionID
}
