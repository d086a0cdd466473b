// Package upstream implements the HTTP client for the remote tour-booking API.
// The gateway holds the backend's cookies per dashboard session and replays
// them on every call; the browser never talks to the backend directly.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/api/metrics"
	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

const (
	csrfCookiePath = "/sanctum/csrf-cookie"
	loginPath      = "/login"
	mePath         = "/me"
	logoutPath     = "/logout"

	// xsrfCookie/xsrfHeader follow the backend's double-submit convention.
	xsrfCookie = "XSRF-TOKEN"
	xsrfHeader = "X-XSRF-TOKEN"

	defaultTimeout = 5 * time.Second
)

// Client talks to the booking API. It deliberately has no cookie jar: cookies
// belong to individual dashboard sessions and are passed in per call.
//
// The backend has two bases: resource and auth routes live under the API
// prefix, while the CSRF priming endpoint is served at the host root.
type Client struct {
	apiURL  string
	rootURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client. apiURL is the prefixed API base; rootURL is the base
// for the priming endpoint and defaults to apiURL's origin when empty.
func New(apiURL, rootURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	apiURL = strings.TrimRight(apiURL, "/")
	if rootURL == "" {
		rootURL = origin(apiURL)
	}
	return &Client{
		apiURL:  apiURL,
		rootURL: strings.TrimRight(rootURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// origin strips the path from a base URL, leaving scheme and host.
func origin(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return base
	}
	return u.Scheme + "://" + u.Host
}

var _ ports.BookingAPI = (*Client)(nil)

// meResponse matches the identity endpoint payload: { "user": {...} }.
type meResponse struct {
	User *domain.User `json:"user"`
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// PrimeCSRF performs the cookie-priming request and returns the cookies the
// backend issued (anti-forgery token plus its own session cookie). The
// endpoint hangs off the host root, not the API prefix.
func (c *Client) PrimeCSRF(ctx context.Context) (domain.CookieSet, error) {
	resp, err := c.doAt(ctx, c.rootURL, http.MethodGet, csrfCookiePath, nil, "", nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: csrf priming returned %d", domain.ErrUpstream, resp.StatusCode)
	}
	return collectCookies(resp), nil
}

// Login submits credentials with the anti-forgery token attached. The returned
// cookie set merges everything the backend set during the exchange.
func (c *Client) Login(ctx context.Context, creds ports.Credentials, cookies domain.CookieSet) (*domain.User, domain.CookieSet, error) {
	payload, err := json.Marshal(map[string]string{
		"login":    creds.Login,
		"password": creds.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal login payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, cookies, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	defer drain(resp)

	merged := cookies.Merge(collectCookies(resp))

	switch {
	case resp.StatusCode == http.StatusOK:
		var body meResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.User == nil {
			return nil, nil, fmt.Errorf("%w: malformed login response", domain.ErrUpstream)
		}
		return body.User, merged, nil

	case resp.StatusCode == http.StatusUnprocessableEntity:
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = "invalid input"
		}
		return nil, nil, &domain.ValidationError{Message: body.Message, Fields: body.Errors}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = "invalid credentials"
		}
		return nil, nil, &domain.DeniedError{Status: resp.StatusCode, Message: body.Message}

	default:
		return nil, nil, fmt.Errorf("%w: login returned %d", domain.ErrUpstream, resp.StatusCode)
	}
}

// Me performs the identity round trip. Any answer other than a 200 carrying a
// user decodes to (nil, nil): the backend recognised no session. Only transport
// failures surface as errors.
func (c *Client) Me(ctx context.Context, cookies domain.CookieSet) (*domain.User, error) {
	resp, err := c.do(ctx, http.MethodGet, mePath, cookies, "", nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var body meResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil
	}
	return body.User, nil
}

// Logout invalidates the backend session. Callers treat failures as advisory.
func (c *Client) Logout(ctx context.Context, cookies domain.CookieSet) error {
	resp, err := c.do(ctx, http.MethodPost, logoutPath, cookies, "", nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: logout returned %d", domain.ErrUpstream, resp.StatusCode)
	}
	return nil
}

// Forward proxies one resource request and returns the backend's response.
func (c *Client) Forward(ctx context.Context, req ports.ForwardRequest) (*ports.ForwardResult, error) {
	path := req.Path
	if len(req.Query) > 0 {
		path += "?" + req.Query.Encode()
	}

	resp, err := c.do(ctx, req.Method, path, req.Cookies, req.ContentType, req.Body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}

	return &ports.ForwardResult{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		SetCookies:  collectCookies(resp),
	}, nil
}

// do issues one request against the API base with cookies and the
// anti-forgery header attached.
func (c *Client) do(ctx context.Context, method, path string, cookies domain.CookieSet, contentType string, body io.Reader) (*http.Response, error) {
	return c.doAt(ctx, c.apiURL, method, path, cookies, contentType, body)
}

func (c *Client) doAt(ctx context.Context, base, method, path string, cookies domain.CookieSet, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := xsrfToken(cookies); token != "" {
			req.Header.Set(xsrfHeader, token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method, path2label(path)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return resp, nil
}

// xsrfToken extracts and URL-decodes the anti-forgery cookie value. The
// backend URL-encodes cookie values, so the raw value cannot go on the header.
func xsrfToken(cookies domain.CookieSet) string {
	raw := cookies.Get(xsrfCookie)
	if raw == "" {
		return ""
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func collectCookies(resp *http.Response) domain.CookieSet {
	raw := resp.Cookies()
	if len(raw) == 0 {
		return nil
	}
	out := make(domain.CookieSet, 0, len(raw))
	for _, ck := range raw {
		out = append(out, domain.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// path2label strips the query and any numeric segments so the metric label
// cardinality stays bounded.
func path2label(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
