package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vietour/admin-gateway/internal/api/middleware"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

// apiPrefix is stripped from the request path before forwarding, so
// "/api/tours/12" reaches the backend as "/tours/12".
const apiPrefix = "/api"

// ProxyHandler forwards dashboard resource requests (tours, destinations,
// categories, users) to the booking API with the session's backend cookies
// attached. The gateway adds nothing to the payloads: CRUD semantics,
// validation and authorization of the data itself belong to the backend.
type ProxyHandler struct {
	backend  ports.BookingAPI
	sessions ports.SessionStore
	log      zerolog.Logger
}

func NewProxyHandler(backend ports.BookingAPI, sessions ports.SessionStore, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{backend: backend, sessions: sessions, log: log}
}

// Forward proxies one resource request and relays the backend's response
// verbatim: status, content type and body.
func (h *ProxyHandler) Forward(c echo.Context) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	req := c.Request()
	res, err := h.backend.Forward(req.Context(), ports.ForwardRequest{
		Method:      req.Method,
		Path:        strings.TrimPrefix(req.URL.Path, apiPrefix),
		Query:       c.QueryParams(),
		ContentType: req.Header.Get("Content-Type"),
		Body:        req.Body,
		Cookies:     sess.UpstreamCookies,
	})
	if err != nil {
		return err
	}

	// The backend may rotate its cookies mid-session; fold them back into the
	// session record so later calls keep working.
	if len(res.SetCookies) > 0 {
		sess.UpstreamCookies = sess.UpstreamCookies.Merge(res.SetCookies)
		if err := h.sessions.Save(req.Context(), sess); err != nil {
			h.log.Warn().Err(err).Msg("failed to persist rotated upstream cookies")
		}
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(res.Status, contentType, res.Body)
}
