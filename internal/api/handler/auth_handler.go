package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vietour/admin-gateway/internal/api/middleware"
	apisession "github.com/vietour/admin-gateway/internal/api/session"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

// AuthHandler exposes the login, logout and identity endpoints.
type AuthHandler struct {
	auth    ports.AuthService
	signer  *apisession.TokenSigner
	cookies apisession.CookieOptions
}

func NewAuthHandler(auth ports.AuthService, signer *apisession.TokenSigner, cookies apisession.CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, signer: signer, cookies: cookies}
}

type loginRequest struct {
	// Login may be an email address or a phone number; the booking API owns
	// format validation.
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User      any    `json:"user"`
	CSRFToken string `json:"csrf_token"`
}

// Login exchanges credentials for a dashboard session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials (login may be email or phone)"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	sess, err := h.auth.Login(c.Request().Context(), ports.Credentials{
		Login:    req.Login,
		Password: req.Password,
	}, c.RealIP())
	if err != nil {
		return err
	}

	token, err := h.signer.Issue(sess.ID)
	if err != nil {
		return err
	}

	apisession.SetCookie(c.Response(), sess.ID, sess.ExpiresAt, h.cookies)
	return c.JSON(http.StatusOK, sessionResponse{User: sess.User, CSRFToken: token})
}

// Me returns the identity behind the current session. The route guard has
// already resolved the session; a request that reaches this handler is
// authenticated by construction.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}

	token, err := h.signer.Issue(sess.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: sess.User, CSRFToken: token})
}

// Logout ends the session. Always succeeds from the caller's perspective:
// the backend call is best-effort, local state is cleared unconditionally.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sess, ok := middleware.SessionFromContext(c); ok {
		h.auth.Logout(c.Request().Context(), sess, c.RealIP())
	}
	apisession.ClearCookie(c.Response(), h.cookies)
	return c.NoContent(http.StatusNoContent)
}
