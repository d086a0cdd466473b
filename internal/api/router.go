package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/vietour/admin-gateway/docs"
	"github.com/vietour/admin-gateway/internal/api/handler"
	"github.com/vietour/admin-gateway/internal/api/middleware"
	apisession "github.com/vietour/admin-gateway/internal/api/session"
	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
	"github.com/vietour/admin-gateway/internal/core/service"
)

// Deps carries everything the router needs. All dependencies are injected;
// the router itself holds no state.
type Deps struct {
	Auth     ports.AuthService
	Backend  ports.BookingAPI
	Sessions ports.SessionStore
	Audits   ports.AuditRepository
	Nav      *service.NavigationService
	Signer   *apisession.TokenSigner
	Cookies  apisession.CookieOptions
	Redis    *redis.Client
	Mongo    *mongo.Database
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("admin_gateway"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Signer, d.Cookies)
	navHandler := handler.NewNavigationHandler(d.Nav)
	auditHandler := handler.NewAuditHandler(d.Audits)
	proxyHandler := handler.NewProxyHandler(d.Backend, d.Sessions, d.Log)

	// --- Public routes ---
	e.POST("/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Redis, d.Mongo)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Guarded routes: session gate first, then the anti-forgery check ---
	sessionGate := middleware.Session(d.Auth, d.Cookies)
	csrfGate := middleware.CSRF(d.Signer)

	guarded := e.Group("", sessionGate, csrfGate)
	guarded.GET("/me", authHandler.Me)
	guarded.POST("/logout", authHandler.Logout)
	guarded.GET("/navigation", navHandler.Navigation)

	// Role-gated routes compose RBAC on top of the session gate; the role
	// check never runs before the session has resolved.
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	guarded.GET("/audit/logins", auditHandler.Logins, adminOnly)

	// --- CRUD resource proxy ---
	apiGroup := e.Group("/api", sessionGate, csrfGate)
	resources := []struct {
		prefix string
		roles  []string
	}{
		{prefix: "/tours"},
		{prefix: "/categories"},
		{prefix: "/destinations"},
		{prefix: "/destination-categories"},
		{prefix: "/user", roles: []string{domain.RoleAdmin}},
	}
	for _, r := range resources {
		var mw []echo.MiddlewareFunc
		if len(r.roles) > 0 {
			mw = append(mw, middleware.RBAC(r.roles...))
		}
		apiGroup.Any(r.prefix, proxyHandler.Forward, mw...)
		apiGroup.Any(r.prefix+"/*", proxyHandler.Forward, mw...)
	}

	return e
}
