package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/unrolled/secure"

	_ "github.com/99minutos/identity-system/internal/api/docs"
	"github.com/99minutos/identity-system/internal/api/handler"
	"github.com/99minutos/identity-system/internal/api/middleware"
	"github.com/99minutos/identity-system/internal/core/ports"
)

const adminAuthority = "ROLE_ADMIN"

// Deps carries everything the HTTP layer needs. Checks feeds the readiness
// probe; Registry and Gatherer default to the global Prometheus registry.
type Deps struct {
	Log          zerolog.Logger
	AuthService  ports.AuthService
	AuditService ports.AuditService
	Codec        ports.TokenCodec
	Checks       map[string]handler.DependencyCheck
	Production   bool

	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registry == nil {
		d.Registry = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        d.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !d.Production,
	})

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echo.WrapMiddleware(secureMiddleware.Handler))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registry,
	}))
	e.Use(middleware.Authenticate(d.Codec, d.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	adminHandler := handler.NewAdminHandler(d.AuthService, d.AuditService)
	helloHandler := handler.NewHelloHandler()
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	requireAdmin := middleware.RequireAuthority(adminAuthority)

	// --- Security routes ---
	sec := e.Group("/security")
	sec.POST("/signup", authHandler.SignUp)
	sec.POST("/login", authHandler.Login)
	sec.PATCH("/update", authHandler.Update)
	sec.GET("/me", authHandler.Me, middleware.RequireAuthenticated())

	// --- Administration (ADMIN only) ---
	admin := sec.Group("/admin", requireAdmin)
	admin.POST("/user/:username/role/:role", adminHandler.AddRole)
	admin.DELETE("/user/:username/role/:role", adminHandler.RemoveRole)
	admin.GET("/user", adminHandler.ListUsers)
	admin.GET("/user/username/:username", adminHandler.GetByUsername)
	admin.GET("/user/user_id/:user_id", adminHandler.GetByUserID)
	admin.GET("/user/:username/roles", adminHandler.ListRoles)
	admin.GET("/user/:username/events", adminHandler.Events)
	admin.PATCH("/update", authHandler.Update)

	// --- Sample endpoints ---
	e.GET("/hello-world/insecure", helloHandler.Insecure)
	e.GET("/hello-world/secure", helloHandler.Secure, requireAdmin)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
