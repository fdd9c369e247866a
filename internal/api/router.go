package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sijagur/dashboard-gateway/docs"
	"github.com/sijagur/dashboard-gateway/internal/api/handler"
	"github.com/sijagur/dashboard-gateway/internal/api/middleware"
	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// Dependencies are the wired services the router exposes. Mongo and Redis are
// only used for readiness and may be nil.
type Dependencies struct {
	GinAPI    ports.GinAPI
	Caller    ports.APICaller
	Auth      ports.Authenticator
	Session   ports.SessionLifecycle
	Guard     handler.GuardFactory
	Dashboard ports.DashboardService

	// Sender forwards proxied writes with the caller's own token. Nil
	// disables proxied writes.
	Sender   ports.BearerSender
	Verifier ports.TokenVerifier

	Mongo *mongo.Database
	Redis *redis.Client

	// ExpiryPolicy applies to the request-scoped sessions built from callers'
	// bearer tokens.
	ExpiryPolicy domain.ExpiryPolicy
	// RequireClient puts dashboard, proxy and service session routes behind
	// a caller token checked by Verifier.
	RequireClient bool

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It panics when RequireClient is set without a Verifier.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.RequireClient && deps.Verifier == nil {
		panic("api: RequireClient needs a token verifier")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	// per-router registry, merged with the default one on /metrics
	httpMetrics := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "gateway",
		Registerer: httpMetrics,
	}))

	clientSession := middleware.ClientSession(deps.ExpiryPolicy)
	gate := []echo.MiddlewareFunc{}
	if deps.RequireClient {
		gate = append(gate, clientSession, middleware.RequireAuthenticated(), middleware.VerifyClient(deps.Verifier))
	}

	// --- Auth pass-through ---
	authHandler := handler.NewAuthHandler(deps.GinAPI)
	auth := e.Group("/v1/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)

	// --- Service session and route guard ---
	sessionHandler := handler.NewSessionHandler(deps.Session, deps.Auth, deps.Guard)
	session := e.Group("/v1/session")
	session.GET("", sessionHandler.State)
	session.POST("/login", sessionHandler.Login, gate...)
	session.POST("/logout", sessionHandler.Logout, gate...)
	session.GET("/route", sessionHandler.Route, clientSession)

	// --- Dashboard and proxy ---
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	dashboard := e.Group("/v1/dashboard", gate...)
	dashboard.GET("/realisasi-bulan", dashboardHandler.MonthlyCards)
	dashboard.GET("/realisasi-tahun", dashboardHandler.YearlyCards)
	dashboard.GET("/articles", dashboardHandler.Articles)
	dashboard.GET("/rankings", dashboardHandler.Rankings)
	dashboard.GET("/stats", dashboardHandler.Stats)

	// proxied writes need the caller's bearer even with the gate off
	proxyGate := gate
	if !deps.RequireClient {
		proxyGate = []echo.MiddlewareFunc{clientSession}
	}
	proxyHandler := handler.NewProxyHandler(deps.Caller, deps.Sender)
	e.Group("/v1/proxy", proxyGate...).Any("/*", proxyHandler.Forward)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis).WithSession(deps.Session)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
