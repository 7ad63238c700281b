package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/elobenin/rental-portal/docs"
	"github.com/elobenin/rental-portal/internal/api/handler"
	"github.com/elobenin/rental-portal/internal/api/middleware"
	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/pkg/validation"
)

// Dependencies groups what the router wires into handlers.
type Dependencies struct {
	Accounts ports.AccountService
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.PingFunc
	Log    zerolog.Logger
	// AuthRateLimit caps login and registration requests per second per
	// client IP. Zero disables the limiter.
	AuthRateLimit float64
	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(requestLogger(deps.Log)))
	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "portal"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if deps.Registry != nil {
		metricsCfg.Registerer = deps.Registry
		handlerCfg.Gatherer = deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	meHandler := handler.NewMeHandler(deps.Accounts)
	viewHandler := handler.NewViewHandler(deps.Accounts)
	authMiddleware := middleware.Auth(deps.Accounts)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.AuthRateLimit > 0 {
		store := echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.AuthRateLimit))
		auth.POST("/register", authHandler.Register, echomiddleware.RateLimiter(store))
		auth.POST("/login", authHandler.Login, echomiddleware.RateLimiter(store))
	} else {
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
	auth.POST("/logout", authHandler.Logout, authMiddleware)

	// --- Session routes ---
	me := e.Group("/me", authMiddleware)
	me.GET("", meHandler.Get)
	me.PATCH("/profile", meHandler.UpdateProfile)
	me.PUT("/role", meHandler.ChangeRole)
	me.GET("/capabilities", meHandler.Capabilities)

	// --- Role-gated views ---
	views := e.Group("/views", authMiddleware)
	views.GET("/navigation", viewHandler.Navigation)
	views.GET("/portfolio", viewHandler.Portfolio, middleware.RequireCapability(domain.CapViewPortfolio))
	views.GET("/tenancy", viewHandler.Tenancy, middleware.RequireCapability(domain.CapViewCurrentTenancy))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Checks)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}
}
