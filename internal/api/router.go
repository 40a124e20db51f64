package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/noteapp/client/docs"
	"github.com/noteapp/client/internal/api/handler"
	"github.com/noteapp/client/internal/api/middleware"
	"github.com/noteapp/client/internal/app"
)

// Options tunes NewRouter.
type Options struct {
	// Registry receives the gateway's HTTP metrics. Nil uses the default
	// Prometheus registry, which also holds the client metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(a *app.App, log zerolog.Logger, opts Options) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "noteapp_gateway",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	screens := handler.NewScreenHandler(a, a.Cache)
	authHandler := handler.NewAuthHandler(a.Auth, a)
	interactions := handler.NewInteractionHandler(a.Cache)
	requireMember := middleware.RequireSession(a.Member)

	// --- Screens (guarded) ---
	table := a.Guard.Routes()
	for _, route := range table.Routes {
		if len(route.Children) > 0 {
			// Nested screens share the parent's gate.
			group := e.Group(route.Path, middleware.Guard(a.Guard, route))
			group.GET("", screens.Render(route))
			for _, child := range route.Children {
				group.GET(child.Path, screens.Render(child))
			}
			continue
		}
		e.GET(route.Path, screens.Render(route), middleware.Guard(a.Guard, route))
	}
	e.RouteNotFound("/*", screens.NotFound(table.NotFound), middleware.Guard(a.Guard, table.NotFound))

	// --- JSON actions ---
	apiGroup := e.Group("/api")
	apiGroup.GET("/session", authHandler.Sessions)

	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/logout", authHandler.Logout)
	apiGroup.POST("/admin/login", authHandler.AdminLogin)
	apiGroup.POST("/admin/logout", authHandler.AdminLogout)

	apiGroup.POST("/:domain/password/forgot", authHandler.ForgotPassword)
	apiGroup.POST("/:domain/password/verify", authHandler.VerifyResetCode)
	apiGroup.POST("/:domain/password/reset", authHandler.ResetPassword)
	apiGroup.DELETE("/:domain/password/reset", authHandler.AbandonReset)
	apiGroup.POST("/password/change", authHandler.ChangePassword, requireMember)

	posts := apiGroup.Group("/posts/:id", requireMember)
	posts.GET("/interactions", interactions.Get)
	posts.POST("/like", interactions.Like)
	posts.POST("/save", interactions.Save)
	posts.POST("/comments/toggle", interactions.ToggleComments)
	posts.GET("/comments", interactions.Comments)
	posts.POST("/comments", interactions.AddComment)
	posts.DELETE("/comments/:commentID", interactions.DeleteComment)

	apiGroup.RouteNotFound("/*", func(c echo.Context) error { return echo.ErrNotFound })

	// --- Operations (no guard) ---
	healthHandler := handler.NewHealthHandler()
	readiness := handler.NewReadinessHandler(a.Store, a.Hydrated())

	e.GET("/health", healthHandler.Liveness)     // liveness: is the process alive?
	e.GET("/health/ready", readiness.Readiness)  // readiness: storage up and sessions hydrated?
	e.GET("/swagger/*", echoSwagger.WrapHandler) // API docs

	// prometheus scrape endpoint
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("guard", c.Response().Header().Get("X-Guard-Decision")).
				Msg("request")
			return nil
		},
	})
}

var _ handler.Sessions = (*app.App)(nil)
