package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskflow/taskflow-api/docs"
	"github.com/taskflow/taskflow-api/internal/api/handler"
	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Projects ports.ProjectService
	Tasks    ports.TaskService
	Tokens   ports.TokenValidator
	Policy   *middleware.AccessPolicy
	Health   []handler.Pinger
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	policy := d.Policy
	if policy == nil {
		policy = middleware.NewAccessPolicy()
	}

	// HTTP metrics get their own registry so several routers can coexist in
	// one process; /metrics serves it together with the default registry.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskflow",
		Registerer: httpMetrics,
	}))
	e.Use(middleware.Auth(policy, d.Tokens, d.Logger))

	// --- Public routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler(d.Health...)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Protected routes ---
	admin := middleware.RequireRole(domain.RoleAdmin)
	api := e.Group("/api")

	users := handler.NewUserHandler(d.Users)
	api.GET("/me", users.Me)
	api.POST("/users", users.Create, admin)
	api.GET("/users", users.List, admin)
	api.GET("/users/:id", users.Get)
	api.DELETE("/users/:id", users.Delete, admin)

	projects := handler.NewProjectHandler(d.Projects)
	api.POST("/projects", projects.Create)
	api.GET("/projects", projects.List)
	api.GET("/projects/:id", projects.Get)

	tasks := handler.NewTaskHandler(d.Tasks)
	api.POST("/tasks", tasks.Create)
	api.GET("/tasks", tasks.List)
	api.GET("/tasks/:id", tasks.Get)
	api.PATCH("/tasks/:id/status", tasks.UpdateStatus)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
