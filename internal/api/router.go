package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/skillsphere/web/internal/api/handler"
	"github.com/skillsphere/web/internal/api/middleware"
	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/guard"
	"github.com/skillsphere/web/internal/core/ports"
)

const metricsSubsystem = "http"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Logger   zerolog.Logger
	Identity ports.IdentityService
	Sessions ports.SessionProvider
	Flashes  ports.FlashStore
	Courses  ports.CourseService
	Health   []handler.Dependency

	Cookie middleware.SessionOptions
	// ResolveWait bounds how long a guarded request waits for its session to
	// settle before the loading page is served instead.
	ResolveWait time.Duration
	// Metrics enables the request metrics middleware and GET /metrics.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()

	// --- Dependencies ---
	pages := handler.NewPageHandler(d.Sessions, d.Flashes, d.Logger)
	authHandler := handler.NewAuthHandler(d.Identity, d.Sessions, pages, d.Logger)
	courseHandler := handler.NewCourseHandler(d.Courses, d.Flashes, pages, d.Logger)
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, pages)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware(metricsSubsystem))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health probes and docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Browser routes ---
	web := e.Group("", middleware.Session(d.Cookie))

	accessor := middleware.ProviderAccessor(d.Sessions, d.ResolveWait)
	protect := func(roles ...string) echo.MiddlewareFunc {
		return middleware.Guard(accessor, middleware.RedirectNavigator{}, pages.Loading, guard.DefaultPaths(), roles...)
	}

	web.GET("/", pages.Home)
	web.GET("/login", authHandler.LoginPage)
	web.POST("/login", authHandler.Login)
	web.GET("/register", authHandler.RegisterPage)
	web.POST("/register", authHandler.Register)
	web.POST("/logout", authHandler.Logout)
	web.GET("/api/session", authHandler.Session)

	web.GET("/my-enrolled", courseHandler.MyEnrolled, protect())

	instructor := protect(domain.RoleInstructor, domain.RoleAdmin)
	web.GET("/dashboard/my-courses", courseHandler.MyCourses, instructor)
	web.GET("/update-course/:id", courseHandler.EditCourse, instructor)
	web.POST("/update-course/:id", courseHandler.UpdateCourse, instructor)

	return e, nil
}
