package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/handler/health"
	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler additionally exposes routes that are served without a token.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

// Handlers groups every resource handler mounted under /api/v1.
type Handlers struct {
	Auth            PublicHandler
	User            Handler
	Patient         Handler
	Doctor          Handler
	Appointment     Handler
	Examination     Handler
	Hospitalization Handler
	Medication      Handler
	Invoice         Handler
	Notification    Handler
	Dashboard       Handler
	Health          *health.Handler
	Metrics         *prometheus.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	audit    *middleware.AuditMiddleware
	handlers Handlers
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	MaxBodyBytes     int64
	Release          bool
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	audit *middleware.AuditMiddleware,
	handlers Handlers,
	config RouterConfig,
) *Router {
	if config.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		auth:     auth,
		audit:    audit,
		handlers: handlers,
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	// Request id first so recovery and logging can report it
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(sizeLimit),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}

	api := r.engine.Group("/api/v1")

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	r.handlers.Auth.RegisterPublicRoutes(api.Group("/auth"))

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Auth.RegisterRoutes(rg.Group("/auth"))

	r.mount(rg, "/users", "user", r.handlers.User)
	r.mount(rg, "/patients", "patient", r.handlers.Patient)
	r.mount(rg, "/doctors", "doctor", r.handlers.Doctor)
	r.mount(rg, "/appointments", "appointment", r.handlers.Appointment)
	r.mount(rg, "/examinations", "examination", r.handlers.Examination)
	r.mount(rg, "/hospitalizations", "hospitalization", r.handlers.Hospitalization)
	r.mount(rg, "/medications", "medication", r.handlers.Medication)
	r.mount(rg, "/invoices", "invoice", r.handlers.Invoice)
	r.mount(rg, "/notifications", "notification", r.handlers.Notification)
	r.mount(rg, "/dashboard", "dashboard", r.handlers.Dashboard)
}

func (r *Router) mount(rg *gin.RouterGroup, path, entityType string, h Handler) {
	if h == nil {
		return
	}
	group := rg.Group(path)
	if r.audit != nil {
		group.Use(r.audit.AuditLog(entityType))
	}
	h.RegisterRoutes(group)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
