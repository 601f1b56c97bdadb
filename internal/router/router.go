package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/telemed-api/internal/config"
	authhandler "github.com/jwalitptl/telemed-api/internal/handler/auth"
	consultationhandler "github.com/jwalitptl/telemed-api/internal/handler/consultation"
	healthhandler "github.com/jwalitptl/telemed-api/internal/handler/health"
	prescriptionhandler "github.com/jwalitptl/telemed-api/internal/handler/prescription"
	promhandler "github.com/jwalitptl/telemed-api/internal/handler/prometheus"
	userhandler "github.com/jwalitptl/telemed-api/internal/handler/user"
	"github.com/jwalitptl/telemed-api/internal/middleware"
	"github.com/jwalitptl/telemed-api/internal/model"
)

type Handlers struct {
	Auth         *authhandler.Handler
	User         *userhandler.Handler
	Consultation *consultationhandler.Handler
	Prescription *prescriptionhandler.Handler
	Health       *healthhandler.Handler
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	h      Handlers
	prom   *promhandler.Handler
	cfg    *config.Config
}

func New(cfg *config.Config, auth *middleware.AuthMiddleware, h Handlers) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()
	engine := gin.New()

	r := &Router{
		engine: engine,
		auth:   auth,
		h:      h,
		prom:   promhandler.New(),
		cfg:    cfg,
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.prom.Middleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(corsConfig),
		middleware.Timeout(middleware.DefaultTimeoutConfig()),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

// Setup mounts every route group. Ownership checks live in the services;
// the router only applies session and role gates.
func (r *Router) Setup() {
	r.h.Health.RegisterRoutes(r.engine.Group(""))

	if r.cfg.Monitoring.PrometheusEnabled {
		path := r.cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, r.prom.Handler())
	}

	api := r.engine.Group("/api/v1")

	r.h.Auth.RegisterRoutes(api)

	authed := api.Group("", r.auth.Authenticate())
	r.h.Auth.RegisterProtectedRoutes(authed)
	r.h.User.RegisterRoutes(authed, r.auth.RequireRole(model.RoleAdmin))
	r.h.Consultation.RegisterRoutes(authed)
	r.h.Prescription.RegisterRoutes(authed, r.auth.RequireRole(model.RolePractitioner))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
