package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "intake-backend/internal/auth"
	"intake-backend/internal/exclusions"
	"intake-backend/internal/recruiters"
	"intake-backend/internal/rowgen"
	"intake-backend/internal/services/health"
	"intake-backend/internal/sessions"
	"intake-backend/internal/shared/config"
	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/shared/server/middleware"
	"intake-backend/internal/shared/server/respond"
	"intake-backend/internal/templates"
	"intake-backend/internal/visits"
)

// RouterDeps carries the handlers the router wires up. Bootstrap builds them;
// the router stays free of repository construction.
type RouterDeps struct {
	Config            config.Config
	TemplatesHandler  *templates.Handler
	RowGenHandler     *rowgen.Handler
	SessionsHandler   *sessions.Handler
	RecruitersHandler *recruiters.Handler
	ExclusionsHandler *exclusions.Handler
	VisitsHandler     *visits.Handler
	Health            *health.Service
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		registrationRateLimit(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	deps.TemplatesHandler.RegisterRoutes(api)
	deps.RowGenHandler.RegisterRoutes(api)
	deps.SessionsHandler.RegisterRoutes(api)
	deps.RecruitersHandler.RegisterRoutes(api)
	deps.ExclusionsHandler.RegisterRoutes(api)
	deps.VisitsHandler.RegisterRoutes(api)

	return r
}

// registrationRateLimit throttles the kiosk-facing write endpoints per
// identity; everything else passes through.
func registrationRateLimit() gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return ""
			}
			path := c.Request.URL.Path
			if strings.HasSuffix(path, "/info-sessions/register") || strings.HasSuffix(path, "/visits/check-in") {
				return "REGISTER"
			}
			return ""
		},
		Rules: map[string]middleware.RateLimitRule{
			"REGISTER": {Rate: 1, Burst: 5},
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
