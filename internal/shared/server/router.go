package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume2portfolio/internal/deployments"
	"resume2portfolio/internal/portfolios"
	"resume2portfolio/internal/shared/config"
	"resume2portfolio/internal/shared/metrics"
	"resume2portfolio/internal/shared/server/middleware"
	"resume2portfolio/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts. Deployments may be nil.
type RouterDeps struct {
	Portfolios  *portfolios.Handler
	Deployments *deployments.Handler
	Limiter     *middleware.RateLimiter
}

var routeGroups = map[string]string{
	"/upload": middleware.GroupUpload,
	"/deploy": middleware.GroupDeploy,
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps RouterDeps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupUpload: middleware.PerMinute(cfg.RateLimitUploadPerMin),
				middleware.GroupDeploy: middleware.PerMinute(cfg.RateLimitDeployPerMin),
			},
			GroupFor: func(c *gin.Context) string { return routeGroups[c.FullPath()] },
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"message": "Resume2Portfolio Backend"})
	})
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	root := r.Group("")
	if deps.Portfolios != nil {
		deps.Portfolios.RegisterRoutes(root)
	}
	if deps.Deployments != nil {
		deps.Deployments.RegisterRoutes(root)
	}
	return r
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
