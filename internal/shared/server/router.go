package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/analyses"
	"biasbuster-backend/internal/extract"
	"biasbuster-backend/internal/history"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/services/health"
	"biasbuster-backend/internal/shared/config"
	"biasbuster-backend/internal/shared/metrics"
	"biasbuster-backend/internal/shared/server/middleware"
	"biasbuster-backend/internal/shared/server/respond"
)

const (
	rateLimitGroupAnalyze = "ANALYZE"
	rateLimitGroupDefault = "DEFAULT"
)

// RouterDeps are the handlers mounted by NewRouter.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	AnalysisHandler *analyses.Handler
	ScenarioHandler *scenarios.Handler
	ExtractHandler  *extract.Handler
	HistoryHandler  *history.Handler
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Fingerprint(),
		middleware.BodyFingerprint(isAnalyzeRequest),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateLimitGroupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateLimitGroupAnalyze: middleware.PerMinute(deps.Config.RateLimitAnalyzePerMin),
				rateLimitGroupDefault: middleware.PerMinute(deps.Config.RateLimitDefaultPerMin),
			},
		}),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
		// Path the browser client calls for the serverless function.
		deps.AnalysisHandler.RegisterRoutes(r.Group("/functions/v1"))
	}
	if deps.ScenarioHandler != nil {
		deps.ScenarioHandler.RegisterRoutes(api)
	}
	if deps.ExtractHandler != nil {
		deps.ExtractHandler.RegisterRoutes(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case path == "/healthz" || path == "/metrics":
		return "EXEMPT"
	case strings.HasSuffix(path, "/analyze-resume"), strings.HasSuffix(path, "/extract"):
		return rateLimitGroupAnalyze
	default:
		return rateLimitGroupDefault
	}
}

// isAnalyzeRequest matches the analysis endpoint, whose browser client sends
// its fingerprint only in the body.
func isAnalyzeRequest(c *gin.Context) bool {
	return strings.HasSuffix(c.Request.URL.Path, "/analyze-resume")
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
