package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/shared/telemetry"
	"biasbuster-backend/internal/shared/util"
)

// Context keys handlers may set for the request log line.
const (
	ScenarioIDKey = "scenarioId"
	OutcomeKey    = "outcome"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"fingerprint": util.FingerprintTag(FingerprintFromContext(c)),
			"scenario_id": c.GetString(ScenarioIDKey),
			"outcome":     c.GetString(OutcomeKey),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
