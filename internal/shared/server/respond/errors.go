package respond

import (
	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/shared/telemetry"
	"biasbuster-backend/internal/shared/util"
)

// ErrorResponse is the error envelope shared by every endpoint. Error stays a
// plain string so existing browser clients can render it directly.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if fp := c.GetString("fingerprint"); fp != "" {
		fields["fingerprint"] = util.FingerprintTag(fp)
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
		Details: details,
	})
}
