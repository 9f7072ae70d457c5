package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	fingerprintKey    = "fingerprint"
	FingerprintHeader = "X-Client-Fingerprint"
	maxFingerprintLen = 128
)

// Fingerprint stores the anonymous client fingerprint, if any, in context.
// The fingerprint groups history and rate limits per browser; it is not an
// identity and nothing is rejected for lacking one.
func Fingerprint() gin.HandlerFunc {
	return func(c *gin.Context) {
		fp := strings.TrimSpace(c.GetHeader(FingerprintHeader))
		if len(fp) > maxFingerprintLen {
			fp = fp[:maxFingerprintLen]
		}
		if fp != "" {
			c.Set(fingerprintKey, fp)
		}
		c.Next()
	}
}

// FingerprintFromContext returns the fingerprint stored by Fingerprint.
func FingerprintFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(fingerprintKey)
	if fp, ok := val.(string); ok {
		return fp
	}
	return ""
}

// SetFingerprint records a fingerprint learned from a request body so that
// logging and rate limiting see it.
func SetFingerprint(c *gin.Context, fp string) {
	fp = strings.TrimSpace(fp)
	if c == nil || fp == "" {
		return
	}
	if len(fp) > maxFingerprintLen {
		fp = fp[:maxFingerprintLen]
	}
	c.Set(fingerprintKey, fp)
}

// BodyFingerprint fills the fingerprint from a JSON body's userFingerprint
// when no header was sent, for requests match accepts. It must run before
// RateLimit. The body is cached, so handlers bind it with ShouldBindBodyWith.
func BodyFingerprint(match func(*gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && FingerprintFromContext(c) == "" && (match == nil || match(c)) {
			var body struct {
				UserFingerprint string `json:"userFingerprint"`
			}
			if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
				SetFingerprint(c, body.UserFingerprint)
			}
		}
		c.Next()
	}
}
