package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func TestFingerprintFromHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Fingerprint())
	var got string
	router.GET("/fp", func(c *gin.Context) {
		got = FingerprintFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/fp", nil)
	req.Header.Set(FingerprintHeader, "  abc-123 ")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "abc-123" {
		t.Fatalf("expected trimmed fingerprint, got %q", got)
	}
}

func TestFingerprintOptionalAndTruncated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Fingerprint())
	var got string
	router.GET("/fp", func(c *gin.Context) {
		got = FingerprintFromContext(c)
		c.Status(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/fp", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected request without fingerprint to pass, got %d", resp.Code)
	}
	if got != "" {
		t.Fatalf("expected empty fingerprint, got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/fp", nil)
	req.Header.Set(FingerprintHeader, strings.Repeat("x", 500))
	router.ServeHTTP(httptest.NewRecorder(), req)
	if len(got) != maxFingerprintLen {
		t.Fatalf("expected fingerprint truncated to %d, got %d", maxFingerprintLen, len(got))
	}
}

func TestBodyFingerprintReadsBodyAndKeepsItForHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Fingerprint(), BodyFingerprint(nil))
	var got, resume string
	router.POST("/analyze-resume", func(c *gin.Context) {
		got = FingerprintFromContext(c)
		var body struct {
			ResumeText string `json:"resumeText"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			t.Errorf("handler bind: %v", err)
		}
		resume = body.ResumeText
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume", strings.NewReader(`{"resumeText":"Jane","userFingerprint":"body-fp"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "body-fp" {
		t.Fatalf("expected fingerprint from body, got %q", got)
	}
	if resume != "Jane" {
		t.Fatalf("expected handler to read the cached body, got %q", resume)
	}
}

func TestBodyFingerprintHeaderWins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Fingerprint(), BodyFingerprint(func(*gin.Context) bool { return true }))
	var got string
	router.POST("/analyze-resume", func(c *gin.Context) {
		got = FingerprintFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume", strings.NewReader(`{"userFingerprint":"body-fp"}`))
	req.Header.Set(FingerprintHeader, "header-fp")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "header-fp" {
		t.Fatalf("expected header fingerprint, got %q", got)
	}
}
