package extract

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupExtractRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(maxBytes).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestExtractHandlerPlainText(t *testing.T) {
	router := setupExtractRouter(1 << 20)
	body, contentType := multipartBody(t, "resume.txt", "text/plain", []byte("Jane Doe\nSoftware Engineer"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Filename string `json:"filename"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Filename != "resume.txt" || out.Text != "Jane Doe\nSoftware Engineer" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestExtractHandlerUnsupportedType(t *testing.T) {
	router := setupExtractRouter(1 << 20)
	body, contentType := multipartBody(t, "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
}

func TestExtractHandlerTooLarge(t *testing.T) {
	router := setupExtractRouter(16)
	body, contentType := multipartBody(t, "resume.txt", "text/plain", []byte(strings.Repeat("a", 64)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}

func TestExtractHandlerMissingFile(t *testing.T) {
	router := setupExtractRouter(1 << 20)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
