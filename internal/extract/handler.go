package extract

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/shared/server/respond"
	"biasbuster-backend/internal/shared/util"
)

const defaultMaxUploadBytes = 5 << 20

// Handler extracts text from uploaded resumes. Nothing is stored.
type Handler struct {
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the extract route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	// Multipart overhead is small; the per-file check below is the real limit.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+64<<10)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
		return
	}

	name, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	text, err := ExtractTextFromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), name)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "Upload a PDF, DOCX or plain text resume", nil)
		return
	case errors.Is(err, ErrNoText):
		respond.Error(c, http.StatusUnprocessableEntity, "no_text", "No text could be extracted from the file", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusUnprocessableEntity, "extract_failed", "The file could not be read", nil)
		return
	}

	respond.OK(c, gin.H{
		"filename": name,
		"text":     text,
	})
}
