package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/shared/server/middleware"
	"biasbuster-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the history service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/history", h.record)
	rg.GET("/history", h.list)
}

func (h *Handler) record(c *gin.Context) {
	var in RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Request body must be a JSON object", nil)
		return
	}
	entry, err := h.Svc.Record(c.Request.Context(), middleware.FingerprintFromContext(c), in)
	if err != nil {
		h.writeError(c, err, "failed to store history")
		return
	}
	respond.JSON(c, http.StatusCreated, entry)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{ScenarioID: c.Query("scenario")}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}

	entries, err := h.Svc.List(c.Request.Context(), middleware.FingerprintFromContext(c), filter)
	if err != nil {
		h.writeError(c, err, "failed to list history")
		return
	}
	respond.OK(c, gin.H{"items": entries})
}

func (h *Handler) writeError(c *gin.Context, err error, message string) {
	var inputErr *InputError
	switch {
	case errors.Is(err, ErrFingerprintRequired):
		respond.Error(c, http.StatusBadRequest, "fingerprint_required", "X-Client-Fingerprint header is required", nil)
	case errors.As(err, &inputErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid history entry", []map[string]string{
			{"field": inputErr.Field, "issue": inputErr.Reason},
		})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
