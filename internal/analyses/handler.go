package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/shared/metrics"
	"biasbuster-backend/internal/shared/server/middleware"
	"biasbuster-backend/internal/shared/server/respond"
	"biasbuster-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-resume", h.analyzeResume)
}

func (h *Handler) analyzeResume(c *gin.Context) {
	scenario := scenarios.Unknown
	defer func() {
		if r := recover(); r != nil {
			metrics.IncAnalysis(metrics.OutcomeInternalFailure)
			c.Set(middleware.OutcomeKey, metrics.OutcomeInternalFailure)
			telemetry.Error("analysis.panic", map[string]any{
				"request_id":  middleware.RequestIDFromContext(c),
				"scenario_id": scenario.String(),
				"error":       fmt.Sprint(r),
			})
			writeFallback(c, h.Svc.Fallback(scenario), ErrorCodeInternal, "The analysis failed unexpectedly")
		}
	}()

	if !h.Svc.Configured() {
		metrics.IncAnalysis(metrics.OutcomeRejectedConfig)
		c.Set(middleware.OutcomeKey, metrics.OutcomeRejectedConfig)
		respond.Error(c, http.StatusInternalServerError, ErrorCodeConfiguration, "Analysis service is not configured", nil)
		return
	}

	var req Request
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
		metrics.IncAnalysis(metrics.OutcomeRejectedInput)
		c.Set(middleware.OutcomeKey, metrics.OutcomeRejectedInput)
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Request body must be a JSON object", nil)
		return
	}
	scenario = scenarios.Parse(req.ScenarioID)
	c.Set(middleware.ScenarioIDKey, scenario.String())
	if middleware.FingerprintFromContext(c) == "" {
		middleware.SetFingerprint(c, req.UserFingerprint)
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	out, err := h.Svc.Analyze(ctx, req)
	if err != nil {
		h.writeError(c, scenario, err)
		return
	}

	if out.Fallback {
		c.Set(middleware.OutcomeKey, out.Code)
		writeFallback(c, out.Analysis, out.Code, out.Message)
		return
	}
	c.Set(middleware.OutcomeKey, metrics.OutcomeCompleted)
	respond.OK(c, Response{Success: true, Analysis: out.Analysis})
}

func (h *Handler) writeError(c *gin.Context, scenario scenarios.ID, err error) {
	var missing *MissingFieldsError
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &missing):
		c.Set(middleware.OutcomeKey, metrics.OutcomeRejectedInput)
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Missing required fields", gin.H{
			"missing": missing.Fields,
		})
	case errors.Is(err, ErrNotConfigured):
		c.Set(middleware.OutcomeKey, metrics.OutcomeRejectedConfig)
		respond.Error(c, http.StatusInternalServerError, ErrorCodeConfiguration, "Analysis service is not configured", nil)
	case errors.As(err, &upstream):
		c.Set(middleware.OutcomeKey, metrics.OutcomeUpstreamError)
		// Provider messages can name keys or org ids; they stay in the log.
		var details any
		if upstream.StatusCode != 0 {
			details = gin.H{"status": upstream.StatusCode}
		}
		respond.Error(c, http.StatusBadGateway, ErrorCodeUpstream, "Failed to get analysis from the completion service", details)
	default:
		// Analyze has already counted and logged the failure.
		c.Set(middleware.OutcomeKey, metrics.OutcomeInternalFailure)
		writeFallback(c, h.Svc.Fallback(scenario), ErrorCodeInternal, "The analysis failed unexpectedly")
	}
}

func writeFallback(c *gin.Context, analysis Result, code, message string) {
	respond.OK(c, Response{
		Success:  false,
		Error:    message,
		Code:     code,
		Analysis: analysis,
	})
}
