package analyses

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/shared/metrics"
	"biasbuster-backend/internal/shared/telemetry"
)

const (
	defaultTemperature = 0.2
	defaultTimeout     = 30 * time.Second
)

// Service runs one resume analysis per call. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	// LLM is nil when the provider credential is missing.
	LLM            llm.Client
	Catalog        *scenarios.Catalog
	Provider       string
	Model          string
	Temperature    float64
	Timeout        time.Duration
	MaxResumeChars int
	MaxRetries     int
}

// Outcome is the displayable result of an analysis. When Fallback is set,
// Analysis holds the scenario's static fallback and Code/Message say why.
type Outcome struct {
	Scenario scenarios.ID
	Analysis Result
	Fallback bool
	Code     string
	Message  string
}

// Configured reports whether a completion client is available.
func (s *Service) Configured() bool {
	return s != nil && s.LLM != nil
}

// Analyze validates req, asks the completion service for a bias analysis and
// validates its answer. Hard failures come back as errors:
// ErrNotConfigured, *MissingFieldsError, or the wrapped client error
// (normally an *llm.UpstreamError).
// A timeout or an unusable payload yields a fallback Outcome instead.
func (s *Service) Analyze(ctx context.Context, req Request) (Outcome, error) {
	requestID := requestIDFromContext(ctx)
	if !s.Configured() {
		metrics.IncAnalysis(metrics.OutcomeRejectedConfig)
		return Outcome{}, ErrNotConfigured
	}
	if missing := req.missingFields(); len(missing) > 0 {
		metrics.IncAnalysis(metrics.OutcomeRejectedInput)
		return Outcome{}, &MissingFieldsError{Fields: missing}
	}

	scenario := scenarios.Parse(req.ScenarioID)
	spec := s.catalog().Lookup(scenario)
	resumeText, truncated := truncateResume(req.ResumeText, s.MaxResumeChars)

	chat := llm.ChatRequest{
		System:      spec.SystemInstruction(),
		User:        buildUserMessage(req.Prompt, resumeText),
		Temperature: s.temperature(),
		JSON:        true,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	startedAt := time.Now()
	content, err := newRetryingLLM(s.LLM, s.MaxRetries, requestID).Complete(callCtx, chat)
	elapsed := time.Since(startedAt)
	metrics.ObserveUpstreamDurationMs(float64(elapsed.Milliseconds()))

	logFields := map[string]any{
		"request_id":  requestID,
		"scenario_id": scenario.String(),
		"provider":    s.Provider,
		"model":       s.Model,
		"truncated":   truncated,
		"duration_ms": elapsed.Milliseconds(),
	}

	if err != nil {
		switch {
		case isTimeout(callCtx, err):
			return s.fallback(spec, metrics.OutcomeTimeout, ErrorCodeUpstreamTimeout,
				"The analysis service took too long to respond", err, logFields), nil
		case errors.Is(err, llm.ErrEmptyCompletion):
			return s.fallback(spec, metrics.OutcomeFallback, ErrorCodeUnavailable,
				"The analysis could not be completed", err, logFields), nil
		default:
			outcome, event := metrics.OutcomeUpstreamError, "analysis.upstream_error"
			var upstream *llm.UpstreamError
			if !errors.As(err, &upstream) {
				outcome, event = metrics.OutcomeInternalFailure, "analysis.failed"
			}
			metrics.IncAnalysis(outcome)
			logFields["outcome"] = outcome
			logFields["error"] = sanitizeError(err)
			telemetry.Error(event, logFields)
			return Outcome{Scenario: scenario}, fmt.Errorf("completion request: %w", err)
		}
	}

	result, err := DecodeResult(content, spec.RequiresRecommendations)
	if err != nil {
		return s.fallback(spec, metrics.OutcomeFallback, ErrorCodeUnavailable,
			"The analysis could not be completed", err, logFields), nil
	}

	metrics.IncAnalysis(metrics.OutcomeCompleted)
	logFields["outcome"] = metrics.OutcomeCompleted
	logFields["bias_score"] = result.BiasScore
	telemetry.Info("analysis.complete", logFields)
	return Outcome{Scenario: scenario, Analysis: result}, nil
}

// Fallback returns the static fallback analysis for a scenario.
func (s *Service) Fallback(id scenarios.ID) Result {
	return fallbackResult(s.catalog().Lookup(id))
}

func (s *Service) fallback(spec scenarios.Spec, outcome, code, message string, cause error, fields map[string]any) Outcome {
	metrics.IncAnalysis(outcome)
	fields["outcome"] = outcome
	fields["error"] = sanitizeError(cause)
	telemetry.Warn("analysis.fallback", fields)
	return Outcome{
		Scenario: spec.ID,
		Analysis: fallbackResult(spec),
		Fallback: true,
		Code:     code,
		Message:  message,
	}
}

func fallbackResult(spec scenarios.Spec) Result {
	return Result{
		BiasScore:       spec.Fallback.Score,
		Feedback:        append([]string(nil), spec.Fallback.Feedback...),
		Recommendations: append([]string(nil), spec.Fallback.Recommendations...),
	}
}

func (s *Service) catalog() *scenarios.Catalog {
	if s.Catalog != nil {
		return s.Catalog
	}
	return scenarios.MustDefault()
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultTimeout
}

func (s *Service) temperature() float64 {
	if s.Temperature < 0 {
		return defaultTemperature
	}
	return s.Temperature
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
