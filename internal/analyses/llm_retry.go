package analyses

import (
	"context"
	"errors"
	"time"

	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/shared/metrics"
	"biasbuster-backend/internal/shared/telemetry"
)

var llmRetryBaseDelay = 300 * time.Millisecond

type retryingLLM struct {
	base       llm.Client
	maxRetries int
	requestID  string
}

func newRetryingLLM(base llm.Client, maxRetries int, requestID string) llm.Client {
	if base == nil {
		return nil
	}
	if maxRetries <= 0 {
		return base
	}
	return retryingLLM{
		base:       base,
		maxRetries: maxRetries,
		requestID:  requestID,
	}
}

func (r retryingLLM) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	content, err := r.base.Complete(ctx, req)
	for attempt := 1; attempt <= r.maxRetries && err != nil && shouldRetryLLM(err); attempt++ {
		metrics.IncUpstreamRetry()
		telemetry.Warn("llm.retry", map[string]any{
			"request_id": r.requestID,
			"attempt":    attempt,
			"error":      sanitizeError(err),
		})
		select {
		case <-time.After(llmRetryBaseDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		content, err = r.base.Complete(ctx, req)
	}
	return content, err
}

// shouldRetryLLM retries transport failures, 429 and 5xx. Anything the
// provider answered (including a payload that fails validation) is final.
func shouldRetryLLM(err error) bool {
	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Transient()
	}
	return false
}
