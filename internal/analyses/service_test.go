package analyses

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/shared/metrics"
)

const janeDoeReply = `{"biasScore": 72, "feedback": ["Contains 'assisted' framing"], "recommendations": ["Use stronger action verbs"]}`

func newTestService(client llm.Client) *Service {
	return &Service{
		LLM:            client,
		Catalog:        scenarios.MustDefault(),
		Provider:       "stub",
		Model:          "stub-model",
		Temperature:    0.2,
		Timeout:        time.Second,
		MaxResumeChars: 12000,
		MaxRetries:     1,
	}
}

func TestAnalyzeJaneDoe(t *testing.T) {
	stub := replyWith(janeDoeReply)
	svc := newTestService(stub)

	out, err := svc.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Fallback {
		t.Fatalf("expected real result, got fallback %+v", out)
	}
	want := Result{
		BiasScore:       72,
		Feedback:        []string{"Contains 'assisted' framing"},
		Recommendations: []string{"Use stronger action verbs"},
	}
	if !reflect.DeepEqual(out.Analysis, want) {
		t.Fatalf("got %+v, want %+v", out.Analysis, want)
	}
	if out.Scenario != scenarios.Amazon {
		t.Fatalf("expected amazon scenario, got %s", out.Scenario)
	}
	if stub.callCount() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", stub.callCount())
	}

	call := stub.lastCall()
	if !call.JSON {
		t.Fatalf("expected JSON mode")
	}
	if call.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", call.Temperature)
	}
	if !strings.Contains(call.User, "Analyze for gender bias") || !strings.Contains(call.User, "Jane Doe, Software Engineer...") {
		t.Fatalf("user message missing prompt or resume: %q", call.User)
	}
}

func TestAnalyzeMissingFieldsMakesNoCall(t *testing.T) {
	fields := []string{"resumeText", "scenarioId", "prompt", "userFingerprint", "filename"}
	for _, field := range fields {
		field := field
		t.Run(field, func(t *testing.T) {
			req := validRequest()
			switch field {
			case "resumeText":
				req.ResumeText = ""
			case "scenarioId":
				req.ScenarioID = "  "
			case "prompt":
				req.Prompt = ""
			case "userFingerprint":
				req.UserFingerprint = ""
			case "filename":
				req.Filename = ""
			}
			stub := replyWith(janeDoeReply)
			_, err := newTestService(stub).Analyze(context.Background(), req)

			var missing *MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldsError, got %v", err)
			}
			if !reflect.DeepEqual(missing.Fields, []string{field}) {
				t.Fatalf("expected missing %q, got %v", field, missing.Fields)
			}
			if stub.callCount() != 0 {
				t.Fatalf("expected no upstream call, got %d", stub.callCount())
			}
		})
	}
}

func TestAnalyzeNotConfiguredRegardlessOfInput(t *testing.T) {
	svc := newTestService(nil)
	before := metrics.AnalysisCount(metrics.OutcomeRejectedConfig)

	for _, req := range []Request{validRequest(), {}} {
		if _, err := svc.Analyze(context.Background(), req); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	}
	if got := metrics.AnalysisCount(metrics.OutcomeRejectedConfig) - before; got != 2 {
		t.Fatalf("expected 2 rejected_config outcomes, got %d", got)
	}
}

func TestAnalyzeInvalidPayloadFallsBack(t *testing.T) {
	payloads := map[string]string{
		"not json":           "Sure! Here is my analysis of the resume.",
		"missing feedback":   `{"biasScore": 40, "recommendations": ["x"]}`,
		"feedback string":    `{"biasScore": 40, "feedback": "bad", "recommendations": ["x"]}`,
		"no recommendations": `{"biasScore": 40, "feedback": ["x"]}`,
	}
	for name, payload := range payloads {
		payload := payload
		t.Run(name, func(t *testing.T) {
			stub := replyWith(payload)
			svc := newTestService(stub)

			out, err := svc.Analyze(context.Background(), validRequest())
			if err != nil {
				t.Fatalf("expected fallback, got error %v", err)
			}
			if !out.Fallback || out.Code != ErrorCodeUnavailable {
				t.Fatalf("expected analysis_unavailable fallback, got %+v", out)
			}
			if !reflect.DeepEqual(out.Analysis, svc.Fallback(scenarios.Amazon)) {
				t.Fatalf("expected amazon fallback, got %+v", out.Analysis)
			}
			if !strings.Contains(out.Analysis.Feedback[0], "could not be properly analyzed") {
				t.Fatalf("expected reduced-confidence wording, got %q", out.Analysis.Feedback[0])
			}
			if stub.callCount() != 1 {
				t.Fatalf("schema failures must not be retried, got %d calls", stub.callCount())
			}
		})
	}
}

func TestAnalyzeRecommendationsOptionalForKeyword(t *testing.T) {
	stub := replyWith(`{"biasScore": 35, "feedback": ["Missing keywords"]}`)
	req := validRequest()
	req.ScenarioID = "keyword"

	out, err := newTestService(stub).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Fallback {
		t.Fatalf("expected real result for keyword scenario without recommendations")
	}
	if out.Analysis.Recommendations != nil {
		t.Fatalf("expected no recommendations, got %v", out.Analysis.Recommendations)
	}
}

func TestAnalyzeUpstreamFailureSurfacesError(t *testing.T) {
	prev := llmRetryBaseDelay
	llmRetryBaseDelay = time.Millisecond
	t.Cleanup(func() { llmRetryBaseDelay = prev })

	upstream := &llm.UpstreamError{Provider: "stub", StatusCode: http.StatusBadGateway, Message: "bad gateway"}
	stub := &stubLLM{replies: []stubReply{{err: upstream}}}

	out, err := newTestService(stub).Analyze(context.Background(), validRequest())
	var got *llm.UpstreamError
	if !errors.As(err, &got) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if out.Analysis.Feedback != nil || out.Analysis.BiasScore != 0 {
		t.Fatalf("expected no analysis on upstream failure, got %+v", out.Analysis)
	}
	if stub.callCount() != 2 {
		t.Fatalf("expected one retry for a 5xx, got %d calls", stub.callCount())
	}
}

func TestAnalyzeRetriesOnceThenSucceeds(t *testing.T) {
	prev := llmRetryBaseDelay
	llmRetryBaseDelay = time.Millisecond
	t.Cleanup(func() { llmRetryBaseDelay = prev })

	stub := &stubLLM{replies: []stubReply{
		{err: &llm.UpstreamError{Provider: "stub", StatusCode: http.StatusTooManyRequests}},
		{content: janeDoeReply},
	}}
	out, err := newTestService(stub).Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Fallback || out.Analysis.BiasScore != 72 {
		t.Fatalf("expected recovered result, got %+v", out)
	}
}

func TestAnalyzeDoesNotRetryClientErrors(t *testing.T) {
	stub := &stubLLM{replies: []stubReply{
		{err: &llm.UpstreamError{Provider: "stub", StatusCode: http.StatusUnauthorized}},
	}}
	if _, err := newTestService(stub).Analyze(context.Background(), validRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if stub.callCount() != 1 {
		t.Fatalf("expected no retry for 401, got %d calls", stub.callCount())
	}
}

func TestAnalyzeTimeoutFallsBack(t *testing.T) {
	stub := &stubLLM{block: true}
	svc := newTestService(stub)
	svc.Timeout = 20 * time.Millisecond

	out, err := svc.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("expected timeout fallback, got error %v", err)
	}
	if !out.Fallback || out.Code != ErrorCodeUpstreamTimeout {
		t.Fatalf("expected upstream_timeout fallback, got %+v", out)
	}
	if stub.callCount() != 1 {
		t.Fatalf("timeouts must not be retried, got %d calls", stub.callCount())
	}
}

func TestAnalyzeEmptyCompletionFallsBack(t *testing.T) {
	stub := &stubLLM{replies: []stubReply{{err: llm.ErrEmptyCompletion}}}
	out, err := newTestService(stub).Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
	if !out.Fallback || out.Code != ErrorCodeUnavailable {
		t.Fatalf("expected analysis_unavailable fallback, got %+v", out)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	svc := newTestService(replyWith(janeDoeReply))

	first, err := svc.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical outcomes, got %+v and %+v", first, second)
	}
}

func TestAnalyzeScenarioSelectsSystemInstruction(t *testing.T) {
	systemFor := func(scenario string) string {
		stub := replyWith(janeDoeReply)
		req := validRequest()
		req.ScenarioID = scenario
		if _, err := newTestService(stub).Analyze(context.Background(), req); err != nil {
			t.Fatalf("Analyze %s: %v", scenario, err)
		}
		return stub.lastCall().System
	}

	amazon := systemFor("amazon")
	keyword := systemFor("keyword")
	unknown := systemFor("linkedin")
	if amazon == keyword {
		t.Fatalf("expected amazon and keyword instructions to differ")
	}
	if unknown == amazon || unknown == keyword {
		t.Fatalf("expected unknown scenario to use the generic instruction")
	}
	if unknown != scenarios.MustDefault().Lookup(scenarios.Unknown).SystemInstruction() {
		t.Fatalf("expected generic instruction for unknown scenario")
	}
}

func TestAnalyzeTruncatesLongResume(t *testing.T) {
	stub := replyWith(janeDoeReply)
	svc := newTestService(stub)
	svc.MaxResumeChars = 50

	req := validRequest()
	req.ResumeText = strings.Repeat("x", 500)
	if _, err := svc.Analyze(context.Background(), req); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	user := stub.lastCall().User
	if !strings.HasSuffix(user, strings.Repeat("x", 50)+truncationMarker) {
		t.Fatalf("expected truncated resume with marker, got %q", user)
	}
}

func TestFallbackIsACopy(t *testing.T) {
	svc := newTestService(nil)
	first := svc.Fallback(scenarios.Amazon)
	first.Feedback[0] = "mutated"
	if svc.Fallback(scenarios.Amazon).Feedback[0] == "mutated" {
		t.Fatalf("fallback must not share backing arrays with the catalog")
	}
}
