package analyses

import (
	"context"
	"sync"

	"biasbuster-backend/internal/llm"
)

type stubReply struct {
	content string
	err     error
}

// stubLLM returns scripted replies in order and records every request.
type stubLLM struct {
	mu      sync.Mutex
	replies []stubReply
	calls   []llm.ChatRequest
	block   bool
}

func (s *stubLLM) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	idx := len(s.calls) - 1
	block := s.block
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", &llm.UpstreamError{Provider: "stub", Err: ctx.Err()}
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	return s.replies[idx].content, s.replies[idx].err
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubLLM) lastCall() llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return llm.ChatRequest{}
	}
	return s.calls[len(s.calls)-1]
}

type panicLLM struct{}

func (panicLLM) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	panic("provider exploded")
}

func replyWith(content string) *stubLLM {
	return &stubLLM{replies: []stubReply{{content: content}}}
}

func validRequest() Request {
	return Request{
		ResumeText:      "Jane Doe, Software Engineer...",
		ScenarioID:      "amazon",
		Prompt:          "Analyze for gender bias",
		UserFingerprint: "abc-123",
		Filename:        "resume.txt",
	}
}
