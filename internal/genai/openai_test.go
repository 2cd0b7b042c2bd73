package genai

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/major"
)

// scriptedChat replays canned chat completions and records every request.
type scriptedChat struct {
	mu        sync.Mutex
	responses []*openai.ChatCompletion
	err       error
	params    []openai.ChatCompletionNewParams
}

func (s *scriptedChat) complete(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, body)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// chatCompletion decodes a completion the way the SDK would from the wire.
func chatCompletion(t *testing.T, message map[string]any) *openai.ChatCompletion {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "llama-3.3-70b",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       message,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
	})
	if err != nil {
		t.Fatal(err)
	}
	var resp openai.ChatCompletion
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	return &resp
}

func toolCallMessage(id, name, arguments string) map[string]any {
	return map[string]any{
		"role":    "assistant",
		"content": nil,
		"tool_calls": []any{map[string]any{
			"id":       id,
			"type":     "function",
			"function": map[string]any{"name": name, "arguments": arguments},
		}},
	}
}

func answerMessage(content string) map[string]any {
	return map[string]any{"role": "assistant", "content": content}
}

func TestOpenAIRecommender_ToolLoop(t *testing.T) {
	t.Parallel()
	script := &scriptedChat{responses: []*openai.ChatCompletion{
		chatCompletion(t, toolCallMessage("call_1", ToolName, `{"regions":["北京"],"universityTier":"985"}`)),
		chatCompletion(t, answerMessage(validAnswer)),
	}}
	r := newOpenAIRecommenderWith(script.complete, Config{Provider: ProviderGroq, Temperature: 0.2}, nil)

	var got major.Filter
	tool := func(_ context.Context, f major.Filter) ([]major.Major, error) {
		got = f
		return []major.Major{}, nil
	}

	out, err := r.Recommend(context.Background(), testRequest, tool)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if out.Rounds != 2 || out.ToolCalls != 1 {
		t.Errorf("Rounds = %d, ToolCalls = %d", out.Rounds, out.ToolCalls)
	}
	if len(got.Regions) != 1 || got.Regions[0] != "北京" || got.UniversityTier != "985" {
		t.Errorf("tool filter = %+v", got)
	}

	// system, user, assistant tool call, tool result
	if n := len(script.params[1].Messages); n != 4 {
		t.Fatalf("second request has %d messages, want 4", n)
	}
	toolMsg := script.params[1].Messages[3].OfTool
	if toolMsg == nil || toolMsg.ToolCallID != "call_1" {
		t.Errorf("tool message = %+v", toolMsg)
	}
	if choice := script.params[0].ToolChoice.OfAuto.Value; choice != "auto" {
		t.Errorf("tool choice = %q, want auto", choice)
	}
	if r.Model() != DefaultModels[ProviderGroq] {
		t.Errorf("Model() = %q", r.Model())
	}
}

func TestOpenAIRecommender_BadArgumentsGoBackToModel(t *testing.T) {
	t.Parallel()
	script := &scriptedChat{responses: []*openai.ChatCompletion{
		chatCompletion(t, toolCallMessage("call_1", ToolName, `{not json`)),
		chatCompletion(t, answerMessage(validAnswer)),
	}}
	r := newOpenAIRecommenderWith(script.complete, Config{Provider: ProviderCerebras}, nil)
	called := false
	tool := func(context.Context, major.Filter) ([]major.Major, error) {
		called = true
		return nil, nil
	}

	if _, err := r.Recommend(context.Background(), testRequest, tool); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if called {
		t.Error("tool must not run with unparseable arguments")
	}
}

func TestOpenAIRecommender_MissingReasoning(t *testing.T) {
	t.Parallel()
	script := &scriptedChat{responses: []*openai.ChatCompletion{
		chatCompletion(t, answerMessage(`{"recommendedMajors": [{"majorName": "法学", "majorCode": "030101", "university": "浙江大学"}]}`)),
	}}
	r := newOpenAIRecommenderWith(script.complete, Config{Provider: ProviderGroq}, nil)

	_, err := r.Recommend(context.Background(), testRequest, nil)
	var sv *apperrors.SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("Recommend() error = %v, want *SchemaViolationError", err)
	}
	if sv.Reason != "missing reasoning" {
		t.Errorf("Reason = %q", sv.Reason)
	}
}

func TestOpenAIRecommender_UpstreamError(t *testing.T) {
	t.Parallel()
	script := &scriptedChat{err: context.DeadlineExceeded}
	r := newOpenAIRecommenderWith(script.complete, Config{Provider: ProviderOpenAI, Model: "gpt-4o-mini"}, nil)

	_, err := r.Recommend(context.Background(), testRequest, nil)
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("Recommend() error = %v, want upstream error", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("upstream error should keep the deadline cause")
	}
	if len(script.params) != 1 {
		t.Errorf("provider called %d times, want 1", len(script.params))
	}
}

func TestOpenAIRecommender_ToolRoundLimit(t *testing.T) {
	t.Parallel()
	script := &scriptedChat{responses: []*openai.ChatCompletion{
		chatCompletion(t, toolCallMessage("a", ToolName, `{}`)),
		chatCompletion(t, toolCallMessage("b", ToolName, `{}`)),
	}}
	r := newOpenAIRecommenderWith(script.complete, Config{Provider: ProviderGroq, MaxToolRounds: 1}, nil)
	tool := func(context.Context, major.Filter) ([]major.Major, error) { return nil, nil }

	_, err := r.Recommend(context.Background(), testRequest, tool)
	if !errors.Is(err, apperrors.ErrSchemaViolation) {
		t.Fatalf("Recommend() error = %v, want schema violation", err)
	}
	if choice := script.params[1].ToolChoice.OfAuto.Value; choice != "none" {
		t.Errorf("last round tool choice = %q, want none", choice)
	}
}
