package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/metrics"
)

// completeFunc matches openai.ChatCompletionService.New.
type completeFunc func(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)

// openaiRecommender runs the recommendation flow against an
// OpenAI-compatible chat completions API (Groq, Cerebras, OpenAI).
type openaiRecommender struct {
	client      openai.Client
	complete    completeFunc
	provider    Provider
	model       string
	tools       []openai.ChatCompletionToolUnionParam
	temperature float64
	maxRounds   int
	metrics     *metrics.Metrics
}

// newOpenAIRecommender creates an OpenAI-compatible recommender.
// cfg.BaseURL overrides the provider's predefined endpoint.
func newOpenAIRecommender(cfg Config, m *metrics.Metrics) (*openaiRecommender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}
	if !cfg.Provider.IsOpenAICompatible() {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", cfg.Provider)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ProviderEndpoint[cfg.Provider]
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	// The flow has no retry; a failed call surfaces to the user.
	opts = append(opts, option.WithMaxRetries(0))

	r := newOpenAIRecommenderWith(nil, cfg, m)
	r.client = openai.NewClient(opts...)
	r.complete = r.client.Chat.Completions.New
	return r, nil
}

func newOpenAIRecommenderWith(complete completeFunc, cfg Config, m *metrics.Metrics) *openaiRecommender {
	model := cfg.Model
	if model == "" {
		model = DefaultModels[cfg.Provider]
	}
	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultMaxToolRounds
	}
	return &openaiRecommender{
		complete:    complete,
		provider:    cfg.Provider,
		model:       model,
		tools:       buildOpenAITools(),
		temperature: cfg.Temperature,
		maxRounds:   rounds,
		metrics:     m,
	}
}

// Recommend runs the multi-turn tool loop until the model answers.
func (r *openaiRecommender) Recommend(ctx context.Context, req Request, tool ToolFunc) (*Output, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(SystemPrompt),
		openai.UserMessage(BuildPrompt(req)),
	}
	var rounds, toolCalls int

	for round := 0; ; round++ {
		lastRound := round >= r.maxRounds
		choice := openai.ChatCompletionToolChoiceOptionAutoAuto
		if lastRound {
			choice = openai.ChatCompletionToolChoiceOptionAutoNone
		}

		params := openai.ChatCompletionNewParams{
			Model:    r.model,
			Messages: messages,
			Tools:    r.tools,
			ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String(string(choice)),
			},
			Temperature: openai.Float(r.temperature),
			MaxTokens:   openai.Int(8192),
		}

		start := time.Now()
		resp, err := r.complete(ctx, params)
		duration := time.Since(start)
		rounds++

		if err != nil {
			class := ClassifyError(err)
			r.metrics.RecordLLMRequest(r.provider.String(), string(class), duration.Seconds())
			slog.WarnContext(ctx, "recommendation API call failed",
				"provider", r.provider,
				"model", r.model,
				"round", round,
				"error_class", class,
				"duration_ms", duration.Milliseconds(),
				"error", err)
			return nil, apperrors.NewUpstreamError(r.provider.String(), r.model, err)
		}
		r.metrics.RecordLLMRequest(r.provider.String(), "ok", duration.Seconds())

		if resp != nil && resp.Usage.TotalTokens > 0 {
			r.metrics.RecordLLMTokens(r.provider.String(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			slog.DebugContext(ctx, "recommendation round completed",
				"provider", r.provider,
				"model", r.model,
				"round", round,
				"input_tokens", resp.Usage.PromptTokens,
				"output_tokens", resp.Usage.CompletionTokens,
				"total_tokens", resp.Usage.TotalTokens,
				"duration_ms", duration.Milliseconds())
		}

		if resp == nil || len(resp.Choices) == 0 {
			return nil, apperrors.NewSchemaViolation("model returned no output", nil)
		}
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			out, err := ParseOutput(msg.Content)
			if err != nil {
				slog.WarnContext(ctx, "model answer rejected",
					"provider", r.provider,
					"model", r.model,
					"finish_reason", resp.Choices[0].FinishReason,
					"error", err)
				return nil, err
			}
			out.Rounds, out.ToolCalls = rounds, toolCalls
			return out, nil
		}
		if lastRound {
			return nil, apperrors.NewSchemaViolation(
				fmt.Sprintf("model still calling tools after %d rounds", r.maxRounds), nil)
		}

		messages = append(messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			payload, err := r.serveToolCall(ctx, tool, tc)
			if err != nil {
				return nil, err
			}
			toolCalls++
			body, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode tool result: %w", err)
			}
			messages = append(messages, openai.ToolMessage(string(body), tc.ID))
		}
	}
}

func (r *openaiRecommender) serveToolCall(ctx context.Context, tool ToolFunc, tc openai.ChatCompletionMessageToolCallUnion) (map[string]any, error) {
	if tc.Type != "" && tc.Type != "function" {
		r.metrics.RecordToolCall(tc.Type, "unknown_tool", 0)
		return map[string]any{"error": fmt.Sprintf("unsupported tool type %q", tc.Type)}, nil
	}

	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			r.metrics.RecordToolCall(tc.Function.Name, "bad_arguments", 0)
			slog.WarnContext(ctx, "tool arguments are not JSON", "tool", tc.Function.Name, "error", err)
			return map[string]any{"error": "arguments must be a JSON object: " + err.Error()}, nil
		}
	}
	return runTool(ctx, tool, toolCall{ID: tc.ID, Name: tc.Function.Name, Args: args}, r.metrics)
}

// Provider returns the provider type for this recommender.
func (r *openaiRecommender) Provider() Provider {
	return r.provider
}

// Model returns the model name.
func (r *openaiRecommender) Model() string {
	return r.model
}

// Close releases resources held by the recommender.
func (r *openaiRecommender) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
