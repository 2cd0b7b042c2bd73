package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/metrics"
	"google.golang.org/genai"
)

// generateFunc matches genai.Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// geminiRecommender runs the recommendation flow with Gemini function calling.
type geminiRecommender struct {
	generate    generateFunc
	model       string
	tools       []*genai.Tool
	temperature float32
	maxRounds   int
	metrics     *metrics.Metrics
}

// newGeminiRecommender creates a Gemini-based recommender.
func newGeminiRecommender(ctx context.Context, cfg Config, m *metrics.Metrics) (*geminiRecommender, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGeminiRecommenderWith(client.Models.GenerateContent, cfg, m), nil
}

func newGeminiRecommenderWith(generate generateFunc, cfg Config, m *metrics.Metrics) *geminiRecommender {
	model := cfg.Model
	if model == "" {
		model = DefaultModels[ProviderGemini]
	}
	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultMaxToolRounds
	}
	return &geminiRecommender{
		generate: generate,
		model:    model,
		tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{BuildToolDeclaration()},
		}},
		temperature: float32(cfg.Temperature),
		maxRounds:   rounds,
		metrics:     m,
	}
}

// config builds the request config. On the last round tool calling is
// switched off so the model has to answer.
func (r *geminiRecommender) config(lastRound bool) *genai.GenerateContentConfig {
	mode := genai.FunctionCallingConfigModeAuto
	if lastRound {
		mode = genai.FunctionCallingConfigModeNone
	}
	return &genai.GenerateContentConfig{
		Tools:             r.tools,
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
		},
		Temperature:     genai.Ptr(r.temperature),
		MaxOutputTokens: 8192,
	}
}

// Recommend runs the multi-turn tool loop until the model answers.
func (r *geminiRecommender) Recommend(ctx context.Context, req Request, tool ToolFunc) (*Output, error) {
	contents := []*genai.Content{genai.NewContentFromText(BuildPrompt(req), genai.RoleUser)}
	var rounds, toolCalls int

	for round := 0; ; round++ {
		lastRound := round >= r.maxRounds

		start := time.Now()
		result, err := r.generate(ctx, r.model, contents, r.config(lastRound))
		duration := time.Since(start)
		rounds++

		if err != nil {
			class := ClassifyError(err)
			r.metrics.RecordLLMRequest(ProviderGemini.String(), string(class), duration.Seconds())
			slog.WarnContext(ctx, "recommendation API call failed",
				"provider", ProviderGemini,
				"model", r.model,
				"round", round,
				"error_class", class,
				"duration_ms", duration.Milliseconds(),
				"error", err)
			return nil, apperrors.NewUpstreamError(ProviderGemini.String(), r.model, err)
		}
		r.metrics.RecordLLMRequest(ProviderGemini.String(), "ok", duration.Seconds())

		if result != nil && result.UsageMetadata != nil {
			r.metrics.RecordLLMTokens(ProviderGemini.String(),
				int64(result.UsageMetadata.PromptTokenCount),
				int64(result.UsageMetadata.CandidatesTokenCount))
			slog.DebugContext(ctx, "recommendation round completed",
				"provider", ProviderGemini,
				"model", r.model,
				"round", round,
				"input_tokens", result.UsageMetadata.PromptTokenCount,
				"output_tokens", result.UsageMetadata.CandidatesTokenCount,
				"total_tokens", result.UsageMetadata.TotalTokenCount,
				"duration_ms", duration.Milliseconds())
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil, apperrors.NewSchemaViolation("model returned no output", nil)
		}
		content := result.Candidates[0].Content

		calls := geminiCalls(content)
		if len(calls) == 0 {
			out, err := ParseOutput(geminiText(content))
			if err != nil {
				slog.WarnContext(ctx, "model answer rejected",
					"provider", ProviderGemini,
					"model", r.model,
					"finish_reason", result.Candidates[0].FinishReason,
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

		contents = append(contents, content)
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			payload, err := runTool(ctx, tool, call, r.metrics)
			if err != nil {
				return nil, err
			}
			toolCalls++
			parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: payload,
			}})
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

func geminiCalls(content *genai.Content) []toolCall {
	var calls []toolCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, toolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return calls
}

// geminiText joins the answer's text parts, skipping thoughts.
func geminiText(content *genai.Content) string {
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// Provider returns the provider type for this recommender.
func (r *geminiRecommender) Provider() Provider {
	return ProviderGemini
}

// Model returns the model name.
func (r *geminiRecommender) Model() string {
	return r.model
}

// Close releases resources held by the recommender.
// Safe to call on nil receiver.
func (r *geminiRecommender) Close() error {
	// genai.Client does not require explicit cleanup
	return nil
}
