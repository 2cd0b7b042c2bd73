package genai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zjgaokao/major-advisor/internal/metrics"
)

// New creates the Recommender for cfg.Provider. It returns nil, nil when no
// API key is configured; callers then serve the catalog path only.
func New(ctx context.Context, cfg Config, m *metrics.Metrics) (Recommender, error) {
	if cfg.APIKey == "" {
		slog.InfoContext(ctx, "no LLM provider configured for recommendations", "provider", cfg.Provider)
		return nil, nil //nolint:nilnil // Intentional: LLM path disabled without an API key
	}

	var (
		r   Recommender
		err error
	)
	switch {
	case cfg.Provider == ProviderGemini:
		r, err = newGeminiRecommender(ctx, cfg, m)
	case cfg.Provider.IsOpenAICompatible():
		r, err = newOpenAIRecommender(cfg, m)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "recommender configured",
		"provider", r.Provider(),
		"model", r.Model(),
		"max_tool_rounds", cfg.MaxToolRounds)
	return r, nil
}
