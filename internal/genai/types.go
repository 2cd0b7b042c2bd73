// Package genai runs the major recommendation flow against an LLM provider.
// The model receives the student's profile and one retrieval tool,
// getMajorRecommendations, which it may call any number of times before it
// answers with {recommendedMajors, reasoning}.
//
// Architecture:
//   - Gemini: google.golang.org/genai (official SDK)
//   - Groq/Cerebras/OpenAI: github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// There is no retry and no provider fallback: one configured provider answers
// or the flow fails.
package genai

import (
	"context"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible).
	ProviderCerebras Provider = "cerebras"
	// ProviderOpenAI represents OpenAI or any endpoint speaking its API.
	ProviderOpenAI Provider = "openai"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// ProviderOpenAI uses the SDK default unless a base URL is configured.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// DefaultModels is the model used when none is configured.
var DefaultModels = map[Provider]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderGroq:     "meta-llama/llama-4-maverick-17b-128e-instruct",
	ProviderCerebras: "llama-3.3-70b",
	ProviderOpenAI:   "gpt-4o-mini",
}

// IsOpenAICompatible returns true if the provider uses the OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	return p == ProviderGroq || p == ProviderCerebras || p == ProviderOpenAI
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// DefaultMaxToolRounds bounds how many times the model may ask for tool
// results before it must answer.
const DefaultMaxToolRounds = 4

// Config selects and tunes one provider.
type Config struct {
	Provider Provider
	APIKey   string
	// Model overrides DefaultModels.
	Model string
	// BaseURL overrides ProviderEndpoint for OpenAI-compatible providers.
	BaseURL       string
	Temperature   float64
	MaxToolRounds int
}

// Request is the student profile the prompt is built from.
type Request struct {
	Score              int
	Ranking            int
	Subjects           []string
	IntendedRegions    []string
	IntendedCategories []string
	ExcludedRegions    []string
	ExcludedCategories []string
}

// ToolFunc answers one getMajorRecommendations call.
type ToolFunc func(ctx context.Context, f major.Filter) ([]major.Major, error)

// Output is a schema-valid model answer.
type Output struct {
	RecommendedMajors []major.Major
	Reasoning         string

	// Rounds counts model calls; ToolCalls counts executed tool calls.
	Rounds    int
	ToolCalls int
}

// Recommender runs the tool-augmented generation call.
type Recommender interface {
	// Recommend prompts the model with req and serves its tool calls with
	// tool. Errors are *errors.UpstreamError when the provider call fails and
	// *errors.SchemaViolationError when the answer breaks the output contract.
	Recommend(ctx context.Context, req Request, tool ToolFunc) (*Output, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Model returns the model name in use.
	Model() string
	// Close releases any resources held by the recommender.
	Close() error
}
