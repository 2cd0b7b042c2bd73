package genai

import (
	"context"
	"testing"
)

func TestNew_DisabledWithoutKey(t *testing.T) {
	t.Parallel()
	r, err := New(context.Background(), Config{Provider: ProviderGemini}, nil)
	if err != nil {
		t.Fatalf("Expected nil error for empty key, got: %v", err)
	}
	if r != nil {
		t.Error("Expected nil recommender for empty key")
	}
}

func TestNew_Providers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		cfg       Config
		wantModel string
	}{
		{
			name:      "gemini default model",
			cfg:       Config{Provider: ProviderGemini, APIKey: "test-key"},
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "groq default model",
			cfg:       Config{Provider: ProviderGroq, APIKey: "test-key"},
			wantModel: "meta-llama/llama-4-maverick-17b-128e-instruct",
		},
		{
			name:      "cerebras explicit model",
			cfg:       Config{Provider: ProviderCerebras, APIKey: "test-key", Model: "llama-3.1-8b"},
			wantModel: "llama-3.1-8b",
		},
		{
			name:      "openai with custom endpoint",
			cfg:       Config{Provider: ProviderOpenAI, APIKey: "test-key", BaseURL: "http://localhost:8080/v1/"},
			wantModel: "gpt-4o-mini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// Constructors only build clients; no request is sent.
			r, err := New(context.Background(), tt.cfg, nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if r == nil {
				t.Fatal("Expected non-nil recommender")
			}
			if r.Provider() != tt.cfg.Provider {
				t.Errorf("Provider() = %v, want %v", r.Provider(), tt.cfg.Provider)
			}
			if r.Model() != tt.wantModel {
				t.Errorf("Model() = %q, want %q", r.Model(), tt.wantModel)
			}
			if err := r.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	t.Parallel()
	if _, err := New(context.Background(), Config{Provider: "mystery", APIKey: "k"}, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestProvider_IsOpenAICompatible(t *testing.T) {
	t.Parallel()
	tests := []struct {
		provider Provider
		want     bool
	}{
		{ProviderGemini, false},
		{ProviderGroq, true},
		{ProviderCerebras, true},
		{ProviderOpenAI, true},
		{Provider("other"), false},
	}
	for _, tt := range tests {
		if got := tt.provider.IsOpenAICompatible(); got != tt.want {
			t.Errorf("%s.IsOpenAICompatible() = %v, want %v", tt.provider, got, tt.want)
		}
	}
}
