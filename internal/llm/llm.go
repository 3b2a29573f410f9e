// Package llm generates text with a hosted language model.
package llm

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Request is one single-turn generation.
type Request struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
}

// Provider generates text for a prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Logger   *zap.Logger
}

const defaultTimeout = 60 * time.Second

// NewProvider returns the provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiProvider(GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Client:  &http.Client{Timeout: cfg.Timeout},
			Logger:  cfg.Logger,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger,
		}), nil
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
