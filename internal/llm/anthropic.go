package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const DefaultAnthropicModel = "claude-sonnet-4-5"

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// AnthropicProvider calls the Anthropic Messages API. SDK retries are
// disabled; callers own the retry policy.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  defaultIfEmpty(cfg.Model, DefaultAnthropicModel),
		logger: logger.Named("anthropic"),
	}
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", p.classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())

	p.logger.Debug("generate response",
		zap.Int("length", len(text)),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Duration("cost", time.Since(start)),
	)

	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *AnthropicProvider) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, 529:
			return fmt.Errorf("%w: anthropic status %d", ErrRateLimited, apiErr.StatusCode)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, p.model)
		}
	}
	return fmt.Errorf("anthropic request failed: %w", err)
}
