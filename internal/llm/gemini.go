package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	errorBodyLimit       = 512
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

// GeminiProvider calls the Gemini generateContent REST endpoint.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:  cfg.APIKey,
		model:   defaultIfEmpty(cfg.Model, DefaultGeminiModel),
		baseURL: strings.TrimRight(defaultIfEmpty(cfg.BaseURL, defaultGeminiBaseURL), "/"),
		client:  cfg.Client,
		logger:  cfg.Logger,
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: defaultTimeout}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("gemini")
	return p
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-goog-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug("generate request", zap.String("model", p.model), zap.Int("prompt_length", len(req.Prompt)))

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", p.classify(resp.StatusCode, raw)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	var sb strings.Builder
	finish := ""
	if len(parsed.Candidates) > 0 {
		finish = parsed.Candidates[0].FinishReason
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())

	p.logger.Debug("generate response",
		zap.Int("length", len(text)),
		zap.String("finish_reason", finish),
		zap.Duration("cost", time.Since(start)),
	)

	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *GeminiProvider) classify(status int, raw []byte) error {
	var apiErr geminiError
	_ = json.Unmarshal(raw, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = string(raw)
		if len(msg) > errorBodyLimit {
			msg = msg[:errorBodyLimit]
		}
	}

	switch {
	case status == http.StatusTooManyRequests,
		apiErr.Error.Status == "RESOURCE_EXHAUSTED",
		strings.Contains(strings.ToLower(msg), "quota"):
		return fmt.Errorf("%w: gemini status %d: %s", ErrRateLimited, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s: %s", ErrModelNotFound, p.model, msg)
	default:
		return fmt.Errorf("gemini request failed with status %d: %s", status, msg)
	}
}
