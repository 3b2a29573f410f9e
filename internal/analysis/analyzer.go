// Package analysis turns scraped page content into a summary, keywords and
// comment drafts using a language model.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"outreach/internal/llm"
	"outreach/internal/metrics"
	"outreach/internal/models"
)

const (
	// DefaultTargetAudience is the reader persona used when none is given.
	DefaultTargetAudience = "구조/토목 엔지니어"
	// MaxAttempts bounds generation attempts for rate-limited requests.
	MaxAttempts = 3

	defaultRetryDelay = 10 * time.Second
)

var (
	// ErrAnalysis wraps every failure returned by Analyze.
	ErrAnalysis = errors.New("analysis failed")
	// ErrQuotaExceeded is returned when every attempt was rate limited.
	ErrQuotaExceeded = errors.New("LLM quota exceeded, try again in a minute")
	// ErrTruncated is returned when the model output ends mid-object.
	ErrTruncated = errors.New("LLM response was truncated")
	// ErrMalformed is returned when the model output is not valid JSON.
	ErrMalformed = errors.New("LLM response is not valid JSON")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = llm.ErrEmptyResponse
)

// Input is the page content to analyze.
type Input struct {
	Title          string
	Content        string
	TargetAudience string
	Language       string
	SEO            models.SEOInfo
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRetryDelay sets the base delay between rate-limited attempts. The n-th
// retry waits n times the base delay.
func WithRetryDelay(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.retryDelay = d
		}
	}
}

// WithDefaultTargetAudience overrides DefaultTargetAudience.
func WithDefaultTargetAudience(audience string) Option {
	return func(a *Analyzer) {
		if audience != "" {
			a.defaultAudience = audience
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger.Named("analysis")
		}
	}
}

// Analyzer runs the analysis prompt against an llm.Provider.
type Analyzer struct {
	provider        llm.Provider
	retryDelay      time.Duration
	defaultAudience string
	logger          *zap.Logger
}

// New creates an Analyzer.
func New(provider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider:        provider,
		retryDelay:      defaultRetryDelay,
		defaultAudience: DefaultTargetAudience,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Analyze generates the summary, keywords and comment drafts for a page.
// Rate-limited generations are retried up to MaxAttempts times; every other
// failure is returned at once. All errors wrap ErrAnalysis.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*models.Analysis, error) {
	if in.TargetAudience == "" {
		in.TargetAudience = a.defaultAudience
	}
	switch in.Language {
	case models.LanguageKorean, models.LanguageEnglish, models.LanguageBoth:
	default:
		in.Language = models.LanguageBoth
	}

	req := llm.Request{
		Prompt:          BuildPrompt(in),
		MaxOutputTokens: MaxOutputTokens(in.Language),
		Temperature:     Temperature,
		TopP:            TopP,
	}

	text, err := a.generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	result, err := ParseResponse(text, in.Language)
	if err != nil {
		a.logger.Warn("unparseable LLM response", zap.Error(err), zap.Int("length", len(text)))
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return result, nil
}

func (a *Analyzer) generate(ctx context.Context, req llm.Request) (string, error) {
	if a.provider == nil {
		return "", llm.ErrMissingAPIKey
	}

	var text string
	attempt := 0
	op := func() error {
		attempt++
		out, err := a.provider.Generate(ctx, req)
		if err == nil {
			metrics.RecordLLMAttempt(metrics.OutcomeSuccess)
			text = out
			return nil
		}
		if errors.Is(err, llm.ErrRateLimited) {
			metrics.RecordLLMAttempt(metrics.OutcomeRateLimited)
			return err
		}
		metrics.RecordLLMAttempt(metrics.OutcomeFailed)
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		a.logger.Info("LLM rate limited, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", MaxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&linearBackOff{base: a.retryDelay}, MaxAttempts-1), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if errors.Is(err, llm.ErrRateLimited) {
			return "", fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return "", err
	}
	return text, nil
}

// linearBackOff waits base, 2*base, 3*base, ...
type linearBackOff struct {
	base time.Duration
	n    int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.base
}

func (l *linearBackOff) Reset() { l.n = 0 }
