// Package pipeline runs the batch flow: scrape each URL, analyze it, find
// related community pages and attach tracking links.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"outreach/internal/analysis"
	"outreach/internal/metrics"
	"outreach/internal/models"
	"outreach/internal/records"
	"outreach/internal/scraper"
	"outreach/internal/search"
	"outreach/internal/tracking"
	"outreach/internal/validation"
)

var (
	// ErrSearch wraps failures of the related-page search stage.
	ErrSearch = errors.New("search failed")
	// ErrInvalidRequest is returned by Validate.
	ErrInvalidRequest = errors.New("invalid request")
)

// Scraper fetches page content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.Page, error)
}

// Analyzer produces the LLM analysis of a page.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (*models.Analysis, error)
}

// Searcher finds related community pages.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Result, error)
}

// FilterResolver is implemented by searchers that substitute default filters
// for an empty list.
type FilterResolver interface {
	EffectiveFilters(filters []search.Filter) []search.Filter
}

// Option configures a Processor.
type Option func(*Processor)

// WithStore records every generated tracking link in store.
func WithStore(store records.Store) Option {
	return func(p *Processor) {
		p.store = store
	}
}

// WithDefaultCampaign sets the campaign used when no keyword is available.
func WithDefaultCampaign(campaign string) Option {
	return func(p *Processor) {
		if campaign != "" {
			p.defaultCampaign = campaign
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger.Named("pipeline")
		}
	}
}

// Processor runs batches sequentially, one URL at a time.
type Processor struct {
	scraper         Scraper
	analyzer        Analyzer
	searcher        Searcher
	store           records.Store
	defaultCampaign string
	logger          *zap.Logger
}

// New creates a Processor.
func New(s Scraper, a Analyzer, se Searcher, opts ...Option) *Processor {
	p := &Processor{
		scraper:         s,
		analyzer:        a,
		searcher:        se,
		defaultCampaign: tracking.DefaultCampaign,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Validate checks a batch request before any network call.
func Validate(req models.ProcessRequest) error {
	if ok, msg := validation.ValidateURLBatch(req.URLs); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
	}
	switch req.Language {
	case "", models.LanguageKorean, models.LanguageEnglish, models.LanguageBoth:
	default:
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, req.Language)
	}
	if _, err := search.ParseFilters(req.SearchFilter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Process handles every URL of req in order and returns exactly one result
// per URL. A failing URL yields an error placeholder and never stops the batch.
func (p *Processor) Process(ctx context.Context, req models.ProcessRequest) []models.AnalysisResult {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("batch started",
		zap.Int("urls", len(req.URLs)),
		zap.String("language", req.Language),
		zap.Strings("filters", req.SearchFilter),
	)

	start := time.Now()
	results := make([]models.AnalysisResult, 0, len(req.URLs))
	failed := 0
	for _, url := range req.URLs {
		result, err := p.processURL(ctx, logger, url, req)
		if err != nil {
			errorType := ClassifyError(err)
			logger.Warn("url failed", zap.String("url", url), zap.String("error_type", errorType), zap.Error(err))
			result = Placeholder(url, errorType, err)
			failed++
		}
		metrics.RecordProcessedURL(result.ErrorType)
		results = append(results, result)
	}

	logger.Info("batch finished",
		zap.Int("results", len(results)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

func (p *Processor) processURL(ctx context.Context, logger *zap.Logger, url string, req models.ProcessRequest) (models.AnalysisResult, error) {
	page, err := p.scraper.Scrape(ctx, url)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	logger.Debug("page scraped", zap.String("url", url), zap.Int("length", len(page.Content)))

	result, err := p.analyzer.Analyze(ctx, analysis.Input{
		Title:          page.Title,
		Content:        page.Content,
		TargetAudience: req.TargetAudience,
		Language:       req.Language,
		SEO:            page.SEO,
	})
	if err != nil {
		return models.AnalysisResult{}, err
	}

	campaign := p.defaultCampaign
	if len(result.Keywords) > 0 {
		campaign = tracking.KeywordCampaign(result.Keywords[0])
	}

	related, err := p.Related(ctx, url, search.Request{
		Keywords:     result.Keywords,
		Language:     search.Language(req.Language),
		Filters:      parseKnownFilters(req.SearchFilter),
		UserKeywords: req.UserKeywords,
	}, campaign)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	return models.AnalysisResult{
		URL:           url,
		Title:         page.Title,
		Summary:       result.Summary,
		Keywords:      result.Keywords,
		RelatedPages:  related,
		CommentDrafts: result.CommentDrafts,
	}, nil
}

// Related searches for pages related to the request keywords. When sourceURL
// is set each page gets a tracking link to sourceURL, attributed to the
// page's domain, and the link is saved to the record log.
func (p *Processor) Related(ctx context.Context, sourceURL string, req search.Request, campaign string) ([]models.RelatedPage, error) {
	found, err := p.searcher.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	if campaign == "" {
		campaign = p.defaultCampaign
	}

	pages := make([]models.RelatedPage, 0, len(found))
	for _, r := range found {
		page := models.RelatedPage{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
			Source:  r.Source,
			Filter:  string(r.Filter),
		}
		if sourceURL != "" {
			trackingURL, err := tracking.GenerateURL(sourceURL, r.Source, campaign)
			if err != nil {
				return nil, err
			}
			page.TrackingURL = trackingURL
			p.save(ctx, sourceURL, page, campaign)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// EffectiveFilters returns the filter categories Related searches for filters.
func (p *Processor) EffectiveFilters(filters []search.Filter) []search.Filter {
	if r, ok := p.searcher.(FilterResolver); ok {
		return r.EffectiveFilters(filters)
	}
	if collapsed := search.CollapseFilters(filters); len(collapsed) > 0 {
		return collapsed
	}
	return []search.Filter{search.DefaultFilter}
}

func (p *Processor) save(ctx context.Context, sourceURL string, page models.RelatedPage, campaign string) {
	if p.store == nil {
		return
	}
	_, err := p.store.Save(ctx, records.NewRecord{
		OriginalURL: sourceURL,
		TrackingURL: page.TrackingURL,
		Source:      page.Source,
		Medium:      models.MediumComment,
		Campaign:    campaign,
		Title:       page.Title,
		Filter:      page.Filter,
	})
	if err != nil {
		p.logger.Error("failed to save tracking record",
			zap.String("url", sourceURL),
			zap.String("source", page.Source),
			zap.Error(err),
		)
	}
}

// ClassifyError maps a stage error to a placeholder error type.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, scraper.ErrScrape):
		return models.ErrorTypeCrawl
	case errors.Is(err, analysis.ErrAnalysis):
		return models.ErrorTypeAnalysis
	case errors.Is(err, ErrSearch), errors.Is(err, search.ErrMissingAPIKey):
		return models.ErrorTypeSearch
	default:
		return models.ErrorTypeUnknown
	}
}

// Placeholder builds the result entry for a failed URL.
func Placeholder(url, errorType string, err error) models.AnalysisResult {
	return models.AnalysisResult{
		URL:          url,
		Title:        models.ErrorTitle,
		Summary:      fmt.Sprintf("processing failed (%s): %s", errorType, err.Error()),
		Keywords:     []string{},
		RelatedPages: []models.RelatedPage{},
		ErrorType:    errorType,
		Error:        err.Error(),
	}
}

func parseKnownFilters(names []string) []search.Filter {
	filters := make([]search.Filter, 0, len(names))
	for _, name := range names {
		if f, err := search.ParseFilter(name); err == nil {
			filters = append(filters, f)
		}
	}
	return filters
}
