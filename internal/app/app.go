// Package app assembles the outreach components from configuration. It is
// shared by the HTTP server and the command-line client.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"outreach/internal/analysis"
	"outreach/internal/config"
	"outreach/internal/db"
	"outreach/internal/llm"
	"outreach/internal/pipeline"
	"outreach/internal/records"
	"outreach/internal/scraper"
	"outreach/internal/search"
)

// OpenStore returns the record log: Postgres when DATABASE_URL is set,
// memory otherwise. The returned *db.DB is nil for the memory store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (records.Store, *db.DB, error) {
	if !cfg.HasDatabase() {
		logger.Info("DATABASE_URL not set, keeping tracking records in memory", zap.Int("max_records", cfg.RecordsMax))
		return records.NewMemoryStore(cfg.RecordsMax), nil, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL, cfg.RecordsMax)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations completed successfully")
	return database, database, nil
}

// NewAggregator builds the search aggregator from configuration.
func NewAggregator(cfg *config.Config, yamlCfg *config.YAMLConfig, logger *zap.Logger) *search.Aggregator {
	serper := search.NewSerperClient(cfg.SerperAPIKey,
		search.WithEndpoint(cfg.SerperEndpoint),
		search.WithHTTPClient(&http.Client{Timeout: cfg.SearchTimeout}),
		search.WithLogger(logger),
	)

	var defaults []search.Filter
	for _, name := range yamlCfg.DefaultFilters() {
		f, err := search.ParseFilter(name)
		if err != nil {
			logger.Warn("ignoring unknown default filter", zap.String("filter", name))
			continue
		}
		defaults = append(defaults, f)
	}

	return search.NewAggregator(serper,
		search.WithPDFDetector(search.NewPDFDetector(yamlCfg.PDFTitleDenylist()...)),
		search.WithDefaultFilters(defaults),
		search.WithAggregatorLogger(logger),
	)
}

// NewAnalyzer builds the content analyzer. A missing LLM key is not fatal
// here: the analyzer then fails every call with llm.ErrMissingAPIKey.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey(),
		Timeout:  cfg.LLMTimeout,
		Logger:   logger,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, err
		}
		logger.Warn("LLM API key not configured, batch processing is disabled", zap.String("provider", cfg.LLMProvider))
	}

	return analysis.New(provider,
		analysis.WithRetryDelay(cfg.LLMRetryDelay),
		analysis.WithDefaultTargetAudience(cfg.DefaultTargetAudience),
		analysis.WithLogger(logger),
	), nil
}

// NewProcessor wires scraper, analyzer, aggregator and record log into a
// batch processor.
func NewProcessor(cfg *config.Config, yamlCfg *config.YAMLConfig, store records.Store, logger *zap.Logger) (*pipeline.Processor, error) {
	analyzer, err := NewAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := scraper.New(
		scraper.WithTimeout(cfg.ScrapeTimeout),
		scraper.WithLogger(logger),
	)

	return pipeline.New(s, analyzer, NewAggregator(cfg, yamlCfg, logger),
		pipeline.WithStore(store),
		pipeline.WithDefaultCampaign(yamlCfg.DefaultCampaign()),
		pipeline.WithLogger(logger),
	), nil
}
