package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"outreach/internal/records"
)

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeFailed      = "failed"
	OutcomeRateLimited = "rate_limited"
)

var (
	trackingRecordsDesc = prometheus.NewDesc(
		"outreach_tracking_records",
		"Tracking records currently kept, by source",
		[]string{"source"},
		nil,
	)
	trackingRecentDesc = prometheus.NewDesc(
		"outreach_tracking_records_recent",
		"Tracking records created in the last 7 days",
		nil,
		nil,
	)

	searchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_search_requests_total",
		Help: "Search provider requests by filter and outcome",
	}, []string{"filter", "outcome"})

	searchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_search_results_total",
		Help: "Accepted related pages by filter",
	}, []string{"filter"})

	processedURLs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_processed_urls_total",
		Help: "URLs processed by the batch pipeline, by outcome",
	}, []string{"outcome"})

	llmAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_llm_attempts_total",
		Help: "LLM generation attempts by outcome",
	}, []string{"outcome"})
)

// RecordCollector is a custom Prometheus collector that reads record log
// statistics from the store on each scrape.
type RecordCollector struct {
	store  records.Store
	logger *zap.Logger
}

// Describe sends the metric descriptors to the channel.
func (c *RecordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- trackingRecordsDesc
	ch <- trackingRecentDesc
}

// Collect queries the store and emits per-source gauges.
func (c *RecordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.store.Stats(ctx, time.Now())
	if err != nil {
		c.logger.Error("failed to collect tracking record metrics", zap.Error(err))
		return
	}
	for source, n := range stats.BySource {
		ch <- prometheus.MustNewConstMetric(trackingRecordsDesc, prometheus.GaugeValue, float64(n), source)
	}
	ch <- prometheus.MustNewConstMetric(trackingRecentDesc, prometheus.GaugeValue, float64(stats.RecentCount))
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store records.Store, logger *zap.Logger) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			&RecordCollector{store: store, logger: logger.Named("metrics")},
			searchRequests,
			searchResults,
			processedURLs,
			llmAttempts,
		)
	})
}

// RecordSearch counts one provider request and its accepted results.
func RecordSearch(filter, outcome string, accepted int) {
	searchRequests.WithLabelValues(filter, outcome).Inc()
	if accepted > 0 {
		searchResults.WithLabelValues(filter).Add(float64(accepted))
	}
}

// RecordProcessedURL counts one pipeline result. An empty errorType counts
// as a success.
func RecordProcessedURL(errorType string) {
	if errorType == "" {
		errorType = OutcomeSuccess
	}
	processedURLs.WithLabelValues(errorType).Inc()
}

// RecordLLMAttempt counts one LLM generation attempt.
func RecordLLMAttempt(outcome string) {
	llmAttempts.WithLabelValues(outcome).Inc()
}
