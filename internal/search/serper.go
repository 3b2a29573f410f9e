package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSerperEndpoint is the Serper Google search API.
	DefaultSerperEndpoint = "https://google.serper.dev/search"

	defaultSerperTimeout = 15 * time.Second
	// logBodyLimit caps the number of response bytes logged or echoed in errors.
	logBodyLimit = 4096
)

// SerperOption configures a SerperClient.
type SerperOption func(*SerperClient)

// WithEndpoint overrides the Serper endpoint, primarily for testing.
func WithEndpoint(endpoint string) SerperOption {
	return func(c *SerperClient) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) SerperOption {
	return func(c *SerperClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *zap.Logger) SerperOption {
	return func(c *SerperClient) {
		if logger != nil {
			c.logger = logger.Named("serper")
		}
	}
}

// SerperClient queries the Serper API.
type SerperClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewSerperClient creates a client for the given API key. An empty key is
// accepted here and reported by Configured.
func NewSerperClient(apiKey string, opts ...SerperOption) *SerperClient {
	c := &SerperClient{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: DefaultSerperEndpoint,
		client:   &http.Client{Timeout: defaultSerperTimeout},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Configured reports whether an API key is set.
func (c *SerperClient) Configured() bool {
	return c.apiKey != ""
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type serperOrganic struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search sends one query and returns the organic hits in rank order.
func (c *SerperClient) Search(ctx context.Context, q Query) ([]Hit, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(serperRequest{Q: q.Q, Num: q.Num, GL: q.Country, HL: q.Language})
	if err != nil {
		return nil, fmt.Errorf("encoding serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("outgoing search request",
		zap.String("query", q.Q),
		zap.Int("num", q.Num),
		zap.String("gl", q.Country),
		zap.String("hl", q.Language),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending serper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading serper response: %w", err)
	}

	truncatedBody, truncated := truncateForLog(body, logBodyLimit)
	c.logger.Debug("incoming search response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("serper returned status %d: %s", resp.StatusCode, truncatedBody)
	}

	var decoded serperResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding serper response: %w", err)
	}
	if len(decoded.Organic) == 0 {
		if decoded.Error != "" {
			return nil, fmt.Errorf("serper reported error: %s", decoded.Error)
		}
		if decoded.Message != "" {
			return nil, fmt.Errorf("serper reported error: %s", decoded.Message)
		}
	}

	hits := make([]Hit, 0, len(decoded.Organic))
	for _, o := range decoded.Organic {
		hits = append(hits, Hit{Link: o.Link, Title: o.Title, Snippet: o.Snippet})
	}
	return hits, nil
}

func truncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}
