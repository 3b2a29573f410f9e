// Package scraper fetches a web page and extracts its readable text and SEO
// metadata.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"outreach/internal/models"
	"outreach/internal/validation"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxRedirects     = 5

	// MinContentLength is the shortest extracted text accepted, in characters.
	MinContentLength = 50
	// MaxContentLength is the longest text passed on, in characters.
	MaxContentLength = 5000

	noTitle = "No title"
)

// ErrScrape wraps every failure to fetch or extract a page.
var ErrScrape = errors.New("crawl failed")

// ErrContentTooShort is returned when the extracted text is shorter than
// MinContentLength.
var ErrContentTooShort = errors.New("extracted content is too short")

// nonContentSelector matches elements stripped before text extraction.
const nonContentSelector = "script, style, nav, footer, header, iframe, noscript, " +
	"aside, .sidebar, .advertisement, .ad, .ads, " +
	".cookie-banner, .social-share, .related-posts, " +
	".comments, #comments, .comment-section, " +
	"button, .button, .btn, form, " +
	".menu, .navigation, .breadcrumb"

// articleSelectors are tried in order; the first present one supplies the text.
var articleSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".post-content",
	".article-content",
	".entry-content",
	"#content",
	".content",
	".post-body",
	".article-body",
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Keeps word characters, whitespace, Hangul syllables and jamo, and basic punctuation.
	disallowedPattern = regexp.MustCompile(`[^\w\s가-힣ㄱ-ㅎㅏ-ㅣ.,!?;:\-()]`)
)

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the HTTP client. The scraper uses a copy with its
// own redirect policy, so client itself is left unchanged.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			c := *client
			s.client = &c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger.Named("scraper")
		}
	}
}

// WithAllowPrivateHosts disables the private address check. Only for tests
// and trusted deployments.
func WithAllowPrivateHosts(allow bool) Option {
	return func(s *Scraper) {
		s.allowPrivate = allow
	}
}

// Scraper downloads pages for analysis.
type Scraper struct {
	client       *http.Client
	timeout      time.Duration
	logger       *zap.Logger
	allowPrivate bool
}

// New creates a Scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:  &http.Client{},
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.client.CheckRedirect = s.checkRedirect
	return s
}

func (s *Scraper) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return s.checkURL(req.URL.String())
}

func (s *Scraper) checkURL(rawURL string) error {
	check := validation.ValidateURL
	if !s.allowPrivate {
		check = validation.ValidateURLForFetch
	}
	if valid, msg := check(rawURL); !valid {
		return fmt.Errorf("%s: %s", msg, rawURL)
	}
	return nil
}

// Scrape fetches rawURL and extracts its title, cleaned body text and SEO
// metadata. Every error wraps ErrScrape.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*models.Page, error) {
	page, err := s.scrape(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScrape, err)
	}
	return page, nil
}

func (s *Scraper) scrape(ctx context.Context, rawURL string) (*models.Page, error) {
	if err := s.checkURL(rawURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &models.Page{URL: rawURL, SEO: ExtractSEO(doc)}

	doc.Find(nonContentSelector).Remove()
	page.Title = extractTitle(doc)

	content := CleanText(extractBody(doc))
	if utf8.RuneCountInString(content) < MinContentLength {
		return nil, ErrContentTooShort
	}
	page.Content = truncateRunes(content, MaxContentLength)

	s.logger.Debug("page extracted",
		zap.String("url", rawURL),
		zap.String("title", truncateRunes(page.Title, 50)),
		zap.Int("length", utf8.RuneCountInString(page.Content)),
		zap.Int("seo_keywords", len(page.SEO.Keywords)),
	)
	return page, nil
}

// ExtractSEO reads description, keywords and Open Graph tags.
func ExtractSEO(doc *goquery.Document) models.SEOInfo {
	var seo models.SEOInfo

	meta := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(v)
	}

	seo.OGTitle = meta(`meta[property="og:title"]`)
	seo.OGDescription = meta(`meta[property="og:description"]`)
	seo.OGKeywords = meta(`meta[property="og:keywords"]`)

	seo.Description = meta(`meta[name="description"]`)
	if seo.Description == "" {
		seo.Description = seo.OGDescription
	}

	if raw := meta(`meta[name="keywords"]`); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				seo.Keywords = append(seo.Keywords, k)
			}
		}
	}
	return seo
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return noTitle
}

func extractBody(doc *goquery.Document) string {
	for _, selector := range articleSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := sel.Text(); text != "" {
				return text
			}
			break
		}
	}
	return doc.Find("body").Text()
}

// CleanText collapses whitespace and strips characters outside the allowed
// set.
func CleanText(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = disallowedPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
