package models

// Language values accepted by the pipeline.
const (
	LanguageKorean  = "ko"
	LanguageEnglish = "en"
	LanguageBoth    = "both"
)

// Error types reported on failed batch entries.
const (
	ErrorTypeCrawl    = "crawl"
	ErrorTypeAnalysis = "analysis"
	ErrorTypeSearch   = "search"
	ErrorTypeUnknown  = "unknown"
)

// ErrorTitle is the title used for placeholder entries of failed URLs.
const ErrorTitle = "Error"

// CommentDraft is a suggested community comment in one language.
type CommentDraft struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Analysis is the structured output of the LLM for one page.
type Analysis struct {
	Summary       string         `json:"summary"`
	Keywords      []string       `json:"keywords"`
	CommentDrafts []CommentDraft `json:"comment_drafts"`
}

// RelatedPage is a community page found for a source URL, with its tracking link.
type RelatedPage struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	Source      string `json:"source"`
	Filter      string `json:"filter,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

// AnalysisResult is one entry of a batch response. Failed URLs carry
// ErrorType and Error instead of analysis content.
type AnalysisResult struct {
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	Keywords      []string       `json:"keywords"`
	RelatedPages  []RelatedPage  `json:"related_pages"`
	CommentDrafts []CommentDraft `json:"comment_drafts,omitempty"`
	ErrorType     string         `json:"error_type,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Failed returns true if the entry is an error placeholder.
func (r *AnalysisResult) Failed() bool {
	return r.ErrorType != ""
}

// ProcessRequest is the body accepted by the batch endpoint.
type ProcessRequest struct {
	URLs           []string `json:"urls"`
	TargetAudience string   `json:"target_audience"`
	Language       string   `json:"language"`
	SearchFilter   []string `json:"search_filter"`
	UserKeywords   []string `json:"user_keywords"`
}

// ProcessResponse wraps the per-URL results of a batch.
type ProcessResponse struct {
	Results []AnalysisResult `json:"results"`
}
