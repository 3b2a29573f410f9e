package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"outreach/internal/models"
	"outreach/internal/search"
	"outreach/internal/validation"
)

// RelatedFinder finds related community pages for a keyword set.
type RelatedFinder interface {
	Related(ctx context.Context, sourceURL string, req search.Request, campaign string) ([]models.RelatedPage, error)
	EffectiveFilters(filters []search.Filter) []search.Filter
}

// SearchHandler serves keyword searches that skip scraping and analysis.
type SearchHandler struct {
	finder RelatedFinder
	logger *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(finder RelatedFinder, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{finder: finder, logger: logger}
}

type searchRequest struct {
	Keywords     []string `json:"keywords"`
	UserKeywords []string `json:"user_keywords"`
	Language     string   `json:"language"`
	Filters      []string `json:"filters"`
	SourceURL    string   `json:"source_url"`
	Campaign     string   `json:"campaign"`
}

// Search handles POST /api/search. When source_url is set every page carries
// a tracking link to it.
func (h *SearchHandler) Search(c fiber.Ctx) error {
	var body searchRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	switch body.Language {
	case "", models.LanguageKorean, models.LanguageEnglish, models.LanguageBoth:
	default:
		return jsonError(c, fiber.StatusBadRequest, "unsupported language")
	}

	filters, err := search.ParseFilters(body.Filters)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if body.SourceURL != "" {
		if valid, msg := validation.ValidateURL(body.SourceURL); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	}
	if !validation.ValidateCampaign(body.Campaign) {
		return jsonError(c, fiber.StatusBadRequest, "campaign must contain only letters, numbers, dots, hyphens, and underscores")
	}

	keywords := search.NormalizeKeywords(body.Keywords, body.UserKeywords)
	if len(keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "at least one keyword is required")
	}

	pages, err := h.finder.Related(c.Context(), body.SourceURL, search.Request{
		Keywords:     body.Keywords,
		UserKeywords: body.UserKeywords,
		Language:     search.Language(body.Language),
		Filters:      filters,
	}, body.Campaign)
	if err != nil {
		if errors.Is(err, search.ErrMissingAPIKey) {
			return jsonError(c, fiber.StatusInternalServerError, "search provider is not configured")
		}
		h.logger.Error("search failed", zap.Strings("keywords", keywords), zap.Error(err))
		return jsonError(c, fiber.StatusBadGateway, "search failed")
	}

	effective := h.finder.EffectiveFilters(filters)
	names := make([]string, 0, len(effective))
	for _, f := range effective {
		names = append(names, string(f))
	}

	return jsonSuccess(c, models.SearchResponse{
		Keywords:     keywords,
		Filters:      names,
		RelatedPages: pages,
	})
}
