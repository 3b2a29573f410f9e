package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"outreach/internal/config"
	"outreach/internal/models"
	"outreach/internal/records"
	"outreach/internal/search"
	"outreach/internal/validation"
)

// languageOption is one entry of the language selector.
type languageOption struct {
	Value string
	Label string
}

var languageOptions = []languageOption{
	{models.LanguageKorean, "한국어"},
	{models.LanguageEnglish, "English"},
	{models.LanguageBoth, "한국어 + English"},
}

// PageHandler renders the HTML pages.
type PageHandler struct {
	store  records.Store
	cfg    *config.Config
	yaml   *config.YAMLConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewPageHandler creates a new page handler.
func NewPageHandler(store records.Store, cfg *config.Config, yamlCfg *config.YAMLConfig, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{store: store, cfg: cfg, yaml: yamlCfg, logger: logger, now: time.Now}
}

// Index renders the batch input form.
func (h *PageHandler) Index(c fiber.Ctx) error {
	defaults := make(map[string]bool)
	for _, name := range h.yaml.DefaultFilters() {
		defaults[name] = true
	}
	if len(defaults) == 0 {
		defaults[string(search.DefaultFilter)] = true
	}

	type filterOption struct {
		Name     string
		Domains  []string
		Selected bool
	}
	filters := make([]filterOption, 0, len(search.Filters()))
	for _, f := range search.Filters() {
		filters = append(filters, filterOption{
			Name:     string(f),
			Domains:  search.Domains(f),
			Selected: defaults[string(f)],
		})
	}

	return c.Render("index", MergeBranding(fiber.Map{
		"Title":          "New batch",
		"User":           currentUser(c),
		"Filters":        filters,
		"Languages":      languageOptions,
		"TargetAudience": h.cfg.DefaultTargetAudience,
		"MaxURLs":        validation.MaxBatchURLs,
	}, h.cfg))
}

// Dashboard renders the tracking-link record log and its statistics.
func (h *PageHandler) Dashboard(c fiber.Ctx) error {
	recs, err := h.store.List(c.Context())
	if err != nil {
		h.logger.Error("failed to list tracking records", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load records")
	}

	stats, err := h.store.Stats(c.Context(), h.now())
	if err != nil {
		h.logger.Error("failed to compute tracking stats", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load statistics")
	}

	return c.Render("dashboard", MergeBranding(fiber.Map{
		"Title":   "Dashboard",
		"User":    currentUser(c),
		"Records": recs,
		"Stats":   stats,
	}, h.cfg))
}

// Login renders the login page.
func (h *PageHandler) Login(c fiber.Ctx) error {
	return c.Render("login", MergeBranding(fiber.Map{
		"Title": "Sign in",
	}, h.cfg))
}
