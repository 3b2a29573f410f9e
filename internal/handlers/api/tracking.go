package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"outreach/internal/models"
	"outreach/internal/records"
	"outreach/internal/tracking"
	"outreach/internal/validation"
)

// TrackingHandler generates single tracking links.
type TrackingHandler struct {
	store  records.Store
	logger *zap.Logger
}

// NewTrackingHandler creates a new tracking handler. A nil store disables
// saving.
func NewTrackingHandler(store records.Store, logger *zap.Logger) *TrackingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingHandler{store: store, logger: logger}
}

type trackingRequest struct {
	URL      string `json:"url"`
	Source   string `json:"source"`
	Campaign string `json:"campaign"`
	Title    string `json:"title"`
	Save     bool   `json:"save"`
}

// Generate handles POST /api/tracking-url.
func (h *TrackingHandler) Generate(c fiber.Ctx) error {
	var body trackingRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Source = strings.TrimSpace(body.Source)
	if body.URL == "" || body.Source == "" {
		return jsonError(c, fiber.StatusBadRequest, "url and source are required")
	}
	if !validation.ValidateCampaign(body.Campaign) {
		return jsonError(c, fiber.StatusBadRequest, "campaign must contain only letters, numbers, dots, hyphens, and underscores")
	}

	campaign := body.Campaign
	if campaign == "" {
		campaign = tracking.DefaultCampaign
	}

	trackingURL, err := tracking.GenerateURL(body.URL, body.Source, campaign)
	if err != nil {
		if errors.Is(err, tracking.ErrInvalidURL) {
			return jsonError(c, fiber.StatusBadRequest, "url must be absolute")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to generate tracking url")
	}

	if body.Save {
		if h.store == nil {
			return jsonError(c, fiber.StatusBadRequest, "record log is not enabled")
		}
		_, err := h.store.Save(c.Context(), records.NewRecord{
			OriginalURL: body.URL,
			TrackingURL: trackingURL,
			Source:      body.Source,
			Medium:      models.MediumComment,
			Campaign:    campaign,
			Title:       body.Title,
		})
		if err != nil {
			h.logger.Error("failed to save tracking record", zap.String("url", body.URL), zap.Error(err))
			return jsonError(c, fiber.StatusInternalServerError, "failed to save tracking record")
		}
	}

	return jsonSuccess(c, models.TrackingURLResponse{
		OriginalURL: body.URL,
		TrackingURL: trackingURL,
		Source:      body.Source,
		Medium:      models.MediumComment,
		Campaign:    campaign,
	})
}
