package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"outreach/internal/models"
	"outreach/internal/records"
)

// RecordsHandler exposes the tracking-link record log.
type RecordsHandler struct {
	store  records.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(store records.Store, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{store: store, logger: logger, now: time.Now}
}

// List handles GET /api/records, most recent first.
func (h *RecordsHandler) List(c fiber.Ctx) error {
	recs, err := h.store.List(c.Context())
	if err != nil {
		h.logger.Error("failed to list tracking records", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch records")
	}
	return jsonSuccess(c, recs)
}

// Get handles GET /api/records/:id.
func (h *RecordsHandler) Get(c fiber.Ctx) error {
	rec, err := h.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "record not found")
		}
		h.logger.Error("failed to fetch tracking record", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch record")
	}
	return jsonSuccess(c, rec)
}

// Delete handles DELETE /api/records/:id.
func (h *RecordsHandler) Delete(c fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.store.Delete(c.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete tracking record", zap.String("id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete record")
	}
	if !deleted {
		return jsonError(c, fiber.StatusNotFound, "record not found")
	}
	return jsonSuccess(c, models.DeleteResponse{ID: id, Deleted: true})
}

// Clear handles DELETE /api/records.
func (h *RecordsHandler) Clear(c fiber.Ctx) error {
	if err := h.store.Clear(c.Context()); err != nil {
		h.logger.Error("failed to clear tracking records", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to clear records")
	}
	return jsonSuccess(c, fiber.Map{"cleared": true})
}

// Stats handles GET /api/records/stats.
func (h *RecordsHandler) Stats(c fiber.Ctx) error {
	stats, err := h.store.Stats(c.Context(), h.now())
	if err != nil {
		h.logger.Error("failed to compute tracking stats", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute stats")
	}
	return jsonSuccess(c, stats)
}
