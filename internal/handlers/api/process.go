package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"outreach/internal/models"
	"outreach/internal/pipeline"
)

// BatchProcessor runs the scrape, analyze and search flow for a batch.
type BatchProcessor interface {
	Process(ctx context.Context, req models.ProcessRequest) []models.AnalysisResult
}

// ReadinessCheck reports a configuration problem that prevents processing.
type ReadinessCheck func() error

// ProcessHandler serves the batch endpoint.
type ProcessHandler struct {
	processor BatchProcessor
	ready     ReadinessCheck
	logger    *zap.Logger
}

// NewProcessHandler creates a new process handler. A nil ready check always
// passes.
func NewProcessHandler(processor BatchProcessor, ready ReadinessCheck, logger *zap.Logger) *ProcessHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessHandler{processor: processor, ready: ready, logger: logger}
}

// Process handles POST /api/process.
func (h *ProcessHandler) Process(c fiber.Ctx) error {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			h.logger.Error("processing is not configured", zap.Error(err))
			return jsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	var req models.ProcessRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := pipeline.Validate(req); err != nil {
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to validate request")
	}

	results := h.processor.Process(c.Context(), req)
	return jsonSuccess(c, models.ProcessResponse{Results: results})
}
