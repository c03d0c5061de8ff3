package handler

import (
	"github.com/gitdocai/gitdoc/internal/service"
	"github.com/gofiber/fiber/v3"
)

// SummaryHandler triggers summarization batches.
type SummaryHandler struct {
	summarizer *service.Summarizer
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(summarizer *service.Summarizer) *SummaryHandler {
	return &SummaryHandler{summarizer: summarizer}
}

// Register sets up summarization routes.
func (h *SummaryHandler) Register(router fiber.Router) {
	router.Post("/summaries/run", h.RunBatch)
}

// RunBatch processes one batch and returns its aggregated result. Callers
// drain the backlog by invoking this until success and failed are both zero
// or rate_limited is true.
func (h *SummaryHandler) RunBatch(c fiber.Ctx) error {
	var body struct {
		RepositoryID string `json:"repository_id"`
	}
	// Body is optional; an empty body means an unscoped batch.
	_ = c.Bind().JSON(&body)

	result, err := h.summarizer.RunBatch(c.Context(), body.RepositoryID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
