package handler

import (
	"errors"

	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gitdocai/gitdoc/internal/service"
	"github.com/gofiber/fiber/v3"
)

// IngestHandler receives the extraction service's progress callbacks.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Register sets up the extractor-facing routes.
func (h *IngestHandler) Register(router fiber.Router) {
	jobs := router.Group("/internal/jobs")
	jobs.Post("/:id/cloning", h.Cloning)
	jobs.Post("/:id/parsing", h.Parsing)
	jobs.Post("/:id/commits", h.Commit)
	jobs.Post("/:id/complete", h.Complete)
	jobs.Post("/:id/fail", h.Fail)
}

// Cloning marks the job CLONING.
func (h *IngestHandler) Cloning(c fiber.Ctx) error {
	if err := h.ingest.MarkCloning(c.Context(), c.Params("id")); err != nil {
		return ingestError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Parsing marks the job PARSING and records the run's total commit count.
func (h *IngestHandler) Parsing(c fiber.Ctx) error {
	var body struct {
		TotalCommits int `json:"total_commits"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.ingest.MarkParsing(c.Context(), c.Params("id"), body.TotalCommits); err != nil {
		return ingestError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Commit ingests one reported commit; re-reporting a known (repository, sha)
// answers inserted=false.
func (h *IngestHandler) Commit(c fiber.Ctx) error {
	var rec service.CommitRecord
	if err := c.Bind().JSON(&rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	inserted, err := h.ingest.IngestCommit(c.Context(), c.Params("id"), rec)
	if err != nil {
		return ingestError(c, err)
	}
	return c.JSON(fiber.Map{"inserted": inserted})
}

// Complete marks the job COMPLETED.
func (h *IngestHandler) Complete(c fiber.Ctx) error {
	if err := h.ingest.MarkCompleted(c.Context(), c.Params("id")); err != nil {
		return ingestError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Fail marks the job FAILED with the extractor's error text.
func (h *IngestHandler) Fail(c fiber.Ctx) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.ingest.MarkFailed(c.Context(), c.Params("id"), body.Error); err != nil {
		return ingestError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func ingestError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	case errors.Is(err, port.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
