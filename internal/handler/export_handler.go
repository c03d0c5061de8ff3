package handler

import (
	"errors"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gitdocai/gitdoc/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ExportHandler compiles commit reports.
type ExportHandler struct {
	exporter *service.Exporter
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exporter *service.Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Register sets up export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Post("/exports", h.Compile)
}

// Compile builds the workbook for the requested filter and returns the
// generated file descriptors, or a structured error when nothing matched.
func (h *ExportHandler) Compile(c fiber.Ctx) error {
	var body struct {
		RepositoryIDs []string `json:"repository_ids"`
		Authors       []string `json:"authors"`
		StartDate     string   `json:"start_date"`
		EndDate       string   `json:"end_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	since, err := parseDate(body.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date"})
	}
	until, err := parseDate(body.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date"})
	}

	job, err := h.exporter.Compile(c.Context(), domain.CommitFilter{
		RepositoryIDs: body.RepositoryIDs,
		AuthorEmails:  body.Authors,
		Since:         since,
		Until:         until,
	})
	if errors.Is(err, port.ErrNoCommitsMatched) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no commits matched the filter"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"export_id":     job.ID,
		"files":         job.Files,
		"total_commits": job.TotalCommits,
	})
}
