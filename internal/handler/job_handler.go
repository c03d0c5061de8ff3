package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gitdocai/gitdoc/internal/service"
	"github.com/gofiber/fiber/v3"
)

// JobHandler exposes analysis-job submission and polling endpoints.
type JobHandler struct {
	coordinator *service.Coordinator
}

// NewJobHandler creates a new job handler.
func NewJobHandler(coordinator *service.Coordinator) *JobHandler {
	return &JobHandler{coordinator: coordinator}
}

// Register sets up job routes.
func (h *JobHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Post("/", h.Submit)
	jobs.Get("/", h.List)
	jobs.Get("/:id", h.GetStatus)
}

// Submit accepts an ingestion run and returns 202 with the PENDING job.
// Clients poll GET /jobs/:id until a terminal status appears.
func (h *JobHandler) Submit(c fiber.Ctx) error {
	var body struct {
		RepositoryID string `json:"repository_id"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
		Authors      string `json:"authors"` // comma-separated author emails
		AllBranches  bool   `json:"all_branches"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.RepositoryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repository_id is required"})
	}

	start, err := parseDate(body.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date"})
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date"})
	}

	job, err := h.coordinator.Submit(c.Context(), service.SubmitRequest{
		RepositoryID: body.RepositoryID,
		StartDate:    start,
		EndDate:      end,
		AuthorFilter: splitList(body.Authors),
		AllBranches:  body.AllBranches,
	})
	if errors.Is(err, port.ErrRepoNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "repository not found"})
	}
	if errors.Is(err, port.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(job)
}

// GetStatus returns the full job projection.
func (h *JobHandler) GetStatus(c fiber.Ctx) error {
	job, err := h.coordinator.GetStatus(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}

// List returns jobs newest first.
func (h *JobHandler) List(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", 50)
	jobs, err := h.coordinator.ListJobs(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

// parseDate accepts YYYY-MM-DD or RFC3339; empty input yields nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
