package handler

import (
	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gofiber/fiber/v3"
)

// CommitHandler exposes read access to the commit store.
type CommitHandler struct {
	commits port.CommitStore
}

// NewCommitHandler creates a new commit handler.
func NewCommitHandler(commits port.CommitStore) *CommitHandler {
	return &CommitHandler{commits: commits}
}

// Register sets up commit routes.
func (h *CommitHandler) Register(router fiber.Router) {
	router.Get("/commits", h.List)
	router.Get("/authors", h.ListAuthors)
}

// List returns one page of commits, newest first, with pagination metadata.
func (h *CommitHandler) List(c fiber.Ctx) error {
	since, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_date"})
	}
	until, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_date"})
	}

	filter := domain.CommitFilter{
		RepositoryIDs: splitList(c.Query("repository_id")),
		AuthorEmails:  splitList(c.Query("author")),
		Since:         since,
		Until:         until,
		SummaryStatus: c.Query("summary_status"),
	}

	page := fiber.Query[int](c, "page", 1)
	limit := fiber.Query[int](c, "limit", 50)

	commits, total, err := h.commits.QueryCommits(c.Context(), filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return c.JSON(fiber.Map{
		"commits":     commits,
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	})
}

// ListAuthors returns distinct commit authors, optionally scoped to a
// repository, ordered by commit count descending.
func (h *CommitHandler) ListAuthors(c fiber.Ctx) error {
	authors, err := h.commits.ListDistinctAuthors(c.Context(), c.Query("repository_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"authors": authors, "count": len(authors)})
}
