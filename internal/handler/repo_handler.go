package handler

import (
	"github.com/gitdocai/gitdoc/internal/port"
	"github.com/gofiber/fiber/v3"
)

// RepoHandler exposes the tracked-repository catalog.
type RepoHandler struct {
	repos port.RepositoryStore
}

// NewRepoHandler creates a new repository handler.
func NewRepoHandler(repos port.RepositoryStore) *RepoHandler {
	return &RepoHandler{repos: repos}
}

// Register sets up repository routes.
func (h *RepoHandler) Register(router fiber.Router) {
	router.Get("/repositories", h.List)
}

// List returns the tracked repositories, ordered by name. Credential
// references never leave the service.
func (h *RepoHandler) List(c fiber.Ctx) error {
	repos, err := h.repos.ListRepositoriesByIDs(c.Context(), nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make([]fiber.Map, 0, len(repos))
	for _, r := range repos {
		out = append(out, fiber.Map{
			"id":             r.ID,
			"name":           r.Name,
			"url":            r.URL,
			"default_branch": r.DefaultBranch,
			"last_sync_at":   r.LastSyncAt,
		})
	}
	return c.JSON(fiber.Map{"repositories": out, "count": len(out)})
}
