package server

import (
	"portfolio/internal/cache"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProjects handles GET /api/projects
// @Summary List published projects
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Router /projects [get]
func (s *Server) ListProjects(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, defaultPageSize)

	var projects []*models.Project
	fetch := func() (err error) {
		projects, err = s.projectService.ListPublished(ctx, page.Limit, page.Offset)
		return err
	}

	var err error
	if page.Offset == 0 && page.Limit == defaultPageSize {
		err = s.pages.Aside(ctx, cache.PathProjects, &projects, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

// RecentProjects handles GET /api/projects/recent
// @Summary Latest published projects
// @Tags projects
// @Produce json
// @Param limit query int false "How many, default 3"
// @Success 200 {array} models.Project
// @Router /projects/recent [get]
func (s *Server) RecentProjects(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultRecentLimit)
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	projects, err := s.projectService.ListRecent(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

// GetProjectBySlug handles GET /api/projects/slug/:slug
// @Summary Get a published project
// @Tags projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/slug/{slug} [get]
func (s *Server) GetProjectBySlug(c *fiber.Ctx) error {
	project, err := s.projectService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// AdminListProjects handles GET /api/admin/projects
func (s *Server) AdminListProjects(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	projects, err := s.projectService.ListAll(c.UserContext(), middleware.ActorFromCtx(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

// CreateProject handles POST /api/admin/projects
// @Summary Create a draft project
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreateProjectInput true "Project"
// @Success 201 {object} models.Project
// @Router /admin/projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req service.CreateProjectInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	project, err := s.projectService.Create(c.UserContext(), middleware.ActorFromCtx(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// AdminGetProject handles GET /api/admin/projects/:id
func (s *Server) AdminGetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetByID(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PATCH /api/admin/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.ProjectPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	project, err := s.projectService.Update(c.UserContext(), middleware.ActorFromCtx(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// PublishProject handles POST /api/admin/projects/:id/publish
func (s *Server) PublishProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.projectService.Publish(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ArchiveProject handles POST /api/admin/projects/:id/archive
func (s *Server) ArchiveProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.projectService.Archive(c.UserContext(), middleware.ActorFromCtx(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.StatusArchived})
}

// DeleteProjectImage handles DELETE /api/admin/projects/:id/images/:storageId
// @Summary Remove an image from a project
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param storageId path string true "Storage ID"
// @Success 204
// @Router /admin/projects/{id}/images/{storageId} [delete]
func (s *Server) DeleteProjectImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteImage(c.UserContext(), middleware.ActorFromCtx(c), id, c.Params("storageId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
