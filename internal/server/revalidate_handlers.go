package server

import (
	"strings"

	"portfolio/internal/middleware"
	"portfolio/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxRevalidatePaths = 50

// Revalidate handles POST /api/admin/revalidate
// @Summary Mark public pages as stale
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{paths=[]string} true "Page paths"
// @Success 200 {object} object{revalidated=[]string}
// @Failure 502 {object} models.ErrorResponse
// @Router /admin/revalidate [post]
func (s *Server) Revalidate(c *fiber.Ctx) error {
	if err := s.admin.Authorize(c.UserContext(), middleware.ActorFromCtx(c)); err != nil {
		return respondError(c, err)
	}

	var req struct {
		Paths []string `json:"paths"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	paths := make([]string, 0, len(req.Paths))
	for _, p := range req.Paths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 || len(paths) > maxRevalidatePaths {
		return respondError(c, models.NewValidationError("paths must contain between 1 and 50 entries"))
	}

	if err := s.revalidator.Paths(c.UserContext(), paths...); err != nil {
		return respondError(c, models.NewUpstreamError("Revalidation failed", err))
	}
	return c.JSON(fiber.Map{"revalidated": paths})
}
