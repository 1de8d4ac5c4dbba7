package server

import (
	"portfolio/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and their state for the admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := s.admin.Authorize(c.UserContext(), actor); err != nil {
		return respondError(c, err)
	}

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(actor.Email),
	})
}
