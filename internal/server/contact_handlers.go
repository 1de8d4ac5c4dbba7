package server

import (
	"portfolio/internal/middleware"
	"portfolio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateContact handles POST /api/contact
// @Summary Leave a message
// @Description The owner is notified by email. A failed notification does not fail the request.
// @Tags contact
// @Accept json
// @Produce json
// @Param request body service.ContactInput true "Message"
// @Success 201 {object} models.ContactMessage
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /contact [post]
func (s *Server) CreateContact(c *fiber.Ctx) error {
	var req service.ContactInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.contactService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// AdminListContacts handles GET /api/admin/contacts
// @Summary List contact messages, newest first
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ContactMessage
// @Router /admin/contacts [get]
func (s *Server) AdminListContacts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	msgs, err := s.contactService.List(c.UserContext(), middleware.ActorFromCtx(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// ReplyContact handles POST /api/admin/contacts/:id/reply
// @Summary Reply to a contact message by email
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Contact ID"
// @Param request body service.ReplyInput true "Reply"
// @Success 200 {object} models.ContactMessage
// @Failure 502 {object} models.ErrorResponse
// @Router /admin/contacts/{id}/reply [post]
func (s *Server) ReplyContact(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ReplyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.contactService.Reply(c.UserContext(), middleware.ActorFromCtx(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}
