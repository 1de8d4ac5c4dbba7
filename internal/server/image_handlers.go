package server

import (
	"io"

	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUploadURL handles POST /api/admin/images/upload-url
// @Summary Reserve a storage ID and a presigned upload URL
// @Tags images
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.UploadTicket
// @Router /admin/images/upload-url [post]
func (s *Server) CreateUploadURL(c *fiber.Ctx) error {
	ticket, err := s.imageService.UploadURL(c.UserContext(), middleware.ActorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ticket)
}

// UploadImage handles POST /api/admin/images
// @Summary Upload an image
// @Description The image is downsized to at most 1600px wide and stored as WebP.
// @Tags images
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 201 {object} service.StoredImage
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, s.config.MaxUploadBytes()+1))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	img, err := s.imageService.Upload(c.UserContext(), middleware.ActorFromCtx(c), service.UploadImageInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// DeleteImage handles DELETE /api/admin/images/:storageId
// @Summary Delete a stored image
// @Tags images
// @Security BearerAuth
// @Param storageId path string true "Storage ID"
// @Success 204
// @Router /admin/images/{storageId} [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	if err := s.imageService.Delete(c.UserContext(), middleware.ActorFromCtx(c), c.Params("storageId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
