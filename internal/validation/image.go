package validation

import (
	"fmt"
	"strings"

	"portfolio/internal/models"
)

// AllowedImageTypes are the content types accepted for covers and project images.
var AllowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

// ValidateImage checks an upload's declared size and content type.
func ValidateImage(size int64, contentType string, maxBytes int64) error {
	if size <= 0 {
		return models.NewValidationError("image is required")
	}
	if size > maxBytes {
		return models.NewValidationError(fmt.Sprintf("image must be at most %d MB", maxBytes>>20))
	}
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	if _, ok := AllowedImageTypes[ct]; !ok {
		return models.NewValidationError("image must be a JPEG, PNG or WebP file")
	}
	return nil
}
