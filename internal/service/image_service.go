package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"

	"portfolio/internal/models"
	"portfolio/internal/policy"
	"portfolio/internal/storage"
	"portfolio/internal/validation"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MaxImageWidth = 1600
	WebPQuality   = 80
)

type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UploadTicket lets a client PUT an image straight to storage.
type UploadTicket struct {
	StorageID string `json:"storage_id"`
	UploadURL string `json:"upload_url"`
}

// StoredImage describes a normalized upload.
type StoredImage struct {
	StorageID string `json:"storage_id"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int    `json:"bytes"`
}

type ImageService struct {
	store    storage.ObjectStore
	authz    policy.Authorizer
	maxBytes int64
}

func NewImageService(store storage.ObjectStore, authz policy.Authorizer, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &ImageService{store: store, authz: authz, maxBytes: maxBytes}
}

// UploadURL reserves a storage ID for a direct browser upload.
func (s *ImageService) UploadURL(ctx context.Context, actor *models.Actor) (*UploadTicket, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	id, u, err := s.store.UploadURL(ctx)
	if err != nil {
		return nil, models.NewUpstreamError("Failed to create upload URL", err)
	}
	return &UploadTicket{StorageID: id, UploadURL: u}, nil
}

// Upload validates an image, shrinks it to MaxImageWidth, re-encodes it as WebP
// and stores it.
func (s *ImageService) Upload(ctx context.Context, actor *models.Actor, in UploadImageInput) (*StoredImage, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateImage(int64(len(in.Content)), in.ContentType, s.maxBytes); err != nil {
		return nil, err
	}
	if err := validation.ValidateImage(int64(len(in.Content)), http.DetectContentType(in.Content), s.maxBytes); err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	resized := resizeToWidth(decoded, MaxImageWidth)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("encode webp: %w", err))
	}

	id := uuid.NewString()
	size := buf.Len()
	if err := s.store.Put(ctx, id, buf, int64(size), "image/webp"); err != nil {
		return nil, models.NewUpstreamError("Failed to store image", err)
	}

	u, err := s.store.URL(ctx, id)
	if err != nil {
		logResolveFailure(ctx, id, err)
	}

	b := resized.Bounds()
	return &StoredImage{StorageID: id, URL: u, Width: b.Dx(), Height: b.Dy(), Bytes: size}, nil
}

// Delete removes an image. A missing image counts as deleted.
func (s *ImageService) Delete(ctx context.Context, actor *models.Actor, storageID string) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}
	if storageID == "" {
		return models.NewValidationError("storage ID is required")
	}
	if err := s.store.Delete(ctx, storageID); err != nil {
		return models.NewUpstreamError("Failed to delete image", err)
	}
	return nil
}

func resizeToWidth(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth || w <= 0 || h <= 0 {
		return src
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
