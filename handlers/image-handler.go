package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"webapp/middleware"
	"webapp/models"
	"webapp/repository"
)

// fileField is the multipart form field carrying the profile picture.
const fileField = "profilePic"

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// ImageStore is the persistence surface for image metadata rows.
type ImageStore interface {
	FindLatestByUser(ctx context.Context, userID string) (*models.Image, error)
	Create(ctx context.Context, image *models.Image) error
	Delete(ctx context.Context, image *models.Image) error
}

// ObjectStore is the bucket the binaries live in.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	ObjectKey(userID, imageID, fileName string) string
	ObjectURL(key string) string
	KeyFromURL(url string) string
}

type ImageHandler struct {
	Images ImageStore
	Store  ObjectStore
	Log    *logrus.Logger
}

// Upload handles POST /v1/user/self/pic (authenticated, multipart).
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	file, err := c.FormFile(fileField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file provided."})
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if !allowedImageTypes[contentType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unsupported file type. Only PNG, JPG, and JPEG are allowed.",
		})
	}

	src, err := file.Open()
	if err != nil {
		h.Log.WithError(err).Error("image upload: opening form file failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error uploading image"})
	}
	defer src.Close()

	imageID := uuid.NewString()
	key := h.Store.ObjectKey(p.UserID, imageID, file.Filename)

	if err := h.Store.Upload(c.Context(), key, contentType, src); err != nil {
		h.Log.WithError(err).WithField("key", key).Error("image upload: object store put failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error uploading image"})
	}

	image := &models.Image{
		ID:         imageID,
		FileName:   file.Filename,
		URL:        h.Store.ObjectURL(key),
		UploadDate: time.Now().UTC().Format("2006-01-02"),
		UserID:     p.UserID,
	}
	if err := h.Images.Create(c.Context(), image); err != nil {
		h.Log.WithError(err).Error("image upload: metadata insert failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error uploading image"})
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

// GetSelf handles GET /v1/user/self/pic (authenticated).
func (h *ImageHandler) GetSelf(c *fiber.Ctx) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	image, err := h.Images.FindLatestByUser(c.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Profile image not found."})
		}
		h.Log.WithError(err).Error("image get: lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error retrieving image"})
	}

	return c.Status(fiber.StatusOK).JSON(image)
}

// DeleteSelf handles DELETE /v1/user/self/pic (authenticated). The stored
// object goes first; if that fails the metadata row is kept so the row never
// points past a delete that did not happen.
func (h *ImageHandler) DeleteSelf(c *fiber.Ctx) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	image, err := h.Images.FindLatestByUser(c.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Profile image not found."})
		}
		h.Log.WithError(err).Error("image delete: lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting image"})
	}

	if err := h.Store.Delete(c.Context(), h.Store.KeyFromURL(image.URL)); err != nil {
		h.Log.WithError(err).WithField("url", image.URL).Error("image delete: object store delete failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting image"})
	}

	if err := h.Images.Delete(c.Context(), image); err != nil {
		h.Log.WithError(err).Error("image delete: metadata delete failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error deleting image"})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
