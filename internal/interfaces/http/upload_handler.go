package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/infrastructure/imghost"
)

const maxUploadBytes = 5 << 20

// UploadHandler forwards product images to the external image host.
type UploadHandler struct {
	client *imghost.Client
}

// NewUploadHandler builds the handler.
func NewUploadHandler(client *imghost.Client) *UploadHandler {
	return &UploadHandler{client: client}
}

// Image accepts a multipart image under the "image" field and returns the
// hosted URL.
func (h *UploadHandler) Image(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return fail(c, fmt.Errorf("%w: image file is required", domain.ErrInvalidInput))
	}
	if header.Size > maxUploadBytes {
		return fail(c, fmt.Errorf("%w: image exceeds the 5MB limit", domain.ErrInvalidInput))
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fail(c, fmt.Errorf("%w: only image uploads are accepted", domain.ErrInvalidInput))
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, fmt.Errorf("open upload: %w", err))
	}
	defer file.Close()

	url, err := h.client.Upload(c.Context(), header.Filename, file)
	if err != nil {
		return fail(c, fmt.Errorf("upload image: %w", err))
	}
	return ok(c, fiber.StatusOK, fiber.Map{"url": url})
}
