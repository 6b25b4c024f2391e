package upload

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/uploads/:key", h.serve)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/uploads", h.upload)
}

func (h *Handler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if fh.Size > MaxSize {
		return writeError(c, ErrTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxSize+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	res, err := h.service.Upload(c.UserContext(), data)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *Handler) serve(c *fiber.Ctx) error {
	obj, err := h.service.Open(c.UserContext(), c.Params("key"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(obj.Data)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidKey):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnsupportedType):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
