package preferences

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nowiht/storefront-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/account/preferences", h.get)
	app.Put("/api/v1/account/preferences", h.update)
}

func (h *Handler) get(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.Get(c.UserContext(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) update(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(Update)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.Update(c.UserContext(), email, *payload)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}
