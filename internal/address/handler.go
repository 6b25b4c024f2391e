package address

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
	app.Get("/api/v1/account/addresses", h.list)
	app.Post("/api/v1/account/addresses", h.create)
	app.Get("/api/v1/account/addresses/:id", h.get)
	app.Put("/api/v1/account/addresses/:id", h.update)
	app.Delete("/api/v1/account/addresses/:id", h.remove)
	app.Post("/api/v1/account/addresses/:id/default", h.setDefault)
}

func (h *Handler) list(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	list, err := h.service.List(c.UserContext(), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) get(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	a, err := h.service.Get(c.UserContext(), email, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) create(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	a, err := h.service.Create(c.UserContext(), email, *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) update(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	a, err := h.service.Update(c.UserContext(), email, c.Params("id"), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) setDefault(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	a, err := h.service.SetDefault(c.UserContext(), email, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.Delete(c.UserContext(), email, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
