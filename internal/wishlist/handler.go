package wishlist

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nowiht/storefront-backend/internal/product"
	"github.com/nowiht/storefront-backend/internal/user"
)

// Handler exposes the signed-in account's wishlist.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/account/wishlist", h.list)
	app.Post("/api/v1/account/wishlist", h.add)
	app.Delete("/api/v1/account/wishlist/:productId", h.remove)
}

type addRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	entries, err := h.service.List(c.UserContext(), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(entries)
}

func (h *Handler) add(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if strings.TrimSpace(payload.ProductID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	it, err := h.service.Add(c.UserContext(), email, payload.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(it)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Remove(c.UserContext(), email, c.Params("productId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, product.ErrNotFound), errors.Is(err, ErrNotListed):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrAlreadyListed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
