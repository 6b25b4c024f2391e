package category

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/categories", h.getTree)
	app.Get("/api/v1/categories/:slug", h.getBySlug)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/categories", h.adminTree)
	r.Post("/categories/recount", h.recount)
	r.Post("/categories", h.create)
	r.Get("/categories/:id", h.adminGet)
	r.Put("/categories/:id", h.update)
	r.Delete("/categories/:id", h.remove)
}

func (h *Handler) getTree(c *fiber.Ctx) error {
	tree, err := h.service.Tree(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tree)
}

func (h *Handler) getBySlug(c *fiber.Ctx) error {
	n, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(n)
}

func (h *Handler) adminTree(c *fiber.Ctx) error {
	tree, err := h.service.AdminTree(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tree)
}

func (h *Handler) adminGet(c *fiber.Ctx) error {
	cat, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	cat, err := h.service.Create(c.UserContext(), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) update(c *fiber.Ctx) error {
	payload := new(Input)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	cat, err := h.service.Update(c.UserContext(), c.Params("id"), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) recount(c *fiber.Ctx) error {
	counts, err := h.service.RecountProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"counts": counts})
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrDuplicateSlug), errors.Is(err, ErrHasChildren):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrCycle), errors.Is(err, ErrParentNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
