package metaobject

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
	app.Get("/api/v1/meta-objects", h.list)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/meta-objects", h.adminList)
	r.Post("/meta-objects", h.create)
	r.Put("/meta-objects/:id", h.update)
	r.Delete("/meta-objects/:id", h.remove)
}

type metaObjectRequest struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	IsActive  *bool  `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}

func (p metaObjectRequest) toMetaObject() MetaObject {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return MetaObject{
		Type:      Type(p.Type),
		Code:      p.Code,
		Name:      p.Name,
		Value:     p.Value,
		IsActive:  active,
		SortOrder: p.SortOrder,
	}
}

func (h *Handler) list(c *fiber.Ctx) error {
	raw := c.Query("type")
	if raw == "" {
		grouped, err := h.service.Grouped(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		return c.JSON(grouped)
	}
	t, ok := ParseType(raw)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown meta object type"})
	}
	items, err := h.service.List(c.UserContext(), t, false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	var t Type
	if raw := c.Query("type"); raw != "" {
		parsed, ok := ParseType(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown meta object type"})
		}
		t = parsed
	}
	items, err := h.service.List(c.UserContext(), t, true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(metaObjectRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	m, err := h.service.Create(c.UserContext(), payload.toMetaObject())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handler) update(c *fiber.Ctx) error {
	payload := new(metaObjectRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	m, err := h.service.Update(c.UserContext(), c.Params("id"), payload.toMetaObject())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(m)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	if ve, ok := IsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
