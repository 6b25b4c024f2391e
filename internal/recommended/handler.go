package recommended

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/collections/home", h.getHome)
	app.Get("/api/v1/collections/:name", h.getCollection)
}

func (h *Handler) getHome(c *fiber.Ctx) error {
	limit := DefaultLimit
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	home, err := h.service.Home(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(home)
}

func (h *Handler) getCollection(c *fiber.Ctx) error {
	collection, ok := ParseCollection(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "collection not found"})
	}
	// support pagination: ?limit=12&offset=0
	limit := DefaultLimit
	offset := 0
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	items, err := h.service.Collection(c.UserContext(), collection, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}
