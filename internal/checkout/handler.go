package checkout

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
	app.Post("/api/v1/checkout/quote", h.quote)
	app.Get("/api/v1/shipping/zones", h.getZones)
}

type quoteRequest struct {
	Items     []Item `json:"items"`
	Country   string `json:"country"`
	PromoCode string `json:"promoCode"`
}

func (h *Handler) quote(c *fiber.Ctx) error {
	payload := new(quoteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	q, err := h.service.Quote(c.UserContext(), payload.Items, payload.Country, payload.PromoCode)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(q)
}

func (h *Handler) getZones(c *fiber.Ctx) error {
	return c.JSON(Zones())
}

// WriteError maps checkout errors to HTTP responses.
func WriteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrUnknownPromo),
		errors.Is(err, ErrPromoMinimum),
		errors.Is(err, ErrCountryRequired),
		errors.Is(err, ErrInvalidVariant):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrProductUnavailable), errors.Is(err, ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
