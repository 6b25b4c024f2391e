package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nowiht/storefront-backend/internal/checkout"
	"github.com/nowiht/storefront-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterCheckoutRoutes mounts order placement. auth should accept
// anonymous requests so guests can check out.
func (h *Handler) RegisterCheckoutRoutes(app fiber.Router, auth fiber.Handler) {
	app.Post("/api/v1/orders", auth, h.checkout)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/orders", h.listMine)
	app.Get("/api/v1/orders/:id", h.getMine)
	app.Post("/api/v1/orders/:id/cancel", h.cancel)
	app.Post("/api/v1/orders/:id/return", h.requestReturn)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.adminList)
	r.Get("/orders/:id", h.adminGet)
	r.Get("/orders/:id/returns", h.adminReturns)
	r.Patch("/orders/:id/status", h.adminTransition)
	r.Post("/orders/:id/ship", h.adminShip)
	r.Delete("/orders/:id", h.adminDelete)
}

type transitionRequest struct {
	Event          string `json:"event"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(CheckoutInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	// signed-in customers always order under their account email
	if id, err := user.GetUserIDFromCtx(c); err == nil {
		payload.UserID = id
		if email, err := user.GetEmailFromCtx(c); err == nil {
			payload.Email = email
		}
	}

	o, err := h.service.Checkout(c.UserContext(), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListForCustomer(c.UserContext(), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getMine(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	o, err := h.service.GetForCustomer(c.UserContext(), c.Params("id"), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"order": o, "allowedEvents": customerEvents(o.Status)})
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	o, err := h.service.Cancel(c.UserContext(), c.Params("id"), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) requestReturn(c *fiber.Ctx) error {
	email, err := user.GetEmailFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.RequestReturn(c.UserContext(), c.Params("id"), email, payload.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext(), ListFilter{
		Email:  c.Query("email"),
		Status: Status(c.Query("status")),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) adminGet(c *fiber.Ctx) error {
	o, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"order": o, "allowedEvents": AllowedEvents(o.Status)})
}

func (h *Handler) adminReturns(c *fiber.Ctx) error {
	returns, err := h.service.Returns(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(returns)
}

func (h *Handler) adminTransition(c *fiber.Ctx) error {
	payload := new(transitionRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	ev, ok := ParseEvent(payload.Event)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown event"})
	}
	o, err := h.service.Transition(c.UserContext(), c.Params("id"), ev, payload.Carrier, payload.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminShip(c *fiber.Ctx) error {
	payload := new(transitionRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.Ship(c.UserContext(), c.Params("id"), payload.Carrier, payload.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminDelete(c *fiber.Ctx) error {
	if err := h.service.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func customerEvents(s Status) []Event {
	out := make([]Event, 0, 1)
	for _, ev := range AllowedEvents(s) {
		if ev == EventCancel || ev == EventRequestReturn {
			out = append(out, ev)
		}
	}
	return out
}

func writeError(c *fiber.Ctx, err error) error {
	var te *TransitionError
	if errors.As(err, &te) {
		return c.Status(te.Status).JSON(te)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found", "messageTr": "Sipariş bulunamadı"})
	case errors.Is(err, ErrTrackingRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrConcurrentUpdate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return checkout.WriteError(c, err)
	}
}
