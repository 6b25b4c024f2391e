package payment

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/logger"
	"github.com/nowiht/storefront-backend/internal/order"
)

// Orders applies payment outcomes to orders.
type Orders interface {
	MarkPaid(ctx context.Context, orderNumber, reference string) (order.Order, error)
	MarkPaymentFailed(ctx context.Context, orderNumber, reference string) (order.Order, error)
}

type Handler struct {
	verifier *Verifier
	orders   Orders
}

func NewHandler(v *Verifier, orders Orders) *Handler {
	return &Handler{verifier: v, orders: orders}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/v1/payments/webhook", h.webhook)
}

func (h *Handler) webhook(c *fiber.Ctx) error {
	payload := c.Body()
	if err := h.verifier.Verify(payload, c.Get(SignatureHeader)); err != nil {
		logger.FromCtx(c).Warn("rejected payment webhook", zap.Error(err), zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	ev, err := ParseEvent(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var o order.Order
	switch ev.Type {
	case EventSucceeded:
		o, err = h.orders.MarkPaid(c.UserContext(), ev.Data.OrderNumber, ev.Data.Reference)
	case EventFailed:
		o, err = h.orders.MarkPaymentFailed(c.UserContext(), ev.Data.OrderNumber, ev.Data.Reference)
	default:
		logger.FromCtx(c).Info("ignored payment webhook", zap.String("type", ev.Type), zap.String("id", ev.ID))
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		logger.FromCtx(c).Error("payment webhook failed",
			zap.String("type", ev.Type),
			zap.String("orderNumber", ev.Data.OrderNumber),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"received":      true,
		"orderNumber":   o.OrderNumber,
		"paymentStatus": o.PaymentStatus,
		"status":        o.Status,
	})
}
