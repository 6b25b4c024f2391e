package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/checkout"
	"github.com/nowiht/storefront-backend/internal/metrics"
)

var ErrTrackingRequired = errors.New("carrier and tracking number are required to ship an order")

const numberAttempts = 3

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Pricer quotes a cart against the live catalog.
type Pricer interface {
	Quote(ctx context.Context, items []checkout.Item, country, promoCode string) (checkout.Quote, error)
}

// SalesRecorder updates product sales counters once an order is paid.
type SalesRecorder interface {
	RecordSale(ctx context.Context, productID string, qty int) error
}

type CheckoutInput struct {
	UserID          string          `json:"-"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	ShippingAddress Address         `json:"shippingAddress"`
	Items           []checkout.Item `json:"items"`
	PromoCode       string          `json:"promoCode"`
}

type Service struct {
	repo     Repository
	pricer   Pricer
	sales    SalesRecorder
	notifier Notifier
	numbers  *NumberGenerator
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo Repository, pricer Pricer, sales SalesRecorder, notifier Notifier, numbers *NumberGenerator, m *metrics.Metrics) *Service {
	if notifier == nil {
		notifier = NewLogNotifier(nil)
	}
	return &Service{
		repo:     repo,
		pricer:   pricer,
		sales:    sales,
		notifier: notifier,
		numbers:  numbers,
		metrics:  m,
		now:      time.Now,
	}
}

// Checkout prices the cart, then stores the order followed by its items.
// When the items cannot be stored the order row is removed again.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (Order, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateCheckout(in); err != nil {
		return Order{}, err
	}

	quote, err := s.pricer.Quote(ctx, in.Items, in.ShippingAddress.Country, in.PromoCode)
	if err != nil {
		return Order{}, err
	}

	now := s.now().UTC()
	o := Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		CustomerEmail:   in.Email,
		CustomerName:    strings.TrimSpace(in.Name),
		CustomerPhone:   strings.TrimSpace(in.Phone),
		ShippingAddress: in.ShippingAddress,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		PromoCode:       quote.PromoCode,
		ShippingCost:    quote.ShippingCost,
		Tax:             quote.Tax,
		Total:           quote.Total,
		Currency:        quote.Currency,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.ShippingAddress.Country = quote.Country

	for attempt := 1; ; attempt++ {
		o.OrderNumber = s.numbers.Next(now)
		err = s.repo.Create(ctx, o)
		if !errors.Is(err, ErrDuplicateNumber) || attempt == numberAttempts {
			break
		}
	}
	if err != nil {
		return Order{}, fmt.Errorf("save order: %w", err)
	}

	items := make([]Item, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		items = append(items, Item{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Size:      l.Size,
			Color:     l.Color,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Total:     l.Total().Round(2),
		})
	}
	if err := s.repo.InsertItems(ctx, o.ID, items); err != nil {
		if delErr := s.repo.Delete(ctx, o.ID); delErr != nil {
			zap.L().Error("failed to remove order after item insert failure",
				zap.String("orderNumber", o.OrderNumber), zap.Error(delErr))
		}
		return Order{}, fmt.Errorf("save order items: %w", err)
	}
	o.Items = items

	zap.L().Info("order placed",
		zap.String("orderNumber", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Bool("guest", o.UserID == ""),
	)
	s.notify(ctx, o, "")
	return o, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForCustomer returns the orders placed with email.
func (s *Service) ListForCustomer(ctx context.Context, email string) ([]Order, error) {
	if email == "" {
		return []Order{}, nil
	}
	return s.repo.List(ctx, ListFilter{Email: email})
}

// GetForCustomer loads an order owned by email. Orders owned by someone else
// are reported as not found.
func (s *Service) GetForCustomer(ctx context.Context, id, email string) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if email == "" || !strings.EqualFold(o.CustomerEmail, email) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) Returns(ctx context.Context, id string) ([]ReturnRequest, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListReturns(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id, email string) (Order, error) {
	o, err := s.GetForCustomer(ctx, id, email)
	if err != nil {
		return Order{}, err
	}
	return s.apply(ctx, o, EventCancel, nil)
}

// RequestReturn opens a return for a delivered order. Nothing is written
// when the order is not eligible.
func (s *Service) RequestReturn(ctx context.Context, id, email, reason string) (Order, error) {
	o, err := s.GetForCustomer(ctx, id, email)
	if err != nil {
		return Order{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Order{}, &ValidationError{Fields: map[string]string{"reason": "a return reason is required"}}
	}
	now := s.now().UTC()
	if _, err := Next(o, EventRequestReturn, now); err != nil {
		return Order{}, err
	}

	updated, err := s.apply(ctx, o, EventRequestReturn, nil)
	if err != nil {
		return Order{}, err
	}
	rr := ReturnRequest{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Reason:    reason,
		Status:    ReturnRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateReturn(ctx, rr); err != nil {
		return Order{}, fmt.Errorf("save return request: %w", err)
	}
	return updated, nil
}

func (s *Service) Process(ctx context.Context, id string) (Order, error) {
	return s.transition(ctx, id, EventProcess, nil)
}

func (s *Service) Ship(ctx context.Context, id, carrier, tracking string) (Order, error) {
	carrier, tracking = strings.TrimSpace(carrier), strings.TrimSpace(tracking)
	if carrier == "" || tracking == "" {
		return Order{}, ErrTrackingRequired
	}
	return s.transition(ctx, id, EventShip, func(o *Order) {
		o.Carrier = carrier
		o.TrackingNumber = tracking
	})
}

func (s *Service) Deliver(ctx context.Context, id string) (Order, error) {
	return s.transition(ctx, id, EventDeliver, nil)
}

// CancelByAdmin cancels without the ownership check.
func (s *Service) CancelByAdmin(ctx context.Context, id string) (Order, error) {
	return s.transition(ctx, id, EventCancel, nil)
}

func (s *Service) CompleteReturn(ctx context.Context, id string) (Order, error) {
	o, err := s.transition(ctx, id, EventCompleteReturn, func(o *Order) {
		if o.PaymentStatus == PaymentPaid {
			o.PaymentStatus = PaymentRefunded
		}
	})
	if err != nil {
		return Order{}, err
	}
	s.resolveReturn(ctx, o, ReturnApproved)
	return o, nil
}

func (s *Service) RejectReturn(ctx context.Context, id string) (Order, error) {
	o, err := s.transition(ctx, id, EventRejectReturn, nil)
	if err != nil {
		return Order{}, err
	}
	s.resolveReturn(ctx, o, ReturnRejected)
	return o, nil
}

// Transition applies an admin event by name. Ship goes through Ship so the
// tracking details are enforced.
func (s *Service) Transition(ctx context.Context, id string, ev Event, carrier, tracking string) (Order, error) {
	switch ev {
	case EventProcess:
		return s.Process(ctx, id)
	case EventShip:
		return s.Ship(ctx, id, carrier, tracking)
	case EventDeliver:
		return s.Deliver(ctx, id)
	case EventCancel:
		return s.CancelByAdmin(ctx, id)
	case EventCompleteReturn:
		return s.CompleteReturn(ctx, id)
	case EventRejectReturn:
		return s.RejectReturn(ctx, id)
	default:
		// request_return belongs to the customer flow
		return Order{}, &ValidationError{Fields: map[string]string{"event": "unsupported event"}}
	}
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id, s.now().UTC())
}

// MarkPaid records a successful payment and moves a pending order into
// processing. Repeated confirmations are ignored.
func (s *Service) MarkPaid(ctx context.Context, orderNumber, reference string) (Order, error) {
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return Order{}, err
	}
	if o.PaymentStatus == PaymentPaid {
		return o, nil
	}

	pay := func(o *Order) {
		o.PaymentStatus = PaymentPaid
		o.PaymentReference = reference
	}
	var updated Order
	if o.Status == StatusPending {
		updated, err = s.apply(ctx, o, EventProcess, pay)
	} else {
		pay(&o)
		o.UpdatedAt = s.now().UTC()
		updated, err = s.repo.Update(ctx, o, o.Status)
	}
	if err != nil {
		return Order{}, err
	}

	if s.sales != nil {
		for _, it := range updated.Items {
			if err := s.sales.RecordSale(ctx, it.ProductID, it.Quantity); err != nil {
				zap.L().Warn("failed to record sale",
					zap.String("orderNumber", updated.OrderNumber),
					zap.String("productId", it.ProductID),
					zap.Error(err))
			}
		}
	}
	return updated, nil
}

func (s *Service) MarkPaymentFailed(ctx context.Context, orderNumber, reference string) (Order, error) {
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return Order{}, err
	}
	if o.PaymentStatus == PaymentPaid {
		return o, nil
	}
	o.PaymentStatus = PaymentFailed
	o.PaymentReference = reference
	o.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, o, o.Status)
}

func (s *Service) transition(ctx context.Context, id string, ev Event, mutate func(*Order)) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return s.apply(ctx, o, ev, mutate)
}

// apply runs ev through the transition table, stamps lifecycle timestamps,
// persists the result and notifies the customer.
func (s *Service) apply(ctx context.Context, o Order, ev Event, mutate func(*Order)) (Order, error) {
	now := s.now().UTC()
	next, err := Next(o, ev, now)
	if err != nil {
		return Order{}, err
	}
	from := o.Status
	o.Status = next
	o.UpdatedAt = now
	switch ev {
	case EventShip:
		o.ShippedAt = &now
	case EventDeliver:
		o.DeliveredAt = &now
	case EventCancel:
		o.CancelledAt = &now
	}
	if mutate != nil {
		mutate(&o)
	}

	updated, err := s.repo.Update(ctx, o, from)
	if err != nil {
		return Order{}, err
	}
	s.metrics.OrderTransition(string(from), string(next))
	zap.L().Info("order status changed",
		zap.String("orderNumber", updated.OrderNumber),
		zap.String("event", string(ev)),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	s.notify(ctx, updated, from)
	return updated, nil
}

func (s *Service) resolveReturn(ctx context.Context, o Order, status ReturnStatus) {
	if err := s.repo.ResolveReturn(ctx, o.ID, status, s.now().UTC()); err != nil && !errors.Is(err, ErrNotFound) {
		zap.L().Error("failed to resolve return request", zap.String("orderNumber", o.OrderNumber), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, o Order, from Status) {
	err := s.notifier.OrderStatusChanged(ctx, o, from)
	s.metrics.Notification(err == nil)
	if err != nil {
		zap.L().Warn("order notification failed",
			zap.String("orderNumber", o.OrderNumber),
			zap.String("status", string(o.Status)),
			zap.Error(err))
	}
}

func validateCheckout(in CheckoutInput) error {
	fields := map[string]string{}
	if !isBareAddress(in.Email) {
		fields["email"] = "a valid email is required"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	a := in.ShippingAddress
	if strings.TrimSpace(a.Line1) == "" {
		fields["shippingAddress.line1"] = "address line is required"
	}
	if strings.TrimSpace(a.City) == "" {
		fields["shippingAddress.city"] = "city is required"
	}
	if strings.TrimSpace(a.Country) == "" {
		fields["shippingAddress.country"] = "country is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// isBareAddress accepts a plain addr-spec only; display names and angle
// brackets are rejected so the stored value is usable as an SMTP recipient.
func isBareAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
