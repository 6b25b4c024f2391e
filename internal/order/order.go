package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusReturned        Status = "returned"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
)

// Address is the shipping address snapshot stored with the order.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

// Item snapshots a product at checkout time.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type Order struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	UserID           string          `json:"userId,omitempty"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerName     string          `json:"customerName"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	ShippingAddress  Address         `json:"shippingAddress"`
	Items            []Item          `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	PromoCode        string          `json:"promoCode,omitempty"`
	ShippingCost     decimal.Decimal `json:"shippingCost"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Carrier          string          `json:"carrier,omitempty"`
	TrackingNumber   string          `json:"trackingNumber,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	ShippedAt        *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	DeletedAt        *time.Time      `json:"deletedAt,omitempty"`
}

type ReturnRequest struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"orderId"`
	Reason    string       `json:"reason"`
	Status    ReturnStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
