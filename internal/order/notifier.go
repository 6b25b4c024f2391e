package order

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nowiht/storefront-backend/internal/config"
)

// Notifier tells the customer about a new order or a status change. from is
// empty for a newly placed order.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o Order, from Status) error
}

var statusLabelEN = map[Status]string{
	StatusPending:         "pending",
	StatusProcessing:      "being prepared",
	StatusShipped:         "shipped",
	StatusDelivered:       "delivered",
	StatusCancelled:       "cancelled",
	StatusReturnRequested: "awaiting return",
	StatusReturned:        "returned",
}

// Subject is the bilingual e-mail subject line for o.
func Subject(o Order, from Status) string {
	if from == "" {
		return fmt.Sprintf("We received your order %s / %s numaralı siparişinizi aldık", o.OrderNumber, o.OrderNumber)
	}
	return fmt.Sprintf("Your order %s is %s / %s numaralı siparişiniz %s",
		o.OrderNumber, statusLabelEN[o.Status], o.OrderNumber, statusLabelTR[o.Status])
}

type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.L()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) OrderStatusChanged(_ context.Context, o Order, from Status) error {
	n.log.Info("order notification",
		zap.String("orderNumber", o.OrderNumber),
		zap.String("to", o.CustomerEmail),
		zap.String("from", string(from)),
		zap.String("status", string(o.Status)),
		zap.String("subject", Subject(o, from)),
	)
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers plain-text e-mails through a relay.
type SMTPNotifier struct {
	cfg  config.SMTPConfig
	send sendMailFunc
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) OrderStatusChanged(_ context.Context, o Order, from Status) error {
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	return n.send(addr, auth, n.cfg.From, []string{o.CustomerEmail}, n.message(o, from))
}

func (n *SMTPNotifier) message(o Order, from Status) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", o.CustomerEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(o, from)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", o.CustomerName)
	fmt.Fprintf(&b, "Order %s status: %s\r\n", o.OrderNumber, statusLabelEN[o.Status])
	fmt.Fprintf(&b, "Sipariş %s durumu: %s\r\n", o.OrderNumber, statusLabelTR[o.Status])
	if o.TrackingNumber != "" {
		fmt.Fprintf(&b, "\r\n%s tracking / kargo takip: %s\r\n", o.Carrier, o.TrackingNumber)
	}
	fmt.Fprintf(&b, "\r\nTotal / Toplam: %s %s\r\n", o.Total.StringFixed(2), o.Currency)
	return []byte(b.String())
}
