package order

import (
	"context"
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowiht/storefront-backend/internal/config"
)

func TestSubject(t *testing.T) {
	o := Order{OrderNumber: "NOW-2026-04-01-ABC123", Status: StatusShipped}
	assert.Equal(t, "Your order NOW-2026-04-01-ABC123 is shipped / NOW-2026-04-01-ABC123 numaralı siparişiniz kargoya verildi", Subject(o, StatusProcessing))
	assert.Contains(t, Subject(o, ""), "We received your order")
}

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "orders@nowiht.com"})

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	o := Order{
		OrderNumber: "NOW-2026-04-01-ABC123", CustomerEmail: "a@b.co", CustomerName: "Ayse",
		Status: StatusShipped, Carrier: "Aras", TrackingNumber: "AR-9",
		Total: decimal.RequireFromString("1129.9"), Currency: "TRY",
	}
	require.NoError(t, n.OrderStatusChanged(context.Background(), o, StatusProcessing))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"a@b.co"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: orders@nowiht.com\r\n"))
	assert.Contains(t, gotMsg, "AR-9")
	assert.Contains(t, gotMsg, "1129.90 TRY")

	var subject string
	for _, line := range strings.Split(gotMsg, "\r\n") {
		if v, ok := strings.CutPrefix(line, "Subject: "); ok {
			subject = v
		}
	}
	for _, r := range subject {
		require.Less(t, r, rune(128), "subject header must be 7-bit: %q", subject)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	require.NoError(t, err)
	assert.Equal(t, Subject(o, StatusProcessing), decoded)

	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay refused") }
	assert.Error(t, n.OrderStatusChanged(context.Background(), o, StatusProcessing))
}
