// Package payment receives payment provider webhooks and applies them to orders.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader  = "X-Payment-Signature"
	DefaultTolerance = 5 * time.Minute

	EventSucceeded = "payment.succeeded"
	EventFailed    = "payment.failed"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		OrderNumber string `json:"orderNumber"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

// Verifier checks "t=<unix>,v1=<hex>" signature headers where the signature is
// HMAC-SHA256 over "<t>.<payload>".
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

func (v *Verifier) Verify(payload []byte, header string) error {
	if len(v.secret) == 0 {
		return ErrInvalidSignature
	}
	ts, signatures, err := parseSignature(header)
	if err != nil {
		return ErrInvalidSignature
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := v.now().Sub(time.Unix(unix, 0))
	if age > v.tolerance || age < -v.tolerance {
		return ErrStaleTimestamp
	}

	expected := computeSignature(v.secret, ts, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignatureFor builds a header value for payload signed at t.
func SignatureFor(secret string, payload []byte, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, computeSignature([]byte(secret), ts, payload))
}

func ParseEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, ErrInvalidPayload
	}
	if strings.TrimSpace(ev.Type) == "" {
		return Event{}, ErrInvalidPayload
	}
	return ev, nil
}

func computeSignature(secret []byte, ts string, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(ts + "." + string(payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignature(header string) (string, []string, error) {
	var ts string
	signatures := []string{}
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			ts = strings.TrimSpace(value)
		case "v1":
			signatures = append(signatures, strings.TrimSpace(value))
		}
	}
	if ts == "" || len(signatures) == 0 {
		return "", nil, ErrInvalidSignature
	}
	return ts, signatures, nil
}
