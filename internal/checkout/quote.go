package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownPromo    = errors.New("promotion code is not valid")
	ErrPromoMinimum    = errors.New("order subtotal is below the promotion minimum")
	ErrCountryRequired = errors.New("shipping country is required")
)

var hundred = decimal.NewFromInt(100)

// Line is one priced cart line.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Total is UnitPrice times Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Quote is the priced breakdown of a cart.
type Quote struct {
	Lines        []Line          `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	PromoCode    string          `json:"promoCode,omitempty"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Zone         string          `json:"zone"`
	Country      string          `json:"country"`
	Currency     string          `json:"currency"`
}

// Calculate prices lines for delivery to country. The discount applies to
// the subtotal; shipping and tax are computed on the discounted subtotal and
// tax is added on top. Amounts are rounded to 2 places.
func Calculate(lines []Line, country, promoCode string) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrEmptyCart
	}
	country = normalizeCountry(country)
	if country == "" {
		return Quote{}, ErrCountryRequired
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, ErrInvalidQuantity
		}
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	var code string
	if promoCode != "" {
		promo, ok := LookupPromotion(promoCode)
		if !ok {
			return Quote{}, ErrUnknownPromo
		}
		if subtotal.LessThan(promo.MinSubtotal) {
			return Quote{}, ErrPromoMinimum
		}
		discount = subtotal.Mul(promo.Percent).Div(hundred).Round(2)
		code = promo.Code
	}
	discounted := subtotal.Sub(discount)

	zone := ZoneFor(country)
	shipping := zone.ShippingCost(discounted).Round(2)
	rate := TaxRate(country)
	tax := discounted.Mul(rate).Div(hundred).Round(2)

	return Quote{
		Lines:        lines,
		Subtotal:     subtotal,
		Discount:     discount,
		PromoCode:    code,
		ShippingCost: shipping,
		TaxRate:      rate,
		Tax:          tax,
		Total:        discounted.Add(shipping).Add(tax).Round(2),
		Zone:         zone.Name,
		Country:      country,
		Currency:     Currency,
	}, nil
}
