package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the storefront's settlement currency.
const Currency = "TRY"

var taxRates = map[string]decimal.Decimal{
	"TR": decimal.NewFromInt(20),
	"DE": decimal.NewFromInt(19),
	"FR": decimal.NewFromInt(20),
	"NL": decimal.NewFromInt(21),
	"IT": decimal.NewFromInt(22),
	"ES": decimal.NewFromInt(21),
	"GB": decimal.NewFromInt(20),
}

// TaxRate returns the VAT percentage for an ISO-2 country code. Unlisted
// countries are not taxed.
func TaxRate(country string) decimal.Decimal {
	if r, ok := taxRates[normalizeCountry(country)]; ok {
		return r
	}
	return decimal.Zero
}

// Zone is a shipping region with a flat rate.
type Zone struct {
	Name          string           `json:"name"`
	Countries     []string         `json:"countries,omitempty"`
	Cost          decimal.Decimal  `json:"cost"`
	FreeThreshold *decimal.Decimal `json:"freeThreshold,omitempty"`
}

func threshold(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var (
	zoneDomestic = Zone{
		Name:          "domestic",
		Countries:     []string{"TR"},
		Cost:          decimal.RequireFromString("49.90"),
		FreeThreshold: threshold(1500),
	}
	zoneEurope = Zone{
		Name: "europe",
		Countries: []string{
			"DE", "FR", "NL", "IT", "ES", "GB", "BE", "AT", "PT", "IE", "LU", "DK",
			"SE", "FI", "NO", "CH", "PL", "CZ", "GR",
		},
		Cost:          decimal.NewFromInt(450),
		FreeThreshold: threshold(5000),
	}
	zoneNorthAmerica = Zone{
		Name:      "north_america",
		Countries: []string{"US", "CA"},
		Cost:      decimal.NewFromInt(650),
	}
	zoneInternational = Zone{
		Name: "international",
		Cost: decimal.NewFromInt(800),
	}

	zones = []Zone{zoneDomestic, zoneEurope, zoneNorthAmerica, zoneInternational}

	zoneByCountry = func() map[string]Zone {
		out := map[string]Zone{}
		for _, z := range zones {
			for _, c := range z.Countries {
				out[c] = z
			}
		}
		return out
	}()
)

// Zones returns the shipping zones, international last.
func Zones() []Zone {
	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = z.clone()
	}
	return out
}

// ZoneFor returns the zone serving country, falling back to international.
func ZoneFor(country string) Zone {
	if z, ok := zoneByCountry[normalizeCountry(country)]; ok {
		return z.clone()
	}
	return zoneInternational.clone()
}

// clone detaches the country list and threshold from the package tables.
func (z Zone) clone() Zone {
	z.Countries = append([]string(nil), z.Countries...)
	if z.FreeThreshold != nil {
		t := *z.FreeThreshold
		z.FreeThreshold = &t
	}
	return z
}

// ShippingCost is the zone rate, or zero once subtotal reaches the free threshold.
func (z Zone) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if z.FreeThreshold != nil && subtotal.GreaterThanOrEqual(*z.FreeThreshold) {
		return decimal.Zero
	}
	return z.Cost
}

// Promotion is a percentage discount code.
type Promotion struct {
	Code        string          `json:"code"`
	Percent     decimal.Decimal `json:"percent"`
	MinSubtotal decimal.Decimal `json:"minSubtotal"`
}

var promotions = map[string]Promotion{
	"WELCOME10": {Code: "WELCOME10", Percent: decimal.NewFromInt(10), MinSubtotal: decimal.Zero},
	"NOWIHT15":  {Code: "NOWIHT15", Percent: decimal.NewFromInt(15), MinSubtotal: decimal.NewFromInt(2000)},
}

// LookupPromotion finds a code case-insensitively.
func LookupPromotion(code string) (Promotion, bool) {
	p, ok := promotions[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
