package preferences

import (
	"time"

	"github.com/nowiht/storefront-backend/internal/sizing"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageTR Language = "tr"
)

// Preferences are the storefront settings of one account.
type Preferences struct {
	OwnerEmail       string     `json:"-"`
	Language         Language   `json:"language"`
	Currency         string     `json:"currency"`
	Newsletter       bool       `json:"newsletter"`
	SMSNotifications bool       `json:"smsNotifications"`
	PreferredSizes   []string   `json:"preferredSizes"`
	FitPreference    sizing.Fit `json:"fitPreference"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Update is a partial change; nil fields keep their stored value.
type Update struct {
	Language         *string   `json:"language"`
	Currency         *string   `json:"currency"`
	Newsletter       *bool     `json:"newsletter"`
	SMSNotifications *bool     `json:"smsNotifications"`
	PreferredSizes   *[]string `json:"preferredSizes"`
	FitPreference    *string   `json:"fitPreference"`
}

var currencies = map[string]bool{"TRY": true, "EUR": true, "USD": true, "GBP": true}

var sizes = map[string]bool{"XXS": true, "XS": true, "S": true, "M": true, "L": true, "XL": true, "XXL": true}

// Defaults returns the settings used until an account saves its own.
func Defaults(owner string) Preferences {
	return Preferences{
		OwnerEmail:     owner,
		Language:       LanguageEN,
		Currency:       "TRY",
		Newsletter:     false,
		PreferredSizes: []string{},
		FitPreference:  sizing.FitRegular,
	}
}
