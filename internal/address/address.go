package address

import "time"

// Address is a saved shipping address owned by an account email.
type Address struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"-"`
	Title      string    `json:"title"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	District   string    `json:"district,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Input struct {
	Title      string `json:"title"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}
