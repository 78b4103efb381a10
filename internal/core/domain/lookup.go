package domain

import "time"

// Category is a business-scoped transaction category. Deleting one does not
// cascade to transactions referencing it by name.
type Category struct {
	CategoryID string `json:"id"`
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
}

// PaymentMethod is a business-scoped payment mode referenced by name from
// transactions.
type PaymentMethod struct {
	PaymentMethodID string `json:"id"`
	BusinessID      string `json:"business_id"`
	Name            string `json:"name"`
}

// Contact is a business-scoped counterparty referenced by id from transactions.
type Contact struct {
	ContactID   string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
