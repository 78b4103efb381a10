package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a ledger of transactions with its own currency.
//
// Balance is computed server-side (sum of credits minus debits) and mirrored
// here so the book list can render without pulling transaction sets. It is
// never recomputed locally from raw transactions.
type Book struct {
	BookID       string          `json:"id"`
	BusinessID   string          `json:"business_id"`
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currency"`
	OwnerID      string          `json:"owner_id"`
	CreatedAt    time.Time       `json:"created_at"`
	Balance      decimal.Decimal `json:"balance"`
}

// BookMember links a user to a book it may read and write.
type BookMember struct {
	BookID string `json:"book_id"`
	UserID string `json:"user_id"`
}

// Key returns the replica primary key for the link row.
func (m BookMember) Key() string { return m.BookID + "/" + m.UserID }

// BookCustomField defines a named per-book entry field. Only the definition
// lives here; values are carried in each transaction's custom-field map.
type BookCustomField struct {
	FieldID    string    `json:"id"`
	BookID     string    `json:"book_id"`
	FieldName  string    `json:"field_name"`
	FieldType  string    `json:"field_type"`
	IsEnabled  bool      `json:"is_enabled"`
	IsRequired bool      `json:"is_required"`
	CreatedAt  time.Time `json:"created_at"`
}
