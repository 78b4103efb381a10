package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether an entry increases (credit) or decreases
// (debit) a book's balance. The amount itself is always positive; direction
// is carried separately from sign.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Transaction is a single cashbook entry.
//
// Category, PaymentMode and ContactID are soft references: a value pointing
// at a deleted lookup row degrades to "unset" rather than being an integrity
// error. Author identity (UserID/UserEmail/UserFullName) is captured at write
// time and not dereferenced live.
type Transaction struct {
	TransactionID  string            `json:"id"`
	BookID         string            `json:"book_id"`
	Date           time.Time         `json:"date"`
	Description    string            `json:"description"`
	Amount         decimal.Decimal   `json:"amount"`
	Type           TransactionType   `json:"type"`
	CreatedAt      time.Time         `json:"created_at"`
	UserID         string            `json:"user_id"`
	UserEmail      string            `json:"user_email"`
	UserFullName   string            `json:"user_full_name"`
	Category       string            `json:"category,omitempty"`
	PaymentMode    string            `json:"payment_mode,omitempty"`
	ContactID      string            `json:"contact_id,omitempty"`
	CustomFields   map[string]string `json:"custom_fields,omitempty"`
	AttachmentURLs []string          `json:"attachment_urls,omitempty"` // at most 4
}

// SignedAmount applies the entry's direction to its amount: positive for
// credits, negative for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionUpdate carries the updatable columns of a transaction.
// Nil fields are left untouched by the remote update.
type TransactionUpdate struct {
	Date           *time.Time         `json:"date,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Amount         *decimal.Decimal   `json:"amount,omitempty"`
	Type           *TransactionType   `json:"type,omitempty"`
	Category       *string            `json:"category,omitempty"`
	PaymentMode    *string            `json:"payment_mode,omitempty"`
	ContactID      *string            `json:"contact_id,omitempty"`
	CustomFields   *map[string]string `json:"custom_fields,omitempty"`
	AttachmentURLs *[]string          `json:"attachment_urls,omitempty"`
}
