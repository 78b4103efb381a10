package dto

import (
	"time"

	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the payload for a single cashbook entry.
// Amount must be positive; direction travels separately in Type.
type CreateTransactionRequest struct {
	Date           time.Time         `json:"date" binding:"required"`
	Description    string            `json:"description" binding:"required,min=1,max=500"`
	Amount         decimal.Decimal   `json:"amount" binding:"required,gt=0"`
	Type           string            `json:"type" binding:"required,oneof=credit debit"`
	Category       string            `json:"category,omitempty"`
	PaymentMode    string            `json:"payment_mode,omitempty"`
	ContactID      string            `json:"contact_id,omitempty"`
	CustomFields   map[string]string `json:"custom_fields,omitempty"`
	AttachmentURLs []string          `json:"attachment_urls,omitempty" binding:"omitempty,max=4"`
}

// ToDomain builds the unsaved transaction row, stamping book and author.
func (r CreateTransactionRequest) ToDomain(bookID string, who domain.Identity) domain.Transaction {
	return domain.Transaction{
		BookID:         bookID,
		Date:           r.Date,
		Description:    r.Description,
		Amount:         r.Amount,
		Type:           domain.TransactionType(r.Type),
		UserID:         who.UserID,
		UserEmail:      who.Email,
		UserFullName:   who.FullName,
		Category:       r.Category,
		PaymentMode:    r.PaymentMode,
		ContactID:      r.ContactID,
		CustomFields:   r.CustomFields,
		AttachmentURLs: r.AttachmentURLs,
	}
}

// BulkCreateTransactionsRequest imports several entries at once. The import
// is all-or-nothing: one rejected row means nothing is written.
type BulkCreateTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest carries optional column updates for an entry.
type UpdateTransactionRequest struct {
	Date           *time.Time         `json:"date,omitempty"`
	Description    *string            `json:"description,omitempty" binding:"omitempty,min=1,max=500"`
	Amount         *decimal.Decimal   `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Type           *string            `json:"type,omitempty" binding:"omitempty,oneof=credit debit"`
	Category       *string            `json:"category,omitempty"`
	PaymentMode    *string            `json:"payment_mode,omitempty"`
	ContactID      *string            `json:"contact_id,omitempty"`
	CustomFields   *map[string]string `json:"custom_fields,omitempty"`
	AttachmentURLs *[]string          `json:"attachment_urls,omitempty" binding:"omitempty,max=4"`
}

// ToDomain maps the request onto the gateway update shape.
func (r UpdateTransactionRequest) ToDomain() domain.TransactionUpdate {
	upd := domain.TransactionUpdate{
		Date:           r.Date,
		Description:    r.Description,
		Amount:         r.Amount,
		Category:       r.Category,
		PaymentMode:    r.PaymentMode,
		ContactID:      r.ContactID,
		CustomFields:   r.CustomFields,
		AttachmentURLs: r.AttachmentURLs,
	}
	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		upd.Type = &t
	}
	return upd
}

// TransactionFilterQuery is the query-string form of the derived-view filter
// set. Empty fields are inactive; active predicates are ANDed.
type TransactionFilterQuery struct {
	Type        string `form:"type" binding:"omitempty,oneof=credit debit"`
	Member      string `form:"member"`
	Category    string `form:"category"`
	PaymentMode string `form:"payment_mode"`
	Contact     string `form:"contact"`
	Search      string `form:"search"`
	Preset      string `form:"date" binding:"omitempty,oneof=all today yesterday this_month last_month"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	GroupByDay  bool   `form:"group_by_day"`
}
