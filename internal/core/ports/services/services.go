// Package portssvc declares the service facades the HTTP layer depends on.
// Every mutation flows through one of these: the remote write happens first
// and the local replica only ever mirrors server-confirmed state.
package portssvc

import (
	"context"

	"github.com/finotbook/cashbook/internal/core/domain"
	"github.com/finotbook/cashbook/internal/dto"
)

// SyncSvc runs the full-sync orchestrator.
type SyncSvc interface {
	// SyncAll pulls the complete authorized dataset for the caller and
	// merges it into the local replica. Concurrent triggers coalesce onto
	// the in-flight run; the call is idempotent and doubles as the manual
	// refresh action.
	SyncAll(ctx context.Context, who domain.Identity) error
	// InProgress reports whether a sync run is currently executing.
	InProgress() bool
}

// BusinessSvc coordinates business-level mutations.
type BusinessSvc interface {
	CreateBusiness(ctx context.Context, who domain.Identity, req dto.CreateBusinessRequest) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, who domain.Identity, businessID string, req dto.UpdateBusinessRequest) (*domain.Business, error)
	DeleteBusiness(ctx context.Context, who domain.Identity, businessID string) error
	TransferOwnership(ctx context.Context, who domain.Identity, businessID string, req dto.TransferOwnershipRequest) error
	// SwitchBusiness records the caller's selected business on their profile
	// so the UI can restore it next session.
	SwitchBusiness(ctx context.Context, who domain.Identity, businessID string) error
}

// BookSvc coordinates book-level mutations, including custom field
// definitions.
type BookSvc interface {
	CreateBook(ctx context.Context, who domain.Identity, businessID string, req dto.CreateBookRequest) (*domain.Book, error)
	UpdateBook(ctx context.Context, who domain.Identity, bookID string, req dto.UpdateBookRequest) (*domain.Book, error)
	DuplicateBook(ctx context.Context, who domain.Identity, bookID string, req dto.DuplicateBookRequest) (string, error)
	TransferBook(ctx context.Context, who domain.Identity, bookID string, req dto.TransferBookRequest) error
	DeleteBook(ctx context.Context, who domain.Identity, bookID string) error

	AddCustomField(ctx context.Context, who domain.Identity, bookID string, req dto.CreateCustomFieldRequest) (*domain.BookCustomField, error)
	SetCustomFieldEnabled(ctx context.Context, who domain.Identity, fieldID string, enabled bool) error
	SetCustomFieldRequired(ctx context.Context, who domain.Identity, fieldID string, required bool) error
	DeleteCustomField(ctx context.Context, who domain.Identity, fieldID string) error
}

// TransactionSvc coordinates cashbook entry mutations.
type TransactionSvc interface {
	AddTransaction(ctx context.Context, who domain.Identity, bookID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	// BulkAddTransactions imports entries all-or-nothing: on any server-side
	// rejection, zero rows are written locally and the error is returned.
	BulkAddTransactions(ctx context.Context, who domain.Identity, bookID string, req dto.BulkCreateTransactionsRequest) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, who domain.Identity, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, who domain.Identity, transactionID string) error
}

// LookupSvc coordinates the business-scoped lookup lists.
type LookupSvc interface {
	AddCategory(ctx context.Context, who domain.Identity, businessID string, req dto.CreateCategoryRequest) (*domain.Category, error)
	DeleteCategory(ctx context.Context, who domain.Identity, categoryID string) error
	AddPaymentMethod(ctx context.Context, who domain.Identity, businessID string, req dto.CreatePaymentMethodRequest) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, who domain.Identity, paymentMethodID string) error
	AddContact(ctx context.Context, who domain.Identity, businessID string, req dto.CreateContactRequest) (*domain.Contact, error)
	DeleteContact(ctx context.Context, who domain.Identity, contactID string) error
}

// MemberSvc coordinates memberships and invitations.
type MemberSvc interface {
	InviteMember(ctx context.Context, who domain.Identity, businessID string, req dto.InviteMemberRequest) error
	RemoveMember(ctx context.Context, who domain.Identity, businessID, userID string) error
	AddBookMember(ctx context.Context, who domain.Identity, bookID, userID string) error
	RemoveBookMember(ctx context.Context, who domain.Identity, bookID, userID string) error
	AcceptInvitation(ctx context.Context, who domain.Identity, invitationID string) error
	DeclineInvitation(ctx context.Context, who domain.Identity, invitationID string) error
}

// ServiceContainer bundles every service facade for route registration.
type ServiceContainer struct {
	Sync        SyncSvc
	Business    BusinessSvc
	Book        BookSvc
	Transaction TransactionSvc
	Lookup      LookupSvc
	Member      MemberSvc
}
